package store

import (
	"context"

	"marketplace-service/internal/models"
)

// Demo profile IDs
const (
	DemoSellerRadiusID   int64 = 1
	DemoSellerDistrictID int64 = 2
	DemoBuyerID          int64 = 10
	DemoBuyerNoLocation  int64 = 11
	DemoRecipeID         int64 = 100
	DemoFirstProductID   int64 = 1000
)

func float64Ptr(v float64) *float64 { return &v }
func stringPtr(v string) *string    { return &v }
func int64Ptr(v int64) *int64       { return &v }

// NewDemoStore returns a memory store seeded with a small marketplace:
// two sellers (one radius zone, one district zone), two buyers, a catalog
// of vegetables and a kimchi stew recipe.
func NewDemoStore() *MemoryStore {
	m := NewMemoryStore()
	m.nextID = 2000

	m.PutProfile(models.Profile{ID: DemoSellerRadiusID, Role: models.RoleSeller, Name: "강남 청과", Lat: float64Ptr(37.4979), Lng: float64Ptr(127.0276)})
	m.PutProfile(models.Profile{ID: DemoSellerDistrictID, Role: models.RoleSeller, Name: "역삼 식자재마트", AdmCd: stringPtr("1168010100")})
	m.PutProfile(models.Profile{
		ID:      DemoBuyerID,
		Role:    models.RoleBuyer,
		Name:    "서초 한식당",
		Address: "서울특별시 강남구 역삼동",
		Lat:     float64Ptr(37.5006),
		Lng:     float64Ptr(127.0364),
		AdmCd:   stringPtr("1168010100"),
	})
	m.PutProfile(models.Profile{ID: DemoBuyerNoLocation, Role: models.RoleBuyer, Name: "위치 미등록 식당"})

	ctx := context.Background()
	_ = m.UpsertDeliveryZone(ctx, &models.DeliveryZone{
		SellerID:       DemoSellerRadiusID,
		Value:          models.RadiusZone{Km: 3, Lat: 37.4979, Lng: 127.0276},
		MinOrderAmount: 30000,
		DeliveryFee:    3000,
	})
	_ = m.UpsertDeliveryZone(ctx, &models.DeliveryZone{
		SellerID:              DemoSellerDistrictID,
		Value:                 models.DistrictZone{Codes: []string{"1168010100", "1168010800"}},
		MinOrderAmount:        20000,
		DeliveryFee:           2500,
		FreeDeliveryThreshold: int64Ptr(100000),
	})

	products := []models.Product{
		{SellerID: DemoSellerRadiusID, Name: "양파", Unit: "kg", Price: 3000, Stock: 40},
		{SellerID: DemoSellerDistrictID, Name: "양파", Unit: "kg", Price: 2500, Stock: 12},
		{SellerID: DemoSellerRadiusID, Name: "대파", Unit: "단", Price: 2200, Stock: 15},
		{SellerID: DemoSellerDistrictID, Name: "김치", Unit: "kg", Price: 9000, Stock: 0},
		{SellerID: DemoSellerRadiusID, Name: "김치", Unit: "kg", Price: 11000, Stock: 5},
		{SellerID: DemoSellerDistrictID, Name: "돼지고기 앞다리", Unit: "kg", Price: 14000, Stock: 8},
		{SellerID: DemoSellerRadiusID, Name: "두부", Unit: "모", Price: 1800, Stock: 30},
	}
	for i, p := range products {
		p.ID = DemoFirstProductID + int64(i)
		m.PutProduct(p)
	}

	m.PutRecipe(models.Recipe{
		ID:    DemoRecipeID,
		Title: "김치찌개",
		Items: []models.RecipeIngredient{
			{IngredientName: "김치", Unit: "kg", QuantityPerServing: 0.2},
			{IngredientName: "돼지고기 앞다리", Unit: "kg", QuantityPerServing: 0.15},
			{IngredientName: "두부", Unit: "모", QuantityPerServing: 0.25},
			{IngredientName: "양파", Unit: "kg", QuantityPerServing: 0.05},
			{IngredientName: "대파", Unit: "단", QuantityPerServing: 0.1},
			{IngredientName: "고춧가루", Unit: "g", QuantityPerServing: 5},
		},
	})

	return m
}

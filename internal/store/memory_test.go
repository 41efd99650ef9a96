package store

import (
	"context"
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ProductsByNames(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	a := m.PutProduct(models.Product{Name: " 양파 ", Unit: "kg", Price: 3000, Stock: 1})
	b := m.PutProduct(models.Product{Name: "양파", Unit: "kg", Price: 2500, Stock: 0})
	m.PutProduct(models.Product{Name: "감자", Unit: "kg", Price: 2000, Stock: 3})

	products, err := m.GetProductsByNames(ctx, []string{"양파"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, a.ID, products[0].ID)
	assert.Equal(t, b.ID, products[1].ID)

	c := m.PutProduct(models.Product{Name: "\u00a0양파\u3000", Unit: "kg", Price: 2800, Stock: 2})
	products, err = m.GetProductsByNames(ctx, []string{"양파"})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, c.ID, products[2].ID)

	products, err = m.GetProductsByNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestMemoryStore_ProductsByIDsSkipsUnknown(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	a := m.PutProduct(models.Product{Name: "a", Price: 1})
	b := m.PutProduct(models.Product{Name: "b", Price: 2})

	products, err := m.GetProductsByIDs(ctx, []int64{b.ID, 999, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, a.ID, products[0].ID)
	assert.Equal(t, b.ID, products[1].ID)
}

func TestMemoryStore_RecipeOrderAndNotFound(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	r := m.PutRecipe(models.Recipe{
		Title: "된장찌개",
		Items: []models.RecipeIngredient{
			{IngredientName: "된장", Unit: "g", QuantityPerServing: 30},
			{IngredientName: "애호박", Unit: "개", QuantityPerServing: 0.25},
		},
	})

	got, err := m.GetRecipe(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "된장", got.Items[0].IngredientName)
	assert.Equal(t, r.ID, got.Items[1].RecipeID)

	missing, err := m.GetRecipe(ctx, r.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_ZonesUpsert(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	zone := &models.DeliveryZone{SellerID: 5, Value: models.RadiusZone{Km: 1, Lat: 37, Lng: 127}}
	require.NoError(t, m.UpsertDeliveryZone(ctx, zone))
	firstID := zone.ID

	zone2 := &models.DeliveryZone{SellerID: 5, Value: models.DistrictZone{Codes: []string{"1168010100"}}}
	require.NoError(t, m.UpsertDeliveryZone(ctx, zone2))
	assert.Equal(t, firstID, zone2.ID)

	got, err := m.GetDeliveryZone(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, models.ZoneTypeDistrict, got.Type())

	zones, err := m.GetDeliveryZones(ctx, []int64{5, 6})
	require.NoError(t, err)
	assert.Len(t, zones, 1)

	err = m.UpsertDeliveryZone(ctx, &models.DeliveryZone{SellerID: 7})
	assert.ErrorIs(t, err, models.ErrZoneShape)
}

func TestMemoryStore_PricingRules(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	rules := []models.PricingRule{
		{ProductID: 1, BasePrice: 1000, DiscountType: models.DiscountNone, FinalPrice: 1000},
		{ProductID: 2, BasePrice: 2000, DiscountType: models.DiscountNone, FinalPrice: 2000},
	}
	require.NoError(t, m.UpsertPricingRules(ctx, rules))
	assert.NotZero(t, rules[0].ID)

	update := &models.PricingRule{ProductID: 1, BasePrice: 1000, MarkupPercentage: 10, DiscountType: models.DiscountNone, FinalPrice: 1100}
	require.NoError(t, m.UpsertPricingRule(ctx, update))
	assert.Equal(t, rules[0].ID, update.ID)

	got, err := m.GetPricingRules(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1100), got[1].FinalPrice)

	none, err := m.GetPricingRule(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDemoStore(t *testing.T) {
	m := NewDemoStore()
	ctx := context.Background()

	recipe, err := m.GetRecipe(ctx, DemoRecipeID)
	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Len(t, recipe.Items, 6)

	buyer, err := m.GetProfile(ctx, DemoBuyerID)
	require.NoError(t, err)
	assert.False(t, buyer.Location().IsEmpty())

	noLoc, err := m.GetProfile(ctx, DemoBuyerNoLocation)
	require.NoError(t, err)
	assert.True(t, noLoc.Location().IsEmpty())

	zones, err := m.GetDeliveryZones(ctx, []int64{DemoSellerRadiusID, DemoSellerDistrictID})
	require.NoError(t, err)
	assert.Len(t, zones, 2)
}

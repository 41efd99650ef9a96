package service

import (
	"context"
	"errors"
	"testing"

	"marketplace-service/internal/delivery"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoDeliveryService(failOpen bool) (*DeliveryService, *store.MemoryStore, *fakePublisher) {
	repo := store.NewDemoStore()
	pub := &fakePublisher{}
	return NewDeliveryService(repo, repo, nil, pub, failOpen), repo, pub
}

func TestDeliveryService_CheckSeller(t *testing.T) {
	svc, _, _ := newDemoDeliveryService(true)
	ctx := context.Background()

	t.Run("district zone covers buyer code", func(t *testing.T) {
		result, err := svc.CheckSeller(ctx, store.DemoBuyerID, store.DemoSellerDistrictID, 25000)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Eligible)
		assert.True(t, result.Filtered)
		assert.Equal(t, models.ZoneTypeDistrict, result.ZoneType)
		require.NotNil(t, result.Quote)
		assert.True(t, result.Quote.MeetsMinimum)
		assert.Equal(t, int64(2500), result.Quote.DeliveryFee)
	})

	t.Run("radius zone covers nearby buyer", func(t *testing.T) {
		result, err := svc.CheckSeller(ctx, store.DemoBuyerID, store.DemoSellerRadiusID, 10000)
		require.NoError(t, err)
		assert.True(t, result.Eligible)
		assert.False(t, result.Quote.MeetsMinimum)
	})

	t.Run("seller without zone is eligible and unfiltered", func(t *testing.T) {
		result, err := svc.CheckSeller(ctx, store.DemoBuyerID, 999, 0)
		require.NoError(t, err)
		assert.True(t, result.Eligible)
		assert.False(t, result.Filtered)
		assert.Equal(t, ReasonNoZone, result.Reason)
	})

	t.Run("customer without location fails open", func(t *testing.T) {
		result, err := svc.CheckSeller(ctx, store.DemoBuyerNoLocation, store.DemoSellerRadiusID, 0)
		require.NoError(t, err)
		assert.True(t, result.Eligible)
		assert.False(t, result.Filtered)
		assert.Equal(t, ReasonNoLocation, result.Reason)
	})

	t.Run("unknown customer", func(t *testing.T) {
		result, err := svc.CheckSeller(ctx, 4242, store.DemoSellerRadiusID, 0)
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestDeliveryService_CheckSeller_FailClosed(t *testing.T) {
	svc, _, _ := newDemoDeliveryService(false)

	result, err := svc.CheckSeller(context.Background(), store.DemoBuyerNoLocation, store.DemoSellerRadiusID, 0)
	require.NoError(t, err)
	assert.False(t, result.Eligible)
	assert.True(t, result.Filtered)
}

func TestDeliveryService_FilterSellers(t *testing.T) {
	svc, repo, _ := newDemoDeliveryService(true)
	ctx := context.Background()

	// a far away radius seller
	far := repo.PutProfile(models.Profile{Role: models.RoleSeller, Name: "부산 수산"})
	require.NoError(t, repo.UpsertDeliveryZone(ctx, &models.DeliveryZone{
		SellerID: far.ID,
		Value:    models.RadiusZone{Km: 5, Lat: 35.1796, Lng: 129.0756},
	}))

	sellers := []int64{far.ID, store.DemoSellerDistrictID, 555, store.DemoSellerRadiusID}

	got, err := svc.FilterSellers(ctx, store.DemoBuyerID, sellers)
	require.NoError(t, err)
	assert.Equal(t, []int64{store.DemoSellerDistrictID, 555, store.DemoSellerRadiusID}, got)

	got, err = svc.FilterSellers(ctx, store.DemoBuyerNoLocation, sellers)
	require.NoError(t, err)
	assert.Equal(t, sellers, got)

	got, err = svc.FilterSellers(ctx, 4242, sellers)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeliveryService_FilterSellers_FailClosed(t *testing.T) {
	svc, _, _ := newDemoDeliveryService(false)

	got, err := svc.FilterSellers(context.Background(), store.DemoBuyerNoLocation,
		[]int64{store.DemoSellerRadiusID, store.DemoSellerDistrictID, 555})
	require.NoError(t, err)
	assert.Equal(t, []int64{555}, got)
}

func TestDeliveryService_StoreErrors(t *testing.T) {
	repo := store.NewDemoStore()
	svc := NewDeliveryService(repo, failingZones{repo}, nil, nil, true)
	ctx := context.Background()

	_, err := svc.CheckSeller(ctx, store.DemoBuyerID, store.DemoSellerRadiusID, 0)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = svc.FilterSellers(ctx, store.DemoBuyerID, []int64{1})
	assert.ErrorIs(t, err, errStoreDown)
}

func TestDeliveryService_ResolveCustomerLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("looks up missing code and stores it", func(t *testing.T) {
		repo := store.NewMemoryStore()
		p := repo.PutProfile(models.Profile{Role: models.RoleBuyer, Address: "서울특별시 강남구 역삼동 123"})
		lookup := &fakeLookup{code: "1168010100"}
		svc := NewDeliveryService(repo, repo, lookup, nil, true)

		loc, err := svc.ResolveCustomerLocation(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "1168010100", loc.AdmCd)

		stored, err := repo.GetProfile(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AdmCd)
		assert.Equal(t, "1168010100", *stored.AdmCd)
	})

	t.Run("lookup failure is not fatal", func(t *testing.T) {
		repo := store.NewMemoryStore()
		p := repo.PutProfile(models.Profile{Role: models.RoleBuyer, Address: "somewhere"})
		svc := NewDeliveryService(repo, repo, &fakeLookup{err: errors.New("timeout")}, nil, true)

		loc, err := svc.ResolveCustomerLocation(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, loc.IsEmpty())
	})

	t.Run("known code skips lookup", func(t *testing.T) {
		repo := store.NewDemoStore()
		lookup := &fakeLookup{code: "9999999999"}
		svc := NewDeliveryService(repo, repo, lookup, nil, true)

		loc, err := svc.ResolveCustomerLocation(ctx, store.DemoBuyerID)
		require.NoError(t, err)
		assert.Equal(t, "1168010100", loc.AdmCd)
		assert.Zero(t, lookup.calls)
	})
}

func TestDeliveryService_ConfigureZone(t *testing.T) {
	svc, repo, pub := newDemoDeliveryService(true)
	ctx := context.Background()

	zone, err := svc.ConfigureZone(ctx, models.DeliveryZone{
		SellerID: 77,
		Value:    models.DistrictZone{Codes: []string{"1168010100", "1168010100", "1168010800"}},
	})
	require.NoError(t, err)
	assert.NotZero(t, zone.ID)
	assert.Equal(t, models.DistrictZone{Codes: []string{"1168010100", "1168010800"}}, zone.Value)

	stored, err := repo.GetDeliveryZone(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, zone.Value, stored.Value)
	require.Len(t, pub.zones, 1)
	assert.Equal(t, int64(77), pub.zones[0].SellerID)

	_, err = svc.ConfigureZone(ctx, models.DeliveryZone{
		SellerID: 77,
		Value:    models.RadiusZone{Km: 0, Lat: 37, Lng: 127},
	})
	var verr *delivery.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Len(t, pub.zones, 1)
}

func TestDeliveryService_ConfigureZone_PublishFailureIsLogged(t *testing.T) {
	repo := store.NewMemoryStore()
	pub := &fakePublisher{err: errors.New("kafka down")}
	svc := NewDeliveryService(repo, repo, nil, pub, true)

	zone, err := svc.ConfigureZone(context.Background(), models.DeliveryZone{
		SellerID: 3,
		Value:    models.RadiusZone{Km: 1, Lat: 37.5, Lng: 127},
	})
	require.NoError(t, err)
	assert.NotNil(t, zone)
}

func TestDeliveryService_IsDeliveryEligible(t *testing.T) {
	svc, _, _ := newDemoDeliveryService(true)

	zone := models.DeliveryZone{Value: models.DistrictZone{Codes: []string{"1168010100"}}}
	assert.True(t, svc.IsDeliveryEligible(models.CustomerLocation{AdmCd: "1168010100"}, zone))
	assert.False(t, svc.IsDeliveryEligible(models.CustomerLocation{AdmCd: "1168010200"}, zone))
	assert.InDelta(t, 0, svc.HaversineDistanceKm(37, 127, 37, 127), 1e-9)
}

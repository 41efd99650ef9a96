package delivery

import (
	"math"
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func point(lat, lng float64) *models.GeoPoint {
	return &models.GeoPoint{Lat: lat, Lng: lng}
}

func TestHaversineDistanceKm(t *testing.T) {
	// Seoul City Hall -> Busan City Hall, roughly 325 km
	d := HaversineDistanceKm(37.5663, 126.9779, 35.1798, 129.0750)
	assert.InDelta(t, 325, d, 5)

	// one degree of latitude
	assert.InDelta(t, 111.19, HaversineDistanceKm(0, 0, 1, 0), 0.01)
}

func TestHaversineDistanceKm_SymmetricAndZero(t *testing.T) {
	points := [][2]float64{
		{37.5665, 126.9780},
		{-33.8688, 151.2093},
		{0, 0},
		{90, 180},
		{-90, -180},
		{51.5074, -0.1278},
	}

	for _, a := range points {
		assert.Equal(t, 0.0, HaversineDistanceKm(a[0], a[1], a[0], a[1]))
		for _, b := range points {
			ab := HaversineDistanceKm(a[0], a[1], b[0], b[1])
			ba := HaversineDistanceKm(b[0], b[1], a[0], a[1])
			assert.InDelta(t, ab, ba, 1e-9, "distance %v -> %v", a, b)
		}
	}
}

func TestValidAdmCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"1168010100", true},
		{"0000000000", true},
		{"116801010", false},
		{"11680101001", false},
		{"11680101a0", false},
		{"116801010 ", false},
		{"", false},
		{"１１６８０１０１００", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidAdmCode(tt.code), "code %q", tt.code)
	}
}

func TestIsDeliveryEligible_District(t *testing.T) {
	zone := models.DeliveryZone{
		SellerID: 1,
		Value:    models.DistrictZone{Codes: []string{"1168010100", "1168010500"}},
	}

	tests := []struct {
		name  string
		admCd string
		want  bool
	}{
		{"member", "1168010100", true},
		{"second member", "1168010500", true},
		{"last digit differs", "1168010101", false},
		{"prefix only", "11680101", false},
		{"extra trailing digit", "11680101001", false},
		{"missing", "", false},
		{"not digits", "116801010x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer := models.CustomerLocation{AdmCd: tt.admCd, Point: point(37.5, 127.0)}
			assert.Equal(t, tt.want, IsDeliveryEligible(customer, zone))
		})
	}
}

func TestIsDeliveryEligible_DistrictIgnoresCoordinates(t *testing.T) {
	zone := models.DeliveryZone{Value: models.DistrictZone{Codes: []string{"1168010100"}}}

	// a customer standing right on top of the seller is still outside the listed districts
	customer := models.CustomerLocation{Point: point(37.5, 127.0), AdmCd: "2611010100"}
	assert.False(t, IsDeliveryEligible(customer, zone))
}

func TestIsDeliveryEligible_Radius(t *testing.T) {
	zone := models.DeliveryZone{
		SellerID: 1,
		Value:    models.RadiusZone{Km: 3, Lat: 37.5665, Lng: 126.9780},
	}

	tests := []struct {
		name     string
		customer models.CustomerLocation
		want     bool
	}{
		{"same point", models.CustomerLocation{Point: point(37.5665, 126.9780)}, true},
		{"about 1.1 km north", models.CustomerLocation{Point: point(37.5765, 126.9780)}, true},
		{"about 11 km north", models.CustomerLocation{Point: point(37.6665, 126.9780)}, false},
		{"no point", models.CustomerLocation{AdmCd: "1168010100"}, false},
		{"latitude out of range", models.CustomerLocation{Point: point(91, 126.9780)}, false},
		{"longitude out of range", models.CustomerLocation{Point: point(37.5665, -181)}, false},
		{"NaN", models.CustomerLocation{Point: point(math.NaN(), 126.9780)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDeliveryEligible(tt.customer, zone))
		})
	}
}

func TestIsDeliveryEligible_RadiusBoundaryInclusive(t *testing.T) {
	customer := models.CustomerLocation{Point: point(37.6, 127.0)}
	center := models.GeoPoint{Lat: 37.5, Lng: 127.0}
	d := HaversineDistanceKm(customer.Point.Lat, customer.Point.Lng, center.Lat, center.Lng)

	zone := models.DeliveryZone{Value: models.RadiusZone{Km: d, Lat: center.Lat, Lng: center.Lng}}
	assert.True(t, IsDeliveryEligible(customer, zone))

	zone.Value = models.RadiusZone{Km: d - 0.001, Lat: center.Lat, Lng: center.Lng}
	assert.False(t, IsDeliveryEligible(customer, zone))
}

func TestIsDeliveryEligible_InvalidZoneCenter(t *testing.T) {
	zone := models.DeliveryZone{Value: models.RadiusZone{Km: 10000, Lat: 120, Lng: 0}}
	assert.False(t, IsDeliveryEligible(models.CustomerLocation{Point: point(0, 0)}, zone))
}

func TestIsDeliveryEligible_NoZoneValue(t *testing.T) {
	customer := models.CustomerLocation{Point: point(0, 0), AdmCd: "1168010100"}
	assert.False(t, IsDeliveryEligible(customer, models.DeliveryZone{}))
}

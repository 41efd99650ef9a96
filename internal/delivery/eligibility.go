// Package delivery decides whether a seller can deliver to a customer.
package delivery

import (
	"math"

	"marketplace-service/internal/models"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0

// AdmCodeLength is the length of an administrative (법정동) code
const AdmCodeLength = 10

// HaversineDistanceKm returns the great-circle distance between two points in kilometres
func HaversineDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push a past 1 for antipodal points
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// ValidCoordinates reports whether lat/lng are within range. NaN is never valid.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidAdmCode reports whether code is exactly 10 ASCII digits
func ValidAdmCode(code string) bool {
	if len(code) != AdmCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// IsDeliveryEligible reports whether the zone covers the customer.
// A missing or malformed location part needed by the zone type is never eligible.
func IsDeliveryEligible(customer models.CustomerLocation, zone models.DeliveryZone) bool {
	switch v := zone.Value.(type) {
	case models.DistrictZone:
		return inDistrict(customer.AdmCd, v.Codes)
	case *models.DistrictZone:
		return v != nil && inDistrict(customer.AdmCd, v.Codes)
	case models.RadiusZone:
		return inRadius(customer.Point, v)
	case *models.RadiusZone:
		return v != nil && inRadius(customer.Point, *v)
	default:
		return false
	}
}

func inDistrict(admCd string, codes []string) bool {
	if !ValidAdmCode(admCd) {
		return false
	}
	for _, code := range codes {
		if code == admCd {
			return true
		}
	}
	return false
}

func inRadius(p *models.GeoPoint, zone models.RadiusZone) bool {
	if p == nil {
		return false
	}
	if !ValidCoordinates(p.Lat, p.Lng) || !ValidCoordinates(zone.Lat, zone.Lng) {
		return false
	}
	return HaversineDistanceKm(p.Lat, p.Lng, zone.Lat, zone.Lng) <= zone.Km
}

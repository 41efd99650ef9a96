package delivery

import (
	"fmt"

	"marketplace-service/internal/models"
)

// ValidationError reports a zone configuration that cannot be saved
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Quote is the delivery outcome for one order against one zone
type Quote struct {
	Eligible       bool  `json:"eligible"`
	MeetsMinimum   bool  `json:"meets_minimum"`
	MinOrderAmount int64 `json:"min_order_amount"`
	DeliveryFee    int64 `json:"delivery_fee"`
	FreeDelivery   bool  `json:"free_delivery"`
}

// QuoteDelivery combines eligibility with the zone's minimum order and fee rules
func QuoteDelivery(customer models.CustomerLocation, zone models.DeliveryZone, orderAmount int64) Quote {
	q := Quote{
		Eligible:       IsDeliveryEligible(customer, zone),
		MinOrderAmount: zone.MinOrderAmount,
		MeetsMinimum:   orderAmount >= zone.MinOrderAmount,
		DeliveryFee:    zone.DeliveryFee,
	}

	if zone.FreeDeliveryThreshold != nil && orderAmount >= *zone.FreeDeliveryThreshold {
		q.FreeDelivery = true
		q.DeliveryFee = 0
	}

	return q
}

// NormalizeZone validates a zone before it is persisted and returns a copy
// with duplicate district codes removed (first occurrence kept).
func NormalizeZone(zone models.DeliveryZone) (models.DeliveryZone, error) {
	if zone.SellerID <= 0 {
		return zone, &ValidationError{Field: "seller_id", Message: "must be positive"}
	}
	if zone.MinOrderAmount < 0 {
		return zone, &ValidationError{Field: "min_order_amount", Message: "must not be negative"}
	}
	if zone.DeliveryFee < 0 {
		return zone, &ValidationError{Field: "delivery_fee", Message: "must not be negative"}
	}
	if zone.FreeDeliveryThreshold != nil && *zone.FreeDeliveryThreshold < 0 {
		return zone, &ValidationError{Field: "free_delivery_threshold", Message: "must not be negative"}
	}

	switch p := zone.Value.(type) {
	case *models.RadiusZone:
		if p != nil {
			zone.Value = *p
		}
	case *models.DistrictZone:
		if p != nil {
			zone.Value = *p
		}
	}

	switch v := zone.Value.(type) {
	case models.RadiusZone:
		if !(v.Km > 0) {
			return zone, &ValidationError{Field: "zone_value.km", Message: "must be greater than zero"}
		}
		if !ValidCoordinates(v.Lat, v.Lng) {
			return zone, &ValidationError{Field: "zone_value", Message: "lat must be within [-90, 90] and lng within [-180, 180]"}
		}

	case models.DistrictZone:
		if len(v.Codes) == 0 {
			return zone, &ValidationError{Field: "zone_value.codes", Message: "at least one administrative code is required"}
		}
		seen := make(map[string]struct{}, len(v.Codes))
		codes := make([]string, 0, len(v.Codes))
		for _, code := range v.Codes {
			if !ValidAdmCode(code) {
				return zone, &ValidationError{
					Field:   "zone_value.codes",
					Message: fmt.Sprintf("%q is not a 10-digit administrative code", code),
				}
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
		zone.Value = models.DistrictZone{Codes: codes}

	default:
		return zone, &ValidationError{Field: "zone_type", Message: "must be radius or district"}
	}

	return zone, nil
}

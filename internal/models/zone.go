package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ZoneType names the delivery zone policy
type ZoneType string

// Zone types
const (
	ZoneTypeRadius   ZoneType = "radius"
	ZoneTypeDistrict ZoneType = "district"
)

// ZoneValue is the policy-specific part of a delivery zone.
// Implemented only by RadiusZone and DistrictZone.
type ZoneValue interface {
	ZoneType() ZoneType
	isZoneValue()
}

// RadiusZone delivers within Km of a fixed point
type RadiusZone struct {
	Km  float64 `json:"km"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ZoneType implements ZoneValue
func (RadiusZone) ZoneType() ZoneType { return ZoneTypeRadius }
func (RadiusZone) isZoneValue()       {}

// DistrictZone delivers to a fixed list of 10-digit administrative codes
type DistrictZone struct {
	Codes []string `json:"codes"`
}

// ZoneType implements ZoneValue
func (DistrictZone) ZoneType() ZoneType { return ZoneTypeDistrict }
func (DistrictZone) isZoneValue()       {}

// ErrZoneShape is returned when zone_value does not match zone_type
var ErrZoneShape = errors.New("zone_value does not match zone_type")

// DeliveryZone is a seller's delivery area and delivery charges
type DeliveryZone struct {
	ID                    int64
	SellerID              int64
	Value                 ZoneValue
	MinOrderAmount        int64
	DeliveryFee           int64
	FreeDeliveryThreshold *int64
	UpdatedAt             time.Time
}

// Type returns the zone type, or "" when no value is set
func (z DeliveryZone) Type() ZoneType {
	if z.Value == nil {
		return ""
	}
	return z.Value.ZoneType()
}

type deliveryZoneJSON struct {
	ID                    int64           `json:"id,omitempty"`
	SellerID              int64           `json:"seller_id"`
	ZoneType              ZoneType        `json:"zone_type"`
	ZoneValue             json.RawMessage `json:"zone_value"`
	MinOrderAmount        int64           `json:"min_order_amount"`
	DeliveryFee           int64           `json:"delivery_fee"`
	FreeDeliveryThreshold *int64          `json:"free_delivery_threshold"`
	UpdatedAt             time.Time       `json:"updated_at,omitempty"`
}

// MarshalJSON writes the zone as zone_type + zone_value
func (z DeliveryZone) MarshalJSON() ([]byte, error) {
	zoneType, raw, err := EncodeZoneValue(z.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(deliveryZoneJSON{
		ID:                    z.ID,
		SellerID:              z.SellerID,
		ZoneType:              zoneType,
		ZoneValue:             raw,
		MinOrderAmount:        z.MinOrderAmount,
		DeliveryFee:           z.DeliveryFee,
		FreeDeliveryThreshold: z.FreeDeliveryThreshold,
		UpdatedAt:             z.UpdatedAt,
	})
}

// UnmarshalJSON decodes zone_value according to zone_type
func (z *DeliveryZone) UnmarshalJSON(data []byte) error {
	var aux deliveryZoneJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	value, err := DecodeZoneValue(aux.ZoneType, aux.ZoneValue)
	if err != nil {
		return err
	}

	*z = DeliveryZone{
		ID:                    aux.ID,
		SellerID:              aux.SellerID,
		Value:                 value,
		MinOrderAmount:        aux.MinOrderAmount,
		DeliveryFee:           aux.DeliveryFee,
		FreeDeliveryThreshold: aux.FreeDeliveryThreshold,
		UpdatedAt:             aux.UpdatedAt,
	}
	return nil
}

// EncodeZoneValue splits a zone value into its type tag and JSON payload
func EncodeZoneValue(v ZoneValue) (ZoneType, []byte, error) {
	switch zv := v.(type) {
	case RadiusZone:
		raw, err := json.Marshal(zv)
		return ZoneTypeRadius, raw, err
	case *RadiusZone:
		raw, err := json.Marshal(zv)
		return ZoneTypeRadius, raw, err
	case DistrictZone:
		if zv.Codes == nil {
			zv.Codes = []string{}
		}
		raw, err := json.Marshal(zv)
		return ZoneTypeDistrict, raw, err
	case *DistrictZone:
		return EncodeZoneValue(*zv)
	case nil:
		return "", nil, fmt.Errorf("%w: missing zone value", ErrZoneShape)
	default:
		return "", nil, fmt.Errorf("%w: unsupported value %T", ErrZoneShape, v)
	}
}

// DecodeZoneValue builds the variant selected by zoneType from its JSON payload.
// Payload fields belonging to the other variant are rejected.
func DecodeZoneValue(zoneType ZoneType, raw []byte) (ZoneValue, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("%w: missing zone_value", ErrZoneShape)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	switch zoneType {
	case ZoneTypeRadius:
		var v struct {
			Km  *float64 `json:"km"`
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrZoneShape, err)
		}
		if v.Km == nil || v.Lat == nil || v.Lng == nil {
			return nil, fmt.Errorf("%w: radius zone requires km, lat and lng", ErrZoneShape)
		}
		return RadiusZone{Km: *v.Km, Lat: *v.Lat, Lng: *v.Lng}, nil

	case ZoneTypeDistrict:
		var v struct {
			Codes []string `json:"codes"`
		}
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrZoneShape, err)
		}
		if v.Codes == nil {
			return nil, fmt.Errorf("%w: district zone requires codes", ErrZoneShape)
		}
		return DistrictZone{Codes: v.Codes}, nil

	default:
		return nil, fmt.Errorf("%w: unknown zone_type %q", ErrZoneShape, zoneType)
	}
}

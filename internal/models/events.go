package models

import "time"

// Event types
const (
	EventTypeDeliveryZoneUpdated = "DELIVERY_ZONE_UPDATED"
	EventTypePricingRuleUpdated  = "PRICING_RULE_UPDATED"
	EventTypeBatchPricingApplied = "BATCH_PRICING_APPLIED"
	EventTypeProductUpdated      = "PRODUCT_UPDATED"
	EventTypeProductDeleted      = "PRODUCT_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// DeliveryZoneUpdatedEvent published when a seller changes its delivery zone
type DeliveryZoneUpdatedEvent struct {
	BaseEvent
	SellerID int64        `json:"seller_id"`
	Zone     DeliveryZone `json:"zone"`
}

// PricingRuleUpdatedEvent published when a single product's pricing rule is written
type PricingRuleUpdatedEvent struct {
	BaseEvent
	ProductID  int64       `json:"product_id"`
	Rule       PricingRule `json:"rule"`
	FinalPrice int64       `json:"final_price"`
}

// BatchPricingAppliedEvent published after a batch pricing operation
type BatchPricingAppliedEvent struct {
	BaseEvent
	Operation    string  `json:"operation"`
	Type         string  `json:"type"`
	Value        float64 `json:"value"`
	ProductIDs   []int64 `json:"product_ids"`
	UpdatedCount int     `json:"updated_count"`
}

// ProductUpdatedEvent is consumed from the catalog topic when a product's
// name, unit, price or stock changes
type ProductUpdatedEvent struct {
	BaseEvent
	ProductID int64  `json:"product_id"`
	SellerID  int64  `json:"seller_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Price     int64  `json:"price"`
	Stock     int    `json:"stock"`
	// PreviousName is set when the product was renamed
	PreviousName string `json:"previous_name,omitempty"`
}

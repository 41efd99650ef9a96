package models

import "time"

// Profile represents a marketplace user profile
type Profile struct {
	ID        int64     `db:"id" json:"id"`
	Role      string    `db:"role" json:"role"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address,omitempty"`
	Lat       *float64  `db:"lat" json:"lat,omitempty"`
	Lng       *float64  `db:"lng" json:"lng,omitempty"`
	AdmCd     *string   `db:"adm_cd" json:"adm_cd,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Profile roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Location returns the delivery location stored on the profile
func (p *Profile) Location() CustomerLocation {
	loc := CustomerLocation{}
	if p.Lat != nil && p.Lng != nil {
		loc.Point = &GeoPoint{Lat: *p.Lat, Lng: *p.Lng}
	}
	if p.AdmCd != nil {
		loc.AdmCd = *p.AdmCd
	}
	return loc
}

// GeoPoint is a WGS84 coordinate pair in degrees
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CustomerLocation is where a customer wants deliveries. Either part may be absent.
type CustomerLocation struct {
	Point *GeoPoint `json:"point,omitempty"`
	AdmCd string    `json:"adm_cd,omitempty"`
}

// IsEmpty reports whether neither coordinates nor an administrative code are known
func (l CustomerLocation) IsEmpty() bool {
	return l.Point == nil && l.AdmCd == ""
}

// Product represents a purchasable catalog item
type Product struct {
	ID        int64     `db:"id" json:"id"`
	SellerID  int64     `db:"seller_id" json:"seller_id"`
	Name      string    `db:"name" json:"name"`
	Unit      string    `db:"unit" json:"unit"`
	Price     int64     `db:"price" json:"price"`
	Stock     int       `db:"stock" json:"stock"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Recipe represents a recipe with its ordered ingredients
type Recipe struct {
	ID          int64              `db:"id" json:"id"`
	Title       string             `db:"title" json:"title"`
	Description string             `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	Items       []RecipeIngredient `db:"-" json:"items"`
}

// RecipeIngredient is one line of a recipe, quantified per serving
type RecipeIngredient struct {
	ID                 int64   `db:"id" json:"id"`
	RecipeID           int64   `db:"recipe_id" json:"recipe_id"`
	IngredientName     string  `db:"ingredient_name" json:"ingredient_name"`
	Unit               string  `db:"unit" json:"unit"`
	QuantityPerServing float64 `db:"quantity_per_serving" json:"quantity_per_serving"`
	Position           int     `db:"position" json:"position"`
}

// DiscountType selects how a discount is applied to a marked-up price
type DiscountType string

// Discount types
const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether t is a known discount type
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountNone, DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

// PricingRule describes how a product's sale price is derived
type PricingRule struct {
	ID               int64        `db:"id" json:"id,omitempty"`
	ProductID        int64        `db:"product_id" json:"product_id"`
	BasePrice        int64        `db:"base_price" json:"base_price"`
	MarkupPercentage float64      `db:"markup_percentage" json:"markup_percentage"`
	DiscountType     DiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue    float64      `db:"discount_value" json:"discount_value"`
	FinalPrice       int64        `db:"final_price" json:"final_price"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}

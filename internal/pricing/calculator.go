// Package pricing derives sale prices from base price, markup and discount.
package pricing

import (
	"fmt"
	"math"

	"marketplace-service/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidationError reports malformed pricing input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CalculateFinalPrice applies the markup, then the discount, then clamps at
// zero and floors to an integer amount. Policy bounds are not checked here.
func CalculateFinalPrice(basePrice int64, markupPercentage float64, discountType models.DiscountType, discountValue float64) (int64, error) {
	if err := validateInput(basePrice, markupPercentage, discountType, discountValue); err != nil {
		return 0, err
	}

	price := decimal.NewFromInt(basePrice).
		Mul(hundred.Add(decimal.NewFromFloat(markupPercentage))).
		Div(hundred)

	switch discountType {
	case models.DiscountPercentage:
		price = price.Mul(hundred.Sub(decimal.NewFromFloat(discountValue))).Div(hundred)
	case models.DiscountFixed:
		price = price.Sub(decimal.NewFromFloat(discountValue))
	}

	if price.IsNegative() {
		return 0, nil
	}
	return price.Floor().IntPart(), nil
}

// FinalPrice evaluates a pricing rule
func FinalPrice(rule models.PricingRule) (int64, error) {
	return CalculateFinalPrice(rule.BasePrice, rule.MarkupPercentage, discountTypeOrNone(rule.DiscountType), rule.DiscountValue)
}

func discountTypeOrNone(t models.DiscountType) models.DiscountType {
	if t == "" {
		return models.DiscountNone
	}
	return t
}

func validateInput(basePrice int64, markupPercentage float64, discountType models.DiscountType, discountValue float64) error {
	if basePrice < 0 {
		return &ValidationError{Field: "base_price", Message: "must not be negative"}
	}
	if !(markupPercentage >= 0) || math.IsInf(markupPercentage, 1) {
		return &ValidationError{Field: "markup_percentage", Message: "must be a non-negative finite number"}
	}
	if !discountType.Valid() {
		return &ValidationError{Field: "discount_type", Message: fmt.Sprintf("unknown discount type %q", discountType)}
	}
	if !(discountValue >= 0) || math.IsInf(discountValue, 1) {
		return &ValidationError{Field: "discount_value", Message: "must be a non-negative finite number"}
	}
	return nil
}

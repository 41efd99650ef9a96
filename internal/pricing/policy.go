package pricing

import (
	"fmt"

	"marketplace-service/internal/models"
)

// Policy bounds a pricing rule may not exceed
type Policy struct {
	MaxDiscountPercent float64
	MaxMarkupPercent   float64
	MinFinalPrice      int64
}

// DefaultPolicy returns the marketplace's standard bounds
func DefaultPolicy() Policy {
	return Policy{
		MaxDiscountPercent: 50,
		MaxMarkupPercent:   100,
		MinFinalPrice:      100,
	}
}

// Bound names reported in PolicyViolation
const (
	BoundMaxDiscountPercent = "max_discount_percent"
	BoundMaxMarkupPercent   = "max_markup_percent"
	BoundMinFinalPrice      = "min_final_price"
)

// PolicyViolation is returned when a rule exceeds one of the policy bounds
type PolicyViolation struct {
	Bound     string
	Limit     float64
	Actual    float64
	ProductID int64
	Message   string
}

func (e *PolicyViolation) Error() string {
	if e.ProductID != 0 {
		return fmt.Sprintf("product %d: %s", e.ProductID, e.Message)
	}
	return e.Message
}

// Check evaluates the rule and verifies it against the policy.
// It returns the final price when the rule is acceptable.
func (p Policy) Check(rule models.PricingRule) (int64, error) {
	final, err := FinalPrice(rule)
	if err != nil {
		return 0, err
	}

	if rule.MarkupPercentage > p.MaxMarkupPercent {
		return 0, &PolicyViolation{
			Bound:     BoundMaxMarkupPercent,
			Limit:     p.MaxMarkupPercent,
			Actual:    rule.MarkupPercentage,
			ProductID: rule.ProductID,
			Message:   fmt.Sprintf("markup %g%% exceeds the maximum of %g%%", rule.MarkupPercentage, p.MaxMarkupPercent),
		}
	}

	if rule.DiscountType == models.DiscountPercentage && rule.DiscountValue > p.MaxDiscountPercent {
		return 0, &PolicyViolation{
			Bound:     BoundMaxDiscountPercent,
			Limit:     p.MaxDiscountPercent,
			Actual:    rule.DiscountValue,
			ProductID: rule.ProductID,
			Message:   fmt.Sprintf("discount %g%% exceeds the maximum of %g%%", rule.DiscountValue, p.MaxDiscountPercent),
		}
	}

	if final < p.MinFinalPrice {
		return 0, &PolicyViolation{
			Bound:     BoundMinFinalPrice,
			Limit:     float64(p.MinFinalPrice),
			Actual:    float64(final),
			ProductID: rule.ProductID,
			Message:   fmt.Sprintf("final price %d is below the minimum of %d", final, p.MinFinalPrice),
		}
	}

	return final, nil
}

package pricing

import (
	"fmt"

	"marketplace-service/internal/models"
)

// OperationKind is what a batch operation changes
type OperationKind string

// Operation kinds
const (
	OperationDiscount OperationKind = "discount"
	OperationMarkup   OperationKind = "markup"
)

// Operation is a single markup or discount change applied to many products
type Operation struct {
	Kind  OperationKind       `json:"operation"`
	Type  models.DiscountType `json:"type"`
	Value float64             `json:"value"`
}

// Validate checks the operation's shape
func (op Operation) Validate() error {
	switch op.Kind {
	case OperationDiscount:
		if op.Type != models.DiscountPercentage && op.Type != models.DiscountFixed {
			return &ValidationError{Field: "type", Message: "discount type must be percentage or fixed"}
		}
	case OperationMarkup:
		if op.Type != models.DiscountPercentage {
			return &ValidationError{Field: "type", Message: "markup only supports percentage"}
		}
	default:
		return &ValidationError{Field: "operation", Message: fmt.Sprintf("unknown operation %q", op.Kind)}
	}

	if !(op.Value >= 0) {
		return &ValidationError{Field: "value", Message: "must not be negative"}
	}
	return nil
}

// RuleForProduct returns the rule a batch operation starts from: the existing
// rule, or one priced at the product's current list price.
func RuleForProduct(product models.Product, existing *models.PricingRule) models.PricingRule {
	if existing != nil {
		rule := *existing
		rule.DiscountType = discountTypeOrNone(rule.DiscountType)
		return rule
	}
	return models.PricingRule{
		ProductID:    product.ID,
		BasePrice:    product.Price,
		DiscountType: models.DiscountNone,
	}
}

// Apply returns a copy of rule with op applied. The final price is recomputed
// but not checked against a policy.
func Apply(rule models.PricingRule, op Operation) (models.PricingRule, error) {
	if err := op.Validate(); err != nil {
		return rule, err
	}

	switch op.Kind {
	case OperationDiscount:
		rule.DiscountType = op.Type
		rule.DiscountValue = op.Value
	case OperationMarkup:
		rule.MarkupPercentage = op.Value
	}

	final, err := FinalPrice(rule)
	if err != nil {
		return rule, err
	}
	rule.FinalPrice = final
	return rule, nil
}

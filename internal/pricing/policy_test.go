package pricing

import (
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyCheck_Accepts(t *testing.T) {
	policy := DefaultPolicy()

	final, err := policy.Check(models.PricingRule{
		ProductID:        1,
		BasePrice:        42000,
		MarkupPercentage: 10,
		DiscountType:     models.DiscountPercentage,
		DiscountValue:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(43890), final)

	// limits are inclusive
	final, err = policy.Check(models.PricingRule{
		BasePrice:        1000,
		MarkupPercentage: 100,
		DiscountType:     models.DiscountPercentage,
		DiscountValue:    50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), final)

	final, err = policy.Check(models.PricingRule{BasePrice: 100, DiscountType: models.DiscountNone})
	require.NoError(t, err)
	assert.Equal(t, int64(100), final)
}

func TestPolicyCheck_Violations(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name  string
		rule  models.PricingRule
		bound string
	}{
		{
			name:  "markup above maximum",
			rule:  models.PricingRule{BasePrice: 1000, MarkupPercentage: 100.5, DiscountType: models.DiscountNone},
			bound: BoundMaxMarkupPercent,
		},
		{
			name:  "percentage discount above maximum",
			rule:  models.PricingRule{BasePrice: 1000, DiscountType: models.DiscountPercentage, DiscountValue: 51},
			bound: BoundMaxDiscountPercent,
		},
		{
			name:  "fixed discount below floor",
			rule:  models.PricingRule{BasePrice: 100, DiscountType: models.DiscountFixed, DiscountValue: 500},
			bound: BoundMinFinalPrice,
		},
		{
			name:  "base below floor",
			rule:  models.PricingRule{BasePrice: 99, DiscountType: models.DiscountNone},
			bound: BoundMinFinalPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.Check(tt.rule)
			var violation *PolicyViolation
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, tt.bound, violation.Bound)
			assert.NotEmpty(t, violation.Message)
		})
	}
}

func TestPolicyCheck_FixedDiscountNotBoundedByPercentMax(t *testing.T) {
	final, err := DefaultPolicy().Check(models.PricingRule{
		BasePrice:     10000,
		DiscountType:  models.DiscountFixed,
		DiscountValue: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9920), final)
}

func TestPolicyCheck_CustomPolicy(t *testing.T) {
	policy := Policy{MaxDiscountPercent: 10, MaxMarkupPercent: 20, MinFinalPrice: 1000}

	_, err := policy.Check(models.PricingRule{ProductID: 3, BasePrice: 5000, DiscountType: models.DiscountPercentage, DiscountValue: 15})
	var violation *PolicyViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, BoundMaxDiscountPercent, violation.Bound)
	assert.Equal(t, 10.0, violation.Limit)
	assert.Equal(t, int64(3), violation.ProductID)
	assert.Contains(t, violation.Error(), "product 3")
}

func TestPolicyCheck_MalformedRule(t *testing.T) {
	_, err := DefaultPolicy().Check(models.PricingRule{BasePrice: -10})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "base_price", verr.Field)
}

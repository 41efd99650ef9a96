package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const upsertPricingRuleQuery = `
	INSERT INTO pricing_rules (product_id, base_price, markup_percentage, discount_type, discount_value, final_price)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (product_id) DO UPDATE SET
		base_price = EXCLUDED.base_price,
		markup_percentage = EXCLUDED.markup_percentage,
		discount_type = EXCLUDED.discount_type,
		discount_value = EXCLUDED.discount_value,
		final_price = EXCLUDED.final_price,
		updated_at = NOW()
	RETURNING id, created_at, updated_at`

// GetPricingRule retrieves a product's pricing rule, or nil if none exists
func (s *Store) GetPricingRule(ctx context.Context, productID int64) (*models.PricingRule, error) {
	var rule models.PricingRule
	err := s.db.GetContext(ctx, &rule, "SELECT * FROM pricing_rules WHERE product_id = $1", productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetPricingRules retrieves rules for several products keyed by product ID
func (s *Store) GetPricingRules(ctx context.Context, productIDs []int64) (map[int64]models.PricingRule, error) {
	rules := make(map[int64]models.PricingRule, len(productIDs))
	if len(productIDs) == 0 {
		return rules, nil
	}

	query, args, err := sqlx.In("SELECT * FROM pricing_rules WHERE product_id IN (?)", productIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var rows []models.PricingRule
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rules[r.ProductID] = r
	}
	return rules, nil
}

// UpsertPricingRule creates or replaces a single product's pricing rule
func (s *Store) UpsertPricingRule(ctx context.Context, rule *models.PricingRule) error {
	return s.db.GetContext(ctx, rule, upsertPricingRuleQuery,
		rule.ProductID, rule.BasePrice, rule.MarkupPercentage, string(rule.DiscountType), rule.DiscountValue, rule.FinalPrice)
}

// UpsertPricingRules writes all rules in one transaction; either all are stored or none
func (s *Store) UpsertPricingRules(ctx context.Context, rules []models.PricingRule) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range rules {
		rule := &rules[i]
		err := tx.GetContext(ctx, rule, upsertPricingRuleQuery,
			rule.ProductID, rule.BasePrice, rule.MarkupPercentage, string(rule.DiscountType), rule.DiscountValue, rule.FinalPrice)
		if err != nil {
			return fmt.Errorf("failed to upsert pricing rule for product %d: %w", rule.ProductID, err)
		}
	}

	return tx.Commit()
}

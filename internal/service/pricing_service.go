package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/pricing"
	"marketplace-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrBatchInProgress is returned when another request holds the batch's idempotency key
var ErrBatchInProgress = errors.New("batch pricing with this idempotency key is already in progress")

const batchLockPrefix = "batch-pricing:"

// PricingService computes and stores product pricing rules
type PricingService struct {
	repo           PricingRepository
	policy         pricing.Policy
	coordinator    BatchCoordinator
	publisher      EventPublisher
	idempotencyTTL time.Duration
	lockTTL        time.Duration
	logger         *zap.Logger
}

// NewPricingService creates a new pricing service. coordinator and publisher may be nil.
func NewPricingService(
	repo PricingRepository,
	policy pricing.Policy,
	coordinator BatchCoordinator,
	publisher EventPublisher,
	idempotencyTTL, lockTTL time.Duration,
) *PricingService {
	return &PricingService{
		repo:           repo,
		policy:         policy,
		coordinator:    coordinator,
		publisher:      publisher,
		idempotencyTTL: idempotencyTTL,
		lockTTL:        lockTTL,
		logger:         util.GetLogger(),
	}
}

// Policy returns the bounds enforced when rules are written
func (s *PricingService) Policy() pricing.Policy {
	return s.policy
}

// CalculateFinalPrice applies markup then discount and floors the result
func (s *PricingService) CalculateFinalPrice(basePrice int64, markupPercentage float64, discountType models.DiscountType, discountValue float64) (int64, error) {
	return pricing.CalculateFinalPrice(basePrice, markupPercentage, discountType, discountValue)
}

// PreviewRule checks rule against the policy and returns it with its final price filled in
func (s *PricingService) PreviewRule(rule models.PricingRule) (*models.PricingRule, error) {
	if rule.DiscountType == "" {
		rule.DiscountType = models.DiscountNone
	}

	final, err := s.policy.Check(rule)
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}
	rule.FinalPrice = final
	return &rule, nil
}

// PricingRuleInput is a requested rule for one product. BasePrice defaults to
// the product's list price.
type PricingRuleInput struct {
	BasePrice        *int64              `json:"base_price,omitempty"`
	MarkupPercentage float64             `json:"markup_percentage"`
	DiscountType     models.DiscountType `json:"discount_type"`
	DiscountValue    float64             `json:"discount_value"`
}

// SetPricingRule validates and stores a product's pricing rule.
// Returns nil if the product does not exist.
func (s *PricingService) SetPricingRule(ctx context.Context, productID int64, input PricingRuleInput) (*models.PricingRule, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.SetPricingRule",
		attribute.Int64("product_id", productID))
	defer span.End()

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, nil
	}

	base := product.Price
	if input.BasePrice != nil {
		base = *input.BasePrice
	}

	rule, err := s.PreviewRule(models.PricingRule{
		ProductID:        productID,
		BasePrice:        base,
		MarkupPercentage: input.MarkupPercentage,
		DiscountType:     input.DiscountType,
		DiscountValue:    input.DiscountValue,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertPricingRule(ctx, rule); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to save pricing rule: %w", err)
	}

	util.PricingRulesWritten.Inc()
	s.logger.Info("Pricing rule saved",
		zap.Int64("product_id", productID),
		zap.Int64("final_price", rule.FinalPrice))

	if s.publisher != nil {
		if err := s.publisher.PublishPricingRuleUpdated(ctx, *rule); err != nil {
			s.logger.Error("Failed to publish pricing rule update",
				zap.Int64("product_id", productID),
				zap.Error(err))
		}
	}

	return rule, nil
}

// BatchPricingRequest applies one operation to many products
type BatchPricingRequest struct {
	ProductIDs     []int64
	Operation      pricing.Operation
	IdempotencyKey string
}

// BatchPricingResult reports how many products received the operation.
// Replayed is set when the result comes from an earlier request with the
// same idempotency key.
type BatchPricingResult struct {
	UpdatedCount int  `json:"updated_count"`
	Replayed     bool `json:"replayed,omitempty"`
}

// ApplyBatchPricing applies the operation to every known product in the
// request. Unknown IDs are skipped. If any product would violate the policy
// nothing is written.
func (s *PricingService) ApplyBatchPricing(ctx context.Context, req BatchPricingRequest) (*BatchPricingResult, error) {
	ctx, span := util.StartSpan(ctx, "PricingService.ApplyBatchPricing",
		attribute.String("operation", string(req.Operation.Kind)),
		attribute.Int("product_count", len(req.ProductIDs)))
	defer span.End()

	if err := req.Operation.Validate(); err != nil {
		return nil, err
	}

	useKey := req.IdempotencyKey != "" && s.coordinator != nil
	if useKey {
		if result, err := s.replay(ctx, req.IdempotencyKey); err != nil || result != nil {
			return result, err
		}

		token, ok, err := s.coordinator.AcquireLock(ctx, batchLockPrefix+req.IdempotencyKey, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire batch lock: %w", err)
		}
		if !ok {
			return nil, ErrBatchInProgress
		}
		defer func() {
			if err := s.coordinator.ReleaseLock(context.Background(), batchLockPrefix+req.IdempotencyKey, token); err != nil {
				s.logger.Warn("Failed to release batch lock", zap.Error(err))
			}
		}()

		// another holder may have finished between the first check and the lock
		if result, err := s.replay(ctx, req.IdempotencyKey); err != nil || result != nil {
			return result, err
		}
	}

	rules, err := s.buildBatch(ctx, req)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	if len(rules) > 0 {
		if err := s.repo.UpsertPricingRules(ctx, rules); err != nil {
			util.RecordError(span, err)
			return nil, fmt.Errorf("failed to save pricing rules: %w", err)
		}
	}

	result := &BatchPricingResult{UpdatedCount: len(rules)}
	util.BatchPricingProductsUpdated.WithLabelValues(string(req.Operation.Kind)).Add(float64(len(rules)))
	util.PricingRulesWritten.Add(float64(len(rules)))

	s.logger.Info("Batch pricing applied",
		zap.String("operation", string(req.Operation.Kind)),
		zap.String("type", string(req.Operation.Type)),
		zap.Float64("value", req.Operation.Value),
		zap.Int("requested", len(req.ProductIDs)),
		zap.Int("updated", len(rules)))

	if useKey {
		if err := s.coordinator.SetIdempotencyKey(ctx, req.IdempotencyKey, strconv.Itoa(result.UpdatedCount), s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to store idempotency key",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err))
		}
	}

	if s.publisher != nil && len(rules) > 0 {
		ids := make([]int64, len(rules))
		for i, r := range rules {
			ids[i] = r.ProductID
		}
		event := &models.BatchPricingAppliedEvent{
			Operation:    string(req.Operation.Kind),
			Type:         string(req.Operation.Type),
			Value:        req.Operation.Value,
			ProductIDs:   ids,
			UpdatedCount: len(rules),
		}
		if err := s.publisher.PublishBatchPricingApplied(ctx, event); err != nil {
			s.logger.Error("Failed to publish batch pricing event", zap.Error(err))
		}
	}

	return result, nil
}

// buildBatch computes the new rule for every known product and checks each
// against the policy before anything is written
func (s *PricingService) buildBatch(ctx context.Context, req BatchPricingRequest) ([]models.PricingRule, error) {
	products, err := s.repo.GetProductsByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if len(products) == 0 {
		return []models.PricingRule{}, nil
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	existing, err := s.repo.GetPricingRules(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing rules: %w", err)
	}

	rules := make([]models.PricingRule, 0, len(products))
	for _, product := range products {
		var current *models.PricingRule
		if r, ok := existing[product.ID]; ok {
			current = &r
		}

		rule, err := pricing.Apply(pricing.RuleForProduct(product, current), req.Operation)
		if err != nil {
			return nil, err
		}

		final, err := s.policy.Check(rule)
		if err != nil {
			s.recordRejection(err)
			return nil, err
		}
		rule.FinalPrice = final
		rules = append(rules, rule)
	}
	return rules, nil
}

func (s *PricingService) replay(ctx context.Context, key string) (*BatchPricingResult, error) {
	value, found, err := s.coordinator.CheckIdempotencyKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if !found {
		return nil, nil
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency record for key %q: %w", key, err)
	}

	s.logger.Info("Duplicate batch pricing request detected",
		zap.String("idempotency_key", key),
		zap.Int("updated_count", count))
	return &BatchPricingResult{UpdatedCount: count, Replayed: true}, nil
}

func (s *PricingService) recordRejection(err error) {
	var violation *pricing.PolicyViolation
	if errors.As(err, &violation) {
		util.PricingRulesRejected.WithLabelValues(violation.Bound).Inc()
	}
}

package service

import (
	"context"
	"time"

	"marketplace-service/internal/models"
)

// ProfileRepository loads customer profiles
type ProfileRepository interface {
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	UpdateProfileAdmCode(ctx context.Context, id int64, admCd string) error
}

// ZoneRepository persists seller delivery zones
type ZoneRepository interface {
	GetDeliveryZone(ctx context.Context, sellerID int64) (*models.DeliveryZone, error)
	GetDeliveryZones(ctx context.Context, sellerIDs []int64) (map[int64]models.DeliveryZone, error)
	UpsertDeliveryZone(ctx context.Context, zone *models.DeliveryZone) error
}

// RecipeRepository loads recipes and their candidate products
type RecipeRepository interface {
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	GetProductsByNames(ctx context.Context, names []string) ([]models.Product, error)
}

// PricingRepository reads products and writes pricing rules
type PricingRepository interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	GetPricingRule(ctx context.Context, productID int64) (*models.PricingRule, error)
	GetPricingRules(ctx context.Context, productIDs []int64) (map[int64]models.PricingRule, error)
	UpsertPricingRule(ctx context.Context, rule *models.PricingRule) error
	UpsertPricingRules(ctx context.Context, rules []models.PricingRule) error
}

// Repository is everything the services need from a store.
// Both store.Store and store.MemoryStore satisfy it.
type Repository interface {
	ProfileRepository
	ZoneRepository
	RecipeRepository
	PricingRepository
	Ping(ctx context.Context) error
}

// CatalogCache caches candidate products per trimmed ingredient name
type CatalogCache interface {
	GetCatalog(ctx context.Context, name string) ([]models.Product, bool, error)
	SetCatalog(ctx context.Context, name string, products []models.Product, ttl time.Duration) error
}

// BatchCoordinator provides idempotency keys and a lock for batch pricing
type BatchCoordinator interface {
	CheckIdempotencyKey(ctx context.Context, key string) (string, bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value string, ttl time.Duration) error
	AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, lockKey, token string) error
}

// EventPublisher publishes configuration change events
type EventPublisher interface {
	PublishDeliveryZoneUpdated(ctx context.Context, zone models.DeliveryZone) error
	PublishPricingRuleUpdated(ctx context.Context, rule models.PricingRule) error
	PublishBatchPricingApplied(ctx context.Context, event *models.BatchPricingAppliedEvent) error
}

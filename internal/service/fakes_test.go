package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketplace-service/internal/models"
)

type fakePublisher struct {
	mu      sync.Mutex
	zones   []models.DeliveryZone
	rules   []models.PricingRule
	batches []*models.BatchPricingAppliedEvent
	err     error
}

func (f *fakePublisher) PublishDeliveryZoneUpdated(ctx context.Context, zone models.DeliveryZone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zones = append(f.zones, zone)
	return f.err
}

func (f *fakePublisher) PublishPricingRuleUpdated(ctx context.Context, rule models.PricingRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule)
	return f.err
}

func (f *fakePublisher) PublishBatchPricingApplied(ctx context.Context, event *models.BatchPricingAppliedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, event)
	return f.err
}

type fakeCoordinator struct {
	mu       sync.Mutex
	keys     map[string]string
	locks    map[string]string
	released int
}

func newFakeCoordinator() *fakeCoordinator {
	return &fakeCoordinator{keys: map[string]string{}, locks: map[string]string{}}
}

func (f *fakeCoordinator) CheckIdempotencyKey(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.keys[key]
	return v, ok, nil
}

func (f *fakeCoordinator) SetIdempotencyKey(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = value
	return nil
}

func (f *fakeCoordinator) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.locks[lockKey]; held {
		return "", false, nil
	}
	f.locks[lockKey] = "token-" + lockKey
	return f.locks[lockKey], true, nil
}

func (f *fakeCoordinator) ReleaseLock(ctx context.Context, lockKey, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[lockKey] == token {
		delete(f.locks, lockKey)
		f.released++
	}
	return nil
}

type fakeCache struct {
	entries map[string][]models.Product
	sets    []string
	readErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]models.Product{}}
}

func (f *fakeCache) GetCatalog(ctx context.Context, name string) ([]models.Product, bool, error) {
	if f.readErr != nil {
		return nil, false, f.readErr
	}
	p, ok := f.entries[name]
	return p, ok, nil
}

func (f *fakeCache) SetCatalog(ctx context.Context, name string, products []models.Product, ttl time.Duration) error {
	f.entries[name] = products
	f.sets = append(f.sets, name)
	return nil
}

type fakeLookup struct {
	code  string
	err   error
	calls int
}

func (f *fakeLookup) LookupAdmCode(ctx context.Context, address string) (string, error) {
	f.calls++
	return f.code, f.err
}

var errStoreDown = errors.New("store down")

// failingZones wraps a zone repository and fails every read
type failingZones struct {
	ZoneRepository
}

func (failingZones) GetDeliveryZone(ctx context.Context, sellerID int64) (*models.DeliveryZone, error) {
	return nil, errStoreDown
}

func (failingZones) GetDeliveryZones(ctx context.Context, sellerIDs []int64) (map[int64]models.DeliveryZone, error) {
	return nil, errStoreDown
}

// countingRecipes records catalog queries
type countingRecipes struct {
	RecipeRepository
	queries [][]string
}

func (c *countingRecipes) GetProductsByNames(ctx context.Context, names []string) ([]models.Product, error) {
	c.queries = append(c.queries, append([]string{}, names...))
	return c.RecipeRepository.GetProductsByNames(ctx, names)
}

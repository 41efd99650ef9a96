package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/models"
)

// MemoryStore is an in-process store with the same query surface as Store.
// It backs demo mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[int64]models.Profile
	products map[int64]models.Product
	recipes  map[int64]models.Recipe
	zones    map[int64]models.DeliveryZone
	rules    map[int64]models.PricingRule
	nextID   int64
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[int64]models.Profile),
		products: make(map[int64]models.Product),
		recipes:  make(map[int64]models.Recipe),
		zones:    make(map[int64]models.DeliveryZone),
		rules:    make(map[int64]models.PricingRule),
		nextID:   1,
		now:      time.Now,
	}
}

func (m *MemoryStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// PutProfile inserts or replaces a profile. A zero ID is assigned.
func (m *MemoryStore) PutProfile(p models.Profile) models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == 0 {
		p.ID = m.id()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	p.UpdatedAt = m.now()
	m.profiles[p.ID] = p
	return p
}

// PutProduct inserts or replaces a product. A zero ID is assigned.
func (m *MemoryStore) PutProduct(p models.Product) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == 0 {
		p.ID = m.id()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	p.UpdatedAt = m.now()
	m.products[p.ID] = p
	return p
}

// PutRecipe inserts or replaces a recipe and its items
func (m *MemoryStore) PutRecipe(r models.Recipe) models.Recipe {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == 0 {
		r.ID = m.id()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	items := make([]models.RecipeIngredient, len(r.Items))
	for i, item := range r.Items {
		if item.ID == 0 {
			item.ID = m.id()
		}
		item.RecipeID = r.ID
		if item.Position == 0 {
			item.Position = i + 1
		}
		items[i] = item
	}
	r.Items = items
	m.recipes[r.ID] = r
	return r
}

// GetProductByID retrieves a product by ID, or nil if it does not exist
func (m *MemoryStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetProductsByIDs retrieves the known products among ids, ordered by ID
func (m *MemoryStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := m.products[id]; ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// GetProductsByNames returns products whose trimmed name is in names, ordered by ID
func (m *MemoryStore) GetProductsByNames(ctx context.Context, names []string) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	products := make([]models.Product, 0)
	for _, p := range m.products {
		if _, ok := wanted[strings.TrimSpace(p.Name)]; ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// GetRecipe retrieves a recipe with items in recipe order, or nil if it does not exist
func (m *MemoryStore) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.recipes[id]
	if !ok {
		return nil, nil
	}
	items := make([]models.RecipeIngredient, len(r.Items))
	copy(items, r.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	r.Items = items
	return &r, nil
}

// GetProfile retrieves a profile by ID, or nil if it does not exist
func (m *MemoryStore) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// UpdateProfileAdmCode stores a resolved administrative code on the profile
func (m *MemoryStore) UpdateProfileAdmCode(ctx context.Context, id int64, admCd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil
	}
	code := admCd
	p.AdmCd = &code
	p.UpdatedAt = m.now()
	m.profiles[id] = p
	return nil
}

// GetDeliveryZone retrieves a seller's delivery zone, or nil if none is configured
func (m *MemoryStore) GetDeliveryZone(ctx context.Context, sellerID int64) (*models.DeliveryZone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z, ok := m.zones[sellerID]
	if !ok {
		return nil, nil
	}
	return &z, nil
}

// GetDeliveryZones retrieves zones keyed by seller ID
func (m *MemoryStore) GetDeliveryZones(ctx context.Context, sellerIDs []int64) (map[int64]models.DeliveryZone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zones := make(map[int64]models.DeliveryZone, len(sellerIDs))
	for _, id := range sellerIDs {
		if z, ok := m.zones[id]; ok {
			zones[id] = z
		}
	}
	return zones, nil
}

// UpsertDeliveryZone creates or replaces the seller's delivery zone
func (m *MemoryStore) UpsertDeliveryZone(ctx context.Context, zone *models.DeliveryZone) error {
	if _, _, err := models.EncodeZoneValue(zone.Value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.zones[zone.SellerID]; ok {
		zone.ID = existing.ID
	} else {
		zone.ID = m.id()
	}
	zone.UpdatedAt = m.now()
	m.zones[zone.SellerID] = *zone
	return nil
}

// GetPricingRule retrieves a product's pricing rule, or nil if none exists
func (m *MemoryStore) GetPricingRule(ctx context.Context, productID int64) (*models.PricingRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[productID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// GetPricingRules retrieves rules keyed by product ID
func (m *MemoryStore) GetPricingRules(ctx context.Context, productIDs []int64) (map[int64]models.PricingRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := make(map[int64]models.PricingRule, len(productIDs))
	for _, id := range productIDs {
		if r, ok := m.rules[id]; ok {
			rules[id] = r
		}
	}
	return rules, nil
}

// UpsertPricingRule creates or replaces a single product's pricing rule
func (m *MemoryStore) UpsertPricingRule(ctx context.Context, rule *models.PricingRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upsertRuleLocked(rule)
	return nil
}

// UpsertPricingRules writes all rules under one lock
func (m *MemoryStore) UpsertPricingRules(ctx context.Context, rules []models.PricingRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range rules {
		m.upsertRuleLocked(&rules[i])
	}
	return nil
}

func (m *MemoryStore) upsertRuleLocked(rule *models.PricingRule) {
	now := m.now()
	if existing, ok := m.rules[rule.ProductID]; ok {
		rule.ID = existing.ID
		rule.CreatedAt = existing.CreatedAt
	} else {
		rule.ID = m.id()
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now
	m.rules[rule.ProductID] = *rule
}

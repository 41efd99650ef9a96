package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/recipe"
	"marketplace-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RecipeService turns a recipe and a serving count into a shopping list
type RecipeService struct {
	repo     RecipeRepository
	cache    CatalogCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewRecipeService creates a new recipe service. cache may be nil.
func NewRecipeService(repo RecipeRepository, cache CatalogCache, cacheTTL time.Duration) *RecipeService {
	return &RecipeService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// RecipeSummary identifies the recipe a calculation was made for
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// RecipeCalculation is a recipe resolved against the catalog
type RecipeCalculation struct {
	Recipe   RecipeSummary            `json:"recipe"`
	Servings int                      `json:"servings"`
	Items    []recipe.IngredientMatch `json:"items"`
}

// CalculateRecipe resolves every ingredient of the recipe for servings.
// Returns nil if the recipe does not exist.
func (s *RecipeService) CalculateRecipe(ctx context.Context, recipeID int64, servings int) (*RecipeCalculation, error) {
	ctx, span := util.StartSpan(ctx, "RecipeService.CalculateRecipe",
		attribute.Int64("recipe_id", recipeID),
		attribute.Int("servings", servings))
	defer span.End()

	start := time.Now()
	defer func() {
		util.RecipeCalculationLatency.Observe(time.Since(start).Seconds())
	}()

	if err := recipe.ValidateServings(servings); err != nil {
		util.RecipeCalculationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	r, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		util.RecipeCalculationsTotal.WithLabelValues("error").Inc()
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	if r == nil {
		util.RecipeCalculationsTotal.WithLabelValues("not_found").Inc()
		return nil, nil
	}

	candidates, err := s.loadCandidates(ctx, recipe.IngredientNames(r.Items))
	if err != nil {
		util.RecipeCalculationsTotal.WithLabelValues("error").Inc()
		util.RecordError(span, err)
		return nil, err
	}

	items, err := recipe.Calculate(r.Items, servings, candidates)
	if err != nil {
		util.RecipeCalculationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	unmatched := 0
	for _, item := range items {
		if !item.CanAddToCart {
			unmatched++
		}
	}
	util.RecipeIngredientsUnmatched.Add(float64(unmatched))
	util.RecipeCalculationsTotal.WithLabelValues("ok").Inc()

	s.logger.Debug("Recipe calculated",
		zap.Int64("recipe_id", recipeID),
		zap.Int("servings", servings),
		zap.Int("ingredients", len(items)),
		zap.Int("unmatched", unmatched))

	return &RecipeCalculation{
		Recipe:   RecipeSummary{ID: r.ID, Title: r.Title, Description: r.Description},
		Servings: servings,
		Items:    items,
	}, nil
}

// loadCandidates returns every product whose trimmed name is in names, in ID
// order, reading through the catalog cache when one is configured.
func (s *RecipeService) loadCandidates(ctx context.Context, names []string) ([]models.Product, error) {
	if len(names) == 0 {
		return []models.Product{}, nil
	}
	if s.cache == nil {
		products, err := s.repo.GetProductsByNames(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("failed to get candidate products: %w", err)
		}
		return products, nil
	}

	candidates := make([]models.Product, 0)
	missed := make([]string, 0, len(names))
	for _, name := range names {
		cached, hit, err := s.cache.GetCatalog(ctx, name)
		if err != nil {
			s.logger.Warn("Catalog cache read failed", zap.String("name", name), zap.Error(err))
			util.CatalogCacheLookups.WithLabelValues("error").Inc()
			missed = append(missed, name)
			continue
		}
		if !hit {
			util.CatalogCacheLookups.WithLabelValues("miss").Inc()
			missed = append(missed, name)
			continue
		}
		util.CatalogCacheLookups.WithLabelValues("hit").Inc()
		candidates = append(candidates, cached...)
	}

	if len(missed) > 0 {
		fetched, err := s.repo.GetProductsByNames(ctx, missed)
		if err != nil {
			return nil, fmt.Errorf("failed to get candidate products: %w", err)
		}

		byName := make(map[string][]models.Product, len(missed))
		for _, p := range fetched {
			n := strings.TrimSpace(p.Name)
			byName[n] = append(byName[n], p)
		}
		for _, name := range missed {
			if err := s.cache.SetCatalog(ctx, name, byName[name], s.cacheTTL); err != nil {
				s.logger.Warn("Catalog cache write failed", zap.String("name", name), zap.Error(err))
			}
		}
		candidates = append(candidates, fetched...)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates, nil
}

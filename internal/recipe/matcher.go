// Package recipe resolves recipe ingredients against the product catalog.
package recipe

import (
	"fmt"
	"strings"

	"marketplace-service/internal/models"
)

// Serving limits accepted by Calculate
const (
	MinServings = 1
	MaxServings = 200
)

// ValidationError reports input that Calculate refuses to coerce
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IngredientMatch is the resolution of one recipe ingredient
type IngredientMatch struct {
	IngredientName string          `json:"ingredient_name"`
	Unit           string          `json:"unit"`
	QuantityNeeded float64         `json:"quantity_needed"`
	MatchedProduct *models.Product `json:"matched_product"`
	CanAddToCart   bool            `json:"can_add_to_cart"`
}

// ValidateServings rejects servings outside [MinServings, MaxServings]
func ValidateServings(servings int) error {
	if servings < MinServings || servings > MaxServings {
		return &ValidationError{
			Field:   "servings",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinServings, MaxServings, servings),
		}
	}
	return nil
}

// Calculate scales each ingredient to servings and picks the cheapest in-stock
// product whose trimmed name and unit equal the ingredient's. Results follow
// the recipe order, one per ingredient.
func Calculate(items []models.RecipeIngredient, servings int, catalog []models.Product) ([]IngredientMatch, error) {
	if err := ValidateServings(servings); err != nil {
		return nil, err
	}

	index := indexCatalog(catalog)

	results := make([]IngredientMatch, 0, len(items))
	for _, item := range items {
		match := IngredientMatch{
			IngredientName: item.IngredientName,
			Unit:           item.Unit,
			QuantityNeeded: item.QuantityPerServing * float64(servings),
		}

		if p := index[matchKey(item.IngredientName, item.Unit)]; p != nil {
			product := *p
			match.MatchedProduct = &product
		}
		match.CanAddToCart = match.MatchedProduct != nil && match.MatchedProduct.Stock > 0

		results = append(results, match)
	}

	return results, nil
}

type key struct {
	name string
	unit string
}

func matchKey(name, unit string) key {
	return key{name: strings.TrimSpace(name), unit: strings.TrimSpace(unit)}
}

// indexCatalog keeps, per exact name/unit, the cheapest in-stock product.
// Equal prices keep the earlier catalog entry.
func indexCatalog(catalog []models.Product) map[key]*models.Product {
	index := make(map[key]*models.Product, len(catalog))
	for i := range catalog {
		p := &catalog[i]
		if p.Stock <= 0 {
			continue
		}
		k := matchKey(p.Name, p.Unit)
		if best, ok := index[k]; !ok || p.Price < best.Price {
			index[k] = p
		}
	}
	return index
}

// IngredientNames returns the distinct trimmed ingredient names in recipe order
func IngredientNames(items []models.RecipeIngredient) []string {
	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.IngredientName)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

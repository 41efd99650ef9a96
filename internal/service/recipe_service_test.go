package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/recipe"
	"marketplace-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchByName(t *testing.T, calc *RecipeCalculation, name string) recipe.IngredientMatch {
	t.Helper()
	for _, item := range calc.Items {
		if item.IngredientName == name {
			return item
		}
	}
	t.Fatalf("ingredient %q not in result", name)
	return recipe.IngredientMatch{}
}

func TestRecipeService_CalculateRecipe(t *testing.T) {
	svc := NewRecipeService(store.NewDemoStore(), nil, time.Minute)

	calc, err := svc.CalculateRecipe(context.Background(), store.DemoRecipeID, 4)
	require.NoError(t, err)
	require.NotNil(t, calc)

	assert.Equal(t, "김치찌개", calc.Recipe.Title)
	assert.Equal(t, store.DemoRecipeID, calc.Recipe.ID)
	assert.Equal(t, 4, calc.Servings)
	require.Len(t, calc.Items, 6)
	assert.Equal(t, "김치", calc.Items[0].IngredientName)

	onion := matchByName(t, calc, "양파")
	assert.InDelta(t, 0.2, onion.QuantityNeeded, 1e-9)
	require.NotNil(t, onion.MatchedProduct)
	assert.Equal(t, int64(2500), onion.MatchedProduct.Price)

	kimchi := matchByName(t, calc, "김치")
	require.NotNil(t, kimchi.MatchedProduct)
	assert.Equal(t, int64(11000), kimchi.MatchedProduct.Price, "out of stock product must be skipped")

	chili := matchByName(t, calc, "고춧가루")
	assert.Nil(t, chili.MatchedProduct)
	assert.False(t, chili.CanAddToCart)
}

func TestRecipeService_ServingsValidatedFirst(t *testing.T) {
	svc := NewRecipeService(store.NewDemoStore(), nil, time.Minute)

	for _, servings := range []int{0, -1, 201} {
		calc, err := svc.CalculateRecipe(context.Background(), 123456, servings)
		assert.Nil(t, calc)
		var verr *recipe.ValidationError
		assert.True(t, errors.As(err, &verr), "servings %d", servings)
	}
}

func TestRecipeService_UnknownRecipe(t *testing.T) {
	svc := NewRecipeService(store.NewDemoStore(), nil, time.Minute)

	calc, err := svc.CalculateRecipe(context.Background(), 123456, 2)
	assert.NoError(t, err)
	assert.Nil(t, calc)
}

func TestRecipeService_CatalogCache(t *testing.T) {
	repo := &countingRecipes{RecipeRepository: store.NewDemoStore()}
	cache := newFakeCache()
	svc := NewRecipeService(repo, cache, time.Minute)
	ctx := context.Background()

	first, err := svc.CalculateRecipe(ctx, store.DemoRecipeID, 2)
	require.NoError(t, err)
	require.Len(t, repo.queries, 1)
	assert.Len(t, cache.sets, 6, "every missed name is cached, including names with no products")
	assert.Empty(t, cache.entries["고춧가루"])

	second, err := svc.CalculateRecipe(ctx, store.DemoRecipeID, 2)
	require.NoError(t, err)
	assert.Len(t, repo.queries, 1, "second calculation is served from the cache")
	assert.Equal(t, first.Items, second.Items)
}

func TestRecipeService_CacheReadErrorFallsBack(t *testing.T) {
	repo := &countingRecipes{RecipeRepository: store.NewDemoStore()}
	cache := newFakeCache()
	cache.readErr = errors.New("redis down")
	svc := NewRecipeService(repo, cache, time.Minute)

	calc, err := svc.CalculateRecipe(context.Background(), store.DemoRecipeID, 1)
	require.NoError(t, err)
	assert.Len(t, calc.Items, 6)
	assert.Len(t, repo.queries, 1)
}

func TestRecipeService_CachedTieKeepsCatalogOrder(t *testing.T) {
	repo := store.NewMemoryStore()
	r := repo.PutRecipe(models.Recipe{
		Title: "감자조림",
		Items: []models.RecipeIngredient{{IngredientName: "감자", Unit: "kg", QuantityPerServing: 0.3}},
	})
	first := repo.PutProduct(models.Product{Name: "감자", Unit: "kg", Price: 2000, Stock: 1})
	second := repo.PutProduct(models.Product{Name: "감자", Unit: "kg", Price: 2000, Stock: 1})

	cache := newFakeCache()
	cache.entries["감자"] = []models.Product{second, first}
	svc := NewRecipeService(repo, cache, time.Minute)

	calc, err := svc.CalculateRecipe(context.Background(), r.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, calc.Items[0].MatchedProduct)
	assert.Equal(t, first.ID, calc.Items[0].MatchedProduct.ID)
}

package store

import (
	"context"
	"database/sql"
	"errors"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// GetProductByID retrieves a product by ID, or nil if it does not exist
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs, ordered by ID.
// Unknown IDs are simply absent from the result.
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?) ORDER BY id", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductsByNames returns every product whose whitespace-trimmed name is
// one of names, in ID order. Stock is not filtered here.
func (s *Store) GetProductsByNames(ctx context.Context, names []string) ([]models.Product, error) {
	if len(names) == 0 {
		return []models.Product{}, nil
	}

	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT * FROM products
		 WHERE match_name(name) = ANY($1)
		 ORDER BY id`,
		pq.Array(names))
	return products, err
}

// GetRecipe retrieves a recipe with its ingredients in recipe order, or nil if it does not exist
func (s *Store) GetRecipe(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.GetContext(ctx, &recipe,
		"SELECT id, title, description, created_at FROM recipes WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	err = s.db.SelectContext(ctx, &recipe.Items,
		"SELECT * FROM recipe_items WHERE recipe_id = $1 ORDER BY position, id", id)
	if err != nil {
		return nil, err
	}
	if recipe.Items == nil {
		recipe.Items = []models.RecipeIngredient{}
	}

	return &recipe, nil
}

// GetProfile retrieves a profile by ID, or nil if it does not exist
func (s *Store) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfileAdmCode stores a resolved administrative code on the profile
func (s *Store) UpdateProfileAdmCode(ctx context.Context, id int64, admCd string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET adm_cd = $1, updated_at = NOW() WHERE id = $2",
		admCd, id)
	return err
}

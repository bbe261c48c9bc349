package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetCategories retrieves all categories
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY id")
	return categories, err
}

// GetProductByID retrieves an active product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND is_active = TRUE", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductBySlug retrieves an active product by slug
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE slug = $1 AND is_active = TRUE", slug)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", slug)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductFilter narrows product listing
type ProductFilter struct {
	CategorySlug string
	Search       string
}

// GetProducts retrieves active products, optionally filtered by category
// slug and by a bilingual name search term.
func (s *Store) GetProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := `
		SELECT p.* FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active = TRUE`
	args := []interface{}{}
	n := 1

	if filter.CategorySlug != "" {
		query += fmt.Sprintf(" AND c.slug = $%d", n)
		args = append(args, filter.CategorySlug)
		n++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (p.name_uz ILIKE $%d OR p.name_ru ILIKE $%d)", n, n)
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	query += " ORDER BY p.id"

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductsByIDs retrieves multiple active products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?) AND is_active = TRUE", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetDiscountedProducts retrieves active discounted products for the
// marketing digest, highest discount first.
func (s *Store) GetDiscountedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT * FROM products
		WHERE is_active = TRUE AND discount_percent > 0
		ORDER BY discount_percent DESC, id
		LIMIT $1`, limit)
	return products, err
}

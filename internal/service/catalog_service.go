package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

const catalogCacheTTL = 5 * time.Minute

// CatalogService serves categories and products with a short Redis cache
// in front of the database. A cache failure falls through to the
// database; it never fails a read.
type CatalogService struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// ListCategories returns all categories
func (cs *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListCategories")
	defer span.End()

	var categories []models.Category
	hit, err := cs.redis.GetJSON(ctx, "categories", &categories)
	if err != nil {
		cs.logger.Warn("Category cache read failed", zap.Error(err))
	}
	if hit {
		return categories, nil
	}

	categories, err = cs.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	if err := cs.redis.CacheJSON(ctx, "categories", categories, catalogCacheTTL); err != nil {
		cs.logger.Debug("Category cache write failed", zap.Error(err))
	}
	return categories, nil
}

// ListProducts returns active products matching the filter. Filtered
// listings bypass the cache; the unfiltered storefront page is cached.
func (cs *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProducts")
	defer span.End()

	cacheable := filter.CategorySlug == "" && filter.Search == ""

	if cacheable {
		var products []models.Product
		hit, err := cs.redis.GetJSON(ctx, "products:all", &products)
		if err != nil {
			cs.logger.Warn("Product cache read failed", zap.Error(err))
		}
		if hit {
			return products, nil
		}
	}

	products, err := cs.store.GetProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	if cacheable {
		if err := cs.redis.CacheJSON(ctx, "products:all", products, catalogCacheTTL); err != nil {
			cs.logger.Debug("Product cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// GetProduct returns one active product by slug
func (cs *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetProduct")
	defer span.End()

	key := fmt.Sprintf("product:%s", slug)

	var product models.Product
	hit, err := cs.redis.GetJSON(ctx, key, &product)
	if err != nil {
		cs.logger.Warn("Product cache read failed", zap.String("slug", slug), zap.Error(err))
	}
	if hit {
		return &product, nil
	}

	p, err := cs.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := cs.redis.CacheJSON(ctx, key, p, catalogCacheTTL); err != nil {
		cs.logger.Debug("Product cache write failed", zap.Error(err))
	}
	return p, nil
}

// DiscountedProducts returns the current best-discounted actives for the
// marketing digest.
func (cs *CatalogService) DiscountedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return cs.store.GetDiscountedProducts(ctx, limit)
}

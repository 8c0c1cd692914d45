package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrCategoryNotFound = errors.New("category not found")

// Cache holds the last-fetched catalog in memory. Each session start reloads
// it; sessions never mutate it.
type Cache struct {
	source Source
	logger *zap.Logger
	sfg    singleflight.Group // one fetch in flight per resource

	mu         sync.RWMutex
	loaded     bool
	categories []domain.Category
	products   map[string][]domain.Product
	byID       map[string]domain.Product
}

func NewCache(source Source, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		source:   source,
		logger:   logger,
		products: map[string][]domain.Product{},
		byID:     map[string]domain.Product{},
	}
}

// Load fetches categories and products. On failure the cached data is left as it was.
func (c *Cache) Load(ctx context.Context) error {
	_, err, _ := c.sfg.Do("catalog", func() (interface{}, error) {
		categories, err := c.source.FetchCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load categories: %w", err)
		}
		products, err := c.source.FetchProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}

		c.mu.Lock()
		c.categories = categories
		c.setProductsLocked(products)
		c.loaded = true
		c.mu.Unlock()

		c.logger.Info("catalog loaded",
			zap.Int("categories", len(categories)),
			zap.Int("products", len(c.byID)))
		return nil, nil
	})
	return err
}

func (c *Cache) ensureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

func (c *Cache) Categories(ctx context.Context) ([]domain.Category, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out, nil
}

// Products returns the products of a category, refetching the product list
// once when the category is not cached.
func (c *Cache) Products(ctx context.Context, categoryKey string) ([]domain.Product, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if products, ok := c.lookupCategory(categoryKey); ok {
		return products, nil
	}

	c.logger.Warn("category missing from cache, refetching", zap.String("category", categoryKey))
	if err := c.refreshProducts(ctx); err != nil {
		return nil, err
	}
	if products, ok := c.lookupCategory(categoryKey); ok {
		return products, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryKey)
}

// Product looks up a cached product by id without fetching.
func (c *Cache) Product(productID string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[productID]
	return p, ok
}

func (c *Cache) lookupCategory(key string) ([]domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products, ok := c.products[key]
	if !ok {
		return nil, false
	}
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, true
}

func (c *Cache) refreshProducts(ctx context.Context) error {
	_, err, _ := c.sfg.Do("products", func() (interface{}, error) {
		products, err := c.source.FetchProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		c.mu.Lock()
		c.setProductsLocked(products)
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Cache) setProductsLocked(products map[string][]domain.Product) {
	c.products = make(map[string][]domain.Product, len(products))
	c.byID = make(map[string]domain.Product)
	for key, list := range products {
		c.products[key] = list
		for _, p := range list {
			c.byID[p.ID] = p
		}
	}
}

// internal/infrastructure/database/redis/category_cache.go
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/product"
)

const (
	categoriesKey = "catalog:categories"
	categoriesTTL = 10 * time.Minute
)

// CategoryCache keeps the category listing in Redis. Cache failures are logged
// and treated as misses.
type CategoryCache struct {
	client *Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewCategoryCache creates a category cache with the default TTL
func NewCategoryCache(client *Client, log logrus.FieldLogger) *CategoryCache {
	return &CategoryCache{
		client: client,
		ttl:    categoriesTTL,
		log:    log,
	}
}

// GetCategories implements product.CategoryCache
func (c *CategoryCache) GetCategories(ctx context.Context) ([]product.Category, bool) {
	var categories []product.Category
	err := c.client.GetJSON(ctx, categoriesKey, &categories)
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("category cache read failed")
		return nil, false
	}
	return categories, true
}

// SetCategories implements product.CategoryCache
func (c *CategoryCache) SetCategories(ctx context.Context, categories []product.Category) {
	if err := c.client.SetJSON(ctx, categoriesKey, categories, c.ttl); err != nil {
		c.log.WithError(err).Warn("category cache write failed")
	}
}

// Invalidate drops the cached listing
func (c *CategoryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, categoriesKey)
}

var _ product.CategoryCache = (*CategoryCache)(nil)

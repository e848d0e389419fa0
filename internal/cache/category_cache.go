package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jwliao/babymall-backend/internal/app/service"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	categoryListingKey = "catalog:categories:listing"
	categoryListingTTL = 10 * time.Minute
)

// CategoryCache caches the category listing in Redis. Misses and Redis errors
// both read as a miss; the caller falls back to the database.
type CategoryCache struct {
	client *redis.Client
}

func NewCategoryCache(client *redis.Client) *CategoryCache {
	return &CategoryCache{client: client}
}

func (c *CategoryCache) GetListing(ctx context.Context) (*service.CategoryListing, bool) {
	payload, err := c.client.Get(ctx, categoryListingKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Category cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var listing service.CategoryListing
	if err := json.Unmarshal(payload, &listing); err != nil {
		logger.Warn("Category cache payload corrupt, dropping", map[string]interface{}{
			"error": err.Error(),
		})
		c.Invalidate(ctx)
		return nil, false
	}

	return &listing, true
}

func (c *CategoryCache) SetListing(ctx context.Context, listing *service.CategoryListing) {
	payload, err := json.Marshal(listing)
	if err != nil {
		logger.Warn("Failed to marshal category listing for cache", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, categoryListingKey, payload, categoryListingTTL).Err(); err != nil {
		logger.Warn("Category cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *CategoryCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, categoryListingKey).Err(); err != nil {
		logger.Warn("Category cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

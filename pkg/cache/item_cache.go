package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/closetline/services/inventory/domain/models"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "item"
)

// ItemCache is a Redis read model for inventory items, stored as JSON with a
// TTL. Keys are scoped by orgID to prevent cross-tenant data leakage.
// Key format: "item:{orgID}:{itemID}"
//
// Entries are deleted on every item mutation; the cache only ever serves the
// latest persisted state or nothing.
type ItemCache struct {
	client *RedisClient
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get retrieves a cached item by org + item ID.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, orgID, itemID uuid.UUID) (*models.Item, error) {
	data, err := c.client.Client().Get(ctx, c.key(orgID, itemID)).Bytes()
	if err != nil {
		return nil, err
	}
	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("cache decode item: %w", err)
	}
	return &item, nil
}

// Set writes an item with the cache TTL.
func (c *ItemCache) Set(ctx context.Context, item *models.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache encode item: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(item.OrgID, item.ID), data, ItemCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached item.
func (c *ItemCache) Delete(ctx context.Context, orgID, itemID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(orgID, itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "item:{orgID}:{itemID}"
func (c *ItemCache) key(orgID, itemID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", itemCacheKeyPrefix, orgID, itemID)
}

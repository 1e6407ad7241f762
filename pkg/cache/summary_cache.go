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
	// SummaryCacheTTL bounds how long a derived summary may live even without
	// an intervening mutation.
	SummaryCacheTTL = time.Hour

	summaryCacheKeyPrefix = "summary"
)

// SummaryCache holds the derived financial summary per org. Every item
// mutation invalidates the entry, which is the consistency mechanism that
// makes caching a derived aggregate safe: readers either get a summary that
// reflects all writes or recompute from the item set.
type SummaryCache struct {
	client *RedisClient
}

// NewSummaryCache creates a SummaryCache backed by the given RedisClient.
func NewSummaryCache(r *RedisClient) *SummaryCache {
	return &SummaryCache{client: r}
}

// Get retrieves the org's cached summary.
// Returns redis.Nil error when no summary is cached.
func (c *SummaryCache) Get(ctx context.Context, orgID uuid.UUID) (*models.FinancialSummary, error) {
	data, err := c.client.Client().Get(ctx, c.key(orgID)).Bytes()
	if err != nil {
		return nil, err
	}
	var summary models.FinancialSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("cache decode summary: %w", err)
	}
	return &summary, nil
}

// Set writes the org's summary with the cache TTL.
func (c *SummaryCache) Set(ctx context.Context, orgID uuid.UUID, summary *models.FinancialSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cache encode summary: %w", err)
	}
	if err := c.client.Client().Set(ctx, c.key(orgID), data, SummaryCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the org's cached summary. Called on every item mutation.
func (c *SummaryCache) Invalidate(ctx context.Context, orgID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(orgID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// key builds the Redis key: "summary:{orgID}"
func (c *SummaryCache) key(orgID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", summaryCacheKeyPrefix, orgID)
}

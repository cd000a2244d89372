package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nazotronic/Tourify/internal/models"
)

const catalogKey = "catalog:tours"

// CatalogCache keeps the full tour list in Redis so catalog reads do not hit
// MongoDB on every request. Mutations invalidate the whole list; the catalog
// is small and rebuilt on the next read.
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache creates a catalog cache. A nil client disables caching.
func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached tour list, or (nil, false) on a miss. Cache errors
// are treated as misses; the store remains the source of truth.
func (c *CatalogCache) Get(ctx context.Context) ([]models.Tour, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike are misses; failures here
		// must not break catalog reads
		return nil, false
	}
	var tours []models.Tour
	if err := json.Unmarshal(data, &tours); err != nil {
		_ = c.rdb.Del(ctx, catalogKey).Err()
		return nil, false
	}
	return tours, true
}

// Set stores the tour list with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, tours []models.Tour) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(tours)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, catalogKey, data, c.ttl).Err()
}

// Invalidate drops the cached tour list. Called after any tour mutation.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, catalogKey).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

const filterCacheKey = "moderation:filters:active"

// FilterCacheRepo caches the active content filter list. Filters change
// rarely but are evaluated on every report submission, so a short TTL keeps
// the hot path off postgres without delaying new filters for long.
type FilterCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewFilterCacheRepo(client *goredis.Client, ttl time.Duration) *FilterCacheRepo {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FilterCacheRepo{client: client, ttl: ttl}
}

// Get returns the cached filter list. The second result reports a cache hit;
// a miss is not an error.
func (r *FilterCacheRepo) Get(ctx context.Context) ([]model.ContentFilter, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, filterCacheKey).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get filter cache: %w", err)
	}

	var filters []model.ContentFilter
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil, false, fmt.Errorf("decode filter cache: %w", err)
	}
	return filters, true, nil
}

func (r *FilterCacheRepo) Set(ctx context.Context, filters []model.ContentFilter) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	raw, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("encode filter cache: %w", err)
	}
	if err := r.client.Set(ctx, filterCacheKey, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set filter cache: %w", err)
	}
	return nil
}

func (r *FilterCacheRepo) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, filterCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate filter cache: %w", err)
	}
	return nil
}

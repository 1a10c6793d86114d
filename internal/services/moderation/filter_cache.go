package moderation

import (
	"context"

	"github.com/Henjin888/hejin-music-platform/internal/domain/enums"
	"github.com/Henjin888/hejin-music-platform/internal/domain/model"
)

type FilterCache interface {
	Get(ctx context.Context) ([]model.ContentFilter, bool, error)
	Set(ctx context.Context, filters []model.ContentFilter) error
	Invalidate(ctx context.Context) error
}

// CachedFilterStore layers a cache over a FilterStore. Cache failures
// degrade to the backing store so a redis outage never blocks moderation.
type CachedFilterStore struct {
	store FilterStore
	cache FilterCache
}

func NewCachedFilterStore(store FilterStore, cache FilterCache) *CachedFilterStore {
	return &CachedFilterStore{store: store, cache: cache}
}

func (s *CachedFilterStore) Create(ctx context.Context, adminID int64, keyword string, filterType enums.FilterType, action enums.FilterAction) (model.ContentFilter, error) {
	filter, err := s.store.Create(ctx, adminID, keyword, filterType, action)
	if err != nil {
		return model.ContentFilter{}, err
	}
	_ = s.cache.Invalidate(ctx)
	return filter, nil
}

func (s *CachedFilterStore) ListActive(ctx context.Context) ([]model.ContentFilter, error) {
	if cached, hit, err := s.cache.Get(ctx); err == nil && hit {
		return cached, nil
	}

	filters, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, filters)
	return filters, nil
}

// File: database/repository/results/memory.go
package resultsRepo

import (
	"context"
	"time"

	"classfinder/models"

	"github.com/jellydator/ttlcache/v3"
)

type memoryResultStore struct {
	cache *ttlcache.Cache[int, *models.QueryResult]
	obs   Observer
}

// NewMemoryResultStore keeps results in process memory; used when Redis is
// not configured.
func NewMemoryResultStore(ttl time.Duration, obs Observer) ResultStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cache := ttlcache.New[int, *models.QueryResult](
		ttlcache.WithTTL[int, *models.QueryResult](ttl),
		ttlcache.WithDisableTouchOnHit[int, *models.QueryResult](),
	)
	return &memoryResultStore{cache: cache, obs: obs}
}

func (s *memoryResultStore) Get(_ context.Context, week int) (*models.QueryResult, bool, error) {
	item := s.cache.Get(week)
	if item == nil {
		observe(s.obs, false)
		return nil, false, nil
	}
	observe(s.obs, true)
	return item.Value(), true, nil
}

func (s *memoryResultStore) Set(_ context.Context, week int, result *models.QueryResult) error {
	s.cache.Set(week, result, ttlcache.DefaultTTL)
	s.cache.DeleteExpired()
	return nil
}

func (s *memoryResultStore) Ping(context.Context) error { return nil }

func (s *memoryResultStore) Name() string { return "memory" }

// File: database/repository/results/redis.go
package resultsRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"classfinder/models"

	"github.com/go-redis/redis/v8"
)

type redisResultStore struct {
	client *redis.Client
	ttl    time.Duration
	obs    Observer
}

// NewRedisResultStore stores results as JSON under KeyPrefix<week>.
func NewRedisResultStore(client *redis.Client, ttl time.Duration, obs Observer) ResultStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisResultStore{client: client, ttl: ttl, obs: obs}
}

func (s *redisResultStore) Get(ctx context.Context, week int) (*models.QueryResult, bool, error) {
	data, err := s.client.Get(ctx, cacheKey(week)).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(s.obs, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", err)
	}
	var result models.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		observe(s.obs, false)
		return nil, false, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	observe(s.obs, true)
	return &result, true, nil
}

func (s *redisResultStore) Set(ctx context.Context, week int, result *models.QueryResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey(week), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

func (s *redisResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisResultStore) Name() string { return "redis" }

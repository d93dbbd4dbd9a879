// File: database/repository/results/interface.go
package resultsRepo

import (
	"context"
	"fmt"
	"time"

	"classfinder/models"
)

// KeyPrefix namespaces cached results in Redis.
const KeyPrefix = "availability:week:"

// ResultStore caches computed availability per academic week.
type ResultStore interface {
	Get(ctx context.Context, week int) (*models.QueryResult, bool, error)
	Set(ctx context.Context, week int, result *models.QueryResult) error
	Ping(ctx context.Context) error
	Name() string
}

// Observer is told about every lookup.
type Observer interface {
	CacheHit()
	CacheMiss()
}

func cacheKey(week int) string {
	return fmt.Sprintf("%s%d", KeyPrefix, week)
}

func observe(obs Observer, hit bool) {
	if obs == nil {
		return
	}
	if hit {
		obs.CacheHit()
	} else {
		obs.CacheMiss()
	}
}

// DefaultTTL is used when a store is built with a non-positive TTL.
const DefaultTTL = 15 * time.Minute

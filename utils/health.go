package utils

import (
	"context"
	"sync"
	"time"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	StoreOK   bool      `json:"storeOk"`
	Breaker   string    `json:"breaker"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthChecks are the checks behind one snapshot.
type HealthChecks struct {
	StoreName string
	PingStore func(ctx context.Context) error
	Breaker   func() string
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth runs the checks once and stores the result.
func CheckHealth(ctx context.Context, p HealthChecks) HealthStatus {
	status := HealthStatus{Status: "ok", Store: p.StoreName, StoreOK: true, CheckedAt: time.Now()}
	if p.PingStore != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status.StoreOK = p.PingStore(ctx) == nil
		cancel()
	}
	if p.Breaker != nil {
		status.Breaker = p.Breaker()
	}
	if !status.StoreOK || status.Breaker == "open" {
		status.Status = "degraded"
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, p HealthChecks, every time.Duration) {
	CheckHealth(ctx, p)
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, p)
			}
		}
	}()
}

// services/portal/breaker.go
package portal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}

// BreakerConfig tunes when the breaker trips and how long it stays open.
type BreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// Breaker fast-fails portal calls after MaxFailures consecutive failures.
// After ResetTimeout a single trial call is let through; its outcome closes
// or re-opens the breaker.
type Breaker struct {
	name   string
	logger *zap.Logger
	cb     *gobreaker.CircuitBreaker

	mu     sync.RWMutex
	notify func(State)
}

func NewBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Breaker{name: name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			b.transition(fromGobreaker(from), fromGobreaker(to))
		},
		IsSuccessful: isPortalSuccess,
	})
	b.logger.Info("breaker_created",
		zap.String("name", name),
		zap.Int("maxFailures", cfg.MaxFailures),
		zap.Duration("resetTimeout", cfg.ResetTimeout))
	return b
}

// isPortalSuccess keeps caller cancellations from counting against the portal.
// A deadline still counts: a portal too slow to answer is failing.
func isPortalSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// OnStateChange registers fn to be called on every transition. fn runs while
// the breaker is locked and must not call back into it.
func (b *Breaker) OnStateChange(fn func(State)) {
	b.mu.Lock()
	b.notify = fn
	b.mu.Unlock()
}

func (b *Breaker) transition(from, to State) {
	switch to {
	case Open:
		b.logger.Error("breaker_opened", zap.String("name", b.name), zap.Stringer("from", from))
	case HalfOpen:
		b.logger.Info("breaker_half_open", zap.String("name", b.name))
	case Closed:
		b.logger.Info("breaker_state_to_closed", zap.String("name", b.name), zap.Stringer("from", from))
	}
	b.mu.RLock()
	fn := b.notify
	b.mu.RUnlock()
	if fn != nil {
		fn(to)
	}
}

// Execute runs op unless the breaker is open or its trial call is in flight.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn("breaker_fast_fail", zap.String("name", b.name))
		return ErrBreakerOpen
	}
	if err != nil && !isPortalSuccess(err) {
		b.logger.Warn("operation_failure", zap.String("name", b.name),
			zap.Uint32("failures", b.cb.Counts().ConsecutiveFailures), zap.Error(err))
	}
	return err
}

func (b *Breaker) State() State {
	return fromGobreaker(b.cb.State())
}

package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"classfinder/config"
	"classfinder/models"
	"classfinder/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Refresher recomputes a week's availability and stores it.
type Refresher interface {
	Refresh(ctx context.Context, creds models.Credentials, week *int) (*models.QueryResult, error)
}

// RefreshWorker owns the asynq scheduler that enqueues refreshes and the
// server that runs them.
type RefreshWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	backoff   func(attempt int) time.Duration

	mu      sync.Mutex
	done    chan struct{}
	stopped bool
	running bool
}

func newRefreshWorker(srv *asynq.Server, scheduler *asynq.Scheduler) *RefreshWorker {
	return &RefreshWorker{
		server:    srv,
		scheduler: scheduler,
		done:      make(chan struct{}),
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*2) * time.Second
		},
	}
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitRefreshWorker schedules a refresh of the current week on spec and
// starts processing in the background.
func InitRefreshWorker(spec string, svc Refresher, creds models.Credentials, logger *zap.Logger) (*RefreshWorker, error) {
	opts := redisOpts()

	srv := asynq.NewServer(opts, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
		Logger:      logger.Sugar(),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRefresh, handleRefreshTask(svc, creds, logger))

	scheduler := asynq.NewScheduler(opts, &asynq.SchedulerOpts{Logger: logger.Sugar()})
	task, err := tasks.NewRefreshTask(nil)
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(spec, task)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_CRON %q: %w", spec, err)
	}
	logger.Info("refresh scheduled", zap.String("cron", spec), zap.String("entry", entryID))

	w := newRefreshWorker(srv, scheduler)
	go w.start(func() error {
		if err := srv.Start(mux); err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			logger.Error("refresh scheduler failed to start", zap.Error(err))
		}
		return nil
	}, logger)
	return w, nil
}

// start retries launch with backoff. Shutdown ends the wait early.
func (w *RefreshWorker) start(launch func() error, logger *zap.Logger) {
	const maxAttempts = 5
	for attempts := 1; ; attempts++ {
		err := w.launchOnce(launch)
		if err == nil {
			return
		}
		logger.Warn("refresh worker failed to start",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		if attempts == maxAttempts {
			logger.Error("refresh worker disabled after repeated start failures")
			return
		}
		select {
		case <-w.done:
			return
		case <-time.After(w.backoff(attempts)):
		}
	}
}

// launchOnce runs launch unless the worker has been stopped. A stopped worker
// reports success so start gives up quietly.
func (w *RefreshWorker) launchOnce(launch func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	if err := launch(); err != nil {
		return err
	}
	w.running = true
	return nil
}

// stop marks the worker stopped and reports whether it had been launched.
func (w *RefreshWorker) stop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}
	w.stopped = true
	close(w.done)
	return w.running
}

// Shutdown stops scheduling and waits for an in-flight refresh. It also ends
// a pending start retry.
func (w *RefreshWorker) Shutdown() {
	if !w.stop() {
		return
	}
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func handleRefreshTask(svc Refresher, creds models.Credentials, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseRefreshTask(task)
		if err != nil {
			logger.Error("invalid refresh payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		start := time.Now()
		result, err := svc.Refresh(ctx, creds, p.Week)
		if err != nil {
			logger.Warn("availability refresh failed", zap.Error(err))
			return err
		}
		logger.Info("availability refreshed",
			zap.Int("week", result.Week),
			zap.Int("buildings", len(result.Buildings)),
			zap.Duration("took", time.Since(start)))
		return nil
	}
}

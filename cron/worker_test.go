package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"classfinder/models"
	"classfinder/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type stubRefresher struct {
	creds models.Credentials
	week  *int
	err   error
}

func (s *stubRefresher) Refresh(_ context.Context, creds models.Credentials, week *int) (*models.QueryResult, error) {
	s.creds, s.week = creds, week
	if s.err != nil {
		return nil, s.err
	}
	return &models.QueryResult{Week: 9}, nil
}

func TestHandleRefreshTask(t *testing.T) {
	svc := &stubRefresher{}
	creds := models.Credentials{Username: "21301234", Password: "secret"}
	handler := handleRefreshTask(svc, creds, zap.NewNop())

	week := 9
	task, _ := tasks.NewRefreshTask(&week)
	if err := handler(context.Background(), task); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if svc.creds != creds || svc.week == nil || *svc.week != 9 {
		t.Fatalf("unexpected call: %+v", svc)
	}
}

func TestHandleRefreshTaskErrors(t *testing.T) {
	boom := errors.New("portal down")
	handler := handleRefreshTask(&stubRefresher{err: boom}, models.Credentials{}, zap.NewNop())

	task, _ := tasks.NewRefreshTask(nil)
	if err := handler(context.Background(), task); !errors.Is(err, boom) {
		t.Fatalf("expected portal error, got %v", err)
	}

	bad := asynq.NewTask(tasks.TypeRefresh, []byte("{"))
	if err := handler(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry for a bad payload, got %v", err)
	}
}

func TestShutdownEndsStartRetry(t *testing.T) {
	w := newRefreshWorker(nil, nil)
	w.backoff = func(int) time.Duration { return time.Hour }

	var launches atomic.Int32
	failed := make(chan struct{}, 1)
	exited := make(chan struct{})
	go func() {
		w.start(func() error {
			launches.Add(1)
			failed <- struct{}{}
			return errors.New("redis unreachable")
		}, zap.NewNop())
		close(exited)
	}()

	<-failed
	w.Shutdown()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("start kept waiting after Shutdown")
	}
	if n := launches.Load(); n != 1 {
		t.Fatalf("expected a single launch, got %d", n)
	}
}

func TestShutdownBeforeStartSkipsLaunch(t *testing.T) {
	w := newRefreshWorker(nil, nil)
	w.Shutdown()
	w.Shutdown()

	called := false
	w.start(func() error {
		called = true
		return nil
	}, zap.NewNop())
	if called {
		t.Fatal("a stopped worker must not launch")
	}
}

package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
)

func TestRefreshTaskPayload(t *testing.T) {
	week := 12
	task, err := NewRefreshTask(&week)
	if err != nil {
		t.Fatalf("NewRefreshTask: %v", err)
	}
	if task.Type() != TypeRefresh {
		t.Fatalf("unexpected type %q", task.Type())
	}
	p, err := ParseRefreshTask(task)
	if err != nil {
		t.Fatalf("ParseRefreshTask: %v", err)
	}
	if p.Week == nil || *p.Week != 12 {
		t.Fatalf("unexpected payload %+v", p)
	}

	task, _ = NewRefreshTask(nil)
	if string(task.Payload()) != "{}" {
		t.Fatalf("expected week to be omitted, got %s", task.Payload())
	}
}

func TestParseRefreshTaskEmptyPayload(t *testing.T) {
	p, err := ParseRefreshTask(asynq.NewTask(TypeRefresh, nil))
	if err != nil || p.Week != nil {
		t.Fatalf("expected current week, got %+v, %v", p, err)
	}
}

package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TypeRefresh = "availability:refresh"

// RefreshPayload selects the week to recompute; nil means the portal's current week.
type RefreshPayload struct {
	Week *int `json:"week,omitempty"`
}

func NewRefreshTask(week *int) (*asynq.Task, error) {
	b, err := json.Marshal(RefreshPayload{Week: week})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRefresh, b, asynq.MaxRetry(2)), nil
}

// ParseRefreshTask decodes a task built by NewRefreshTask.
func ParseRefreshTask(t *asynq.Task) (RefreshPayload, error) {
	var p RefreshPayload
	if len(t.Payload()) == 0 {
		return p, nil
	}
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}

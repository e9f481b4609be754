// Package projection builds the read side from published events.
// Handles ordering and idempotent replays.
// Does not emit events or talk to subscribers.
package projection

import (
	"context"
	"log/slog"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/repositories"
)

var _ contract.EventSink = (*TaskProjection)(nil)

// TaskProjection keeps one Task record per aggregate, equal to the fold of its stream.
type TaskProjection struct {
	store repositories.ITaskStore
	log   *slog.Logger
}

func NewTaskProjection(store repositories.ITaskStore, log *slog.Logger) *TaskProjection {
	return &TaskProjection{store: store, log: log}
}

// Consume ignores rejections and events already folded, so a replay
// over an existing read side is harmless.
func (p *TaskProjection) Consume(ctx context.Context, env domain.EventEnvelope) error {
	if env.Context.Rejection {
		return nil
	}
	switch evt := env.Message.(type) {
	case domain.TaskCreated:
		task, _, err := p.store.Read(ctx, evt.ID)
		if err != nil {
			return err
		}
		if task.Version >= env.Context.Version {
			p.log.Debug("Event already projected", "task_id", evt.ID, "version", env.Context.Version)
			return nil
		}
		task.ID = evt.ID
		task.Title = evt.Title
		task.Version = env.Context.Version
		return p.store.Write(ctx, task)
	default:
		return nil
	}
}

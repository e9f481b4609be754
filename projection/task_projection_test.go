package projection

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tasks-lab/domain"
	"tasks-lab/mocks"
	"tasks-lab/repositories"
)

func created(id domain.TaskID, title string, version int64) domain.EventEnvelope {
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: title})
	return domain.NewEventEnvelope(domain.TaskCreated{ID: id, Title: title}, cmd, version)
}

func TestTaskProjection_Folds_TaskCreated(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := repositories.NewMemoryTaskStore()
	projection := NewTaskProjection(store, slog.Default())
	id := domain.NewTaskID()

	// When TaskCreated is consumed
	req.NoError(projection.Consume(ctx, created(id, "Reset wall clock", 1)))

	// Then the read side holds the task
	task, ok, err := store.Read(ctx, id)
	req.NoError(err)
	req.True(ok)
	req.Equal(domain.Task{ID: id, Title: "Reset wall clock", Version: 1}, task)
}

func TestTaskProjection_Replay_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := repositories.NewMemoryTaskStore()
	projection := NewTaskProjection(store, slog.Default())
	id := domain.NewTaskID()
	env := created(id, "Reset wall clock", 1)

	req.NoError(projection.Consume(ctx, env))
	req.NoError(projection.Consume(ctx, created(id, "stale copy", 1)))

	task, _, err := store.Read(ctx, id)
	req.NoError(err)
	req.Equal("Reset wall clock", task.Title)
}

func TestTaskProjection_Ignores_Rejections(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockITaskStore(ctrl)
	projection := NewTaskProjection(store, slog.Default())
	id := domain.NewTaskID()
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "t"})

	// Then the store is never touched
	store.EXPECT().Write(gomock.Any(), gomock.Any()).Times(0)

	require.NoError(t, projection.Consume(context.Background(),
		domain.NewRejectionEnvelope(domain.TaskAlreadyExists{ID: id}, cmd)))
}

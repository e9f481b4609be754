package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/repositories"
)

func eventStores(t *testing.T) map[string]repositories.IEventStore {
	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]repositories.IEventStore{
		"memory": repositories.NewMemoryEventStore(),
		"badger": repositories.NewBadgerEventStore(db, nil),
	}
}

func created(id domain.TaskID, title string, version int64) domain.EventEnvelope {
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: title})
	return domain.NewEventEnvelope(domain.TaskCreated{ID: id, Title: title}, cmd, version)
}

func TestEventStore_Append_Then_Load(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			id := domain.NewTaskID()
			evt := created(id, "Reset wall clock", 1)

			// When an event is appended to a fresh stream
			req.NoError(store.Append(ctx, string(id), 0, []domain.EventEnvelope{evt}))

			// Then it is loaded back as is
			events, err := store.Load(ctx, string(id))
			req.NoError(err)
			req.Equal([]domain.EventEnvelope{evt}, events)
		})
	}
}

func TestEventStore_Rejects_Stale_Expected_Version(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			id := domain.NewTaskID()
			req.NoError(store.Append(ctx, string(id), 0, []domain.EventEnvelope{created(id, "first", 1)}))

			// When a second writer still believes the stream is empty
			err := store.Append(ctx, string(id), 0, []domain.EventEnvelope{created(id, "second", 1)})

			// Then the append fails and the stream is unchanged
			req.ErrorIs(err, errors.ErrConcurrencyConflict)
			events, err := store.Load(ctx, string(id))
			req.NoError(err)
			req.Len(events, 1)
			req.Equal("first", events[0].Message.(domain.TaskCreated).Title)
		})
	}
}

func TestEventStore_Rejects_Gaps_And_Rejections(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			id := domain.NewTaskID()

			err := store.Append(ctx, string(id), 0, []domain.EventEnvelope{created(id, "t", 2)})
			req.ErrorIs(err, errors.ErrConcurrencyConflict)

			cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "t"})
			rejection := domain.NewRejectionEnvelope(domain.TaskAlreadyExists{ID: id}, cmd)
			err = store.Append(ctx, string(id), 0, []domain.EventEnvelope{rejection})
			req.ErrorIs(err, errors.ErrInvalidMessage)
		})
	}
}

func TestEventStore_ReadAll_Orders_By_Aggregate_Then_Version(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			req.NoError(store.Append(ctx, "b", 0, []domain.EventEnvelope{created("b", "b1", 1)}))
			req.NoError(store.Append(ctx, "a", 0, []domain.EventEnvelope{created("a", "a1", 1)}))

			var titles []string
			err := store.ReadAll(ctx, func(env domain.EventEnvelope) error {
				titles = append(titles, env.Message.(domain.TaskCreated).Title)
				return nil
			})

			req.NoError(err)
			req.Equal([]string{"a1", "b1"}, titles)
		})
	}
}

func TestEventStore_Load_Unknown_Stream_Is_Empty(t *testing.T) {
	for name, store := range eventStores(t) {
		t.Run(name, func(t *testing.T) {
			events, err := store.Load(context.Background(), "missing")
			require.NoError(t, err)
			require.Empty(t, events)
		})
	}
}

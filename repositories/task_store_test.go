package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tasks-lab/domain"
	"tasks-lab/repositories"
)

func taskStores(t *testing.T) map[string]repositories.ITaskStore {
	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]repositories.ITaskStore{
		"memory": repositories.NewMemoryTaskStore(),
		"badger": repositories.NewBadgerTaskStore(db, nil),
	}
}

func TestTaskStore_Write_Read(t *testing.T) {
	for name, store := range taskStores(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()

			// Given two tasks written out of order
			req.NoError(store.Write(ctx, domain.Task{ID: "b", Title: "second", Version: 1}))
			req.NoError(store.Write(ctx, domain.Task{ID: "a", Title: "first", Version: 1}))

			// Then each one is readable by id
			task, ok, err := store.Read(ctx, "a")
			req.NoError(err)
			req.True(ok)
			req.Equal("first", task.Title)

			// And ReadAll lists them by id
			tasks, err := store.ReadAll(ctx)
			req.NoError(err)
			req.Equal([]domain.Task{
				{ID: "a", Title: "first", Version: 1},
				{ID: "b", Title: "second", Version: 1},
			}, tasks)
		})
	}
}

func TestTaskStore_Read_Missing(t *testing.T) {
	for name, store := range taskStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Read(context.Background(), "missing")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

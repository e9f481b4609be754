package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/mocks"
	"tasks-lab/repositories"
)

func seededStore(t *testing.T) *repositories.MemoryTaskStore {
	store := repositories.NewMemoryTaskStore()
	for _, task := range []domain.Task{
		{ID: "c", Title: "Water the plants", Version: 1},
		{ID: "a", Title: "Reset wall clock", Version: 1},
		{ID: "b", Title: "Fix the alarm clock", Version: 1},
	} {
		require.NoError(t, store.Write(context.Background(), task))
	}
	return store
}

func TestQueryService_Read_All_Ordered_By_Id(t *testing.T) {
	req := require.New(t)
	service := NewQueryService(seededStore(t), nil, slog.Default())

	response, err := service.Read(context.Background(), domain.NewQuery("actor"))

	req.NoError(err)
	req.Equal(domain.StatusOK, response.Status)
	req.Equal([]domain.TaskID{"a", "b", "c"}, taskIDs(response.Tasks))
}

func TestQueryService_Read_By_Ids(t *testing.T) {
	req := require.New(t)
	service := NewQueryService(seededStore(t), nil, slog.Default())

	response, err := service.Read(context.Background(), domain.NewQuery("actor", "c", "a", "missing"))

	req.NoError(err)
	req.Equal([]domain.TaskID{"a", "c"}, taskIDs(response.Tasks))
}

func TestQueryService_Read_By_Title(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	search := mocks.NewMockITaskSearch(ctrl)
	service := NewQueryService(seededStore(t), search, slog.Default())
	query := domain.NewQuery("actor")
	query.Target.TitleContains = "clock"

	// Given the index finds two titles
	search.EXPECT().Search(gomock.Any(), "clock", 0).Return([]domain.TaskID{"b", "a"}, nil)

	response, err := service.Read(context.Background(), query)

	req.NoError(err)
	req.Equal([]domain.TaskID{"a", "b"}, taskIDs(response.Tasks))
}

func TestQueryService_Unsupported_Target(t *testing.T) {
	req := require.New(t)
	service := NewQueryService(seededStore(t), nil, slog.Default())
	query := domain.NewQuery("actor")
	query.Target.Type = domain.TaskCreatedType

	response, err := service.Read(context.Background(), query)

	req.ErrorIs(err, errors.ErrUnsupportedTarget)
	req.Equal(domain.StatusError, response.Status)
}

func taskIDs(tasks []domain.Task) []domain.TaskID {
	ids := make([]domain.TaskID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/repositories"
)

type IQueryService interface {
	Read(ctx context.Context, query domain.Query) (domain.QueryResponse, error)
}

type QueryService struct {
	tasks  repositories.ITaskStore
	search contract.ITaskSearch
	log    *slog.Logger
}

func NewQueryService(tasks repositories.ITaskStore, search contract.ITaskSearch, log *slog.Logger) *QueryService {
	return &QueryService{tasks: tasks, search: search, log: log}
}

// Read returns the tasks selected by the target, ordered by id.
// Ids and title search both narrow the result when given.
func (s *QueryService) Read(ctx context.Context, query domain.Query) (domain.QueryResponse, error) {
	if !domain.IsEntityType(query.Target.Type) {
		return domain.QueryResponse{Status: domain.StatusError},
			fmt.Errorf("%w: %s", errors.ErrUnsupportedTarget, query.Target.Type)
	}
	tasks, err := s.tasks.ReadAll(ctx)
	if err != nil {
		return domain.QueryResponse{Status: domain.StatusError}, err
	}
	if len(query.Target.IDs) > 0 {
		tasks = lo.Filter(tasks, func(t domain.Task, _ int) bool {
			return lo.Contains(query.Target.IDs, t.ID)
		})
	}
	if query.Target.TitleContains != "" {
		found, err := s.search.Search(ctx, query.Target.TitleContains, 0)
		if err != nil {
			return domain.QueryResponse{Status: domain.StatusError}, err
		}
		tasks = lo.Filter(tasks, func(t domain.Task, _ int) bool {
			return lo.Contains(found, t.ID)
		})
	}
	s.log.Debug("Query served", "query_id", query.ID, "count", len(tasks))
	return domain.QueryResponse{Status: domain.StatusOK, Tasks: tasks}, nil
}

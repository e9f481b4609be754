//go:generate go run go.uber.org/mock/mockgen -source=task_store.go -destination=../mocks/mock_task_store.go -package=mocks
package repositories

import (
	"context"
	"sort"
	"sync"

	"tasks-lab/domain"
)

// ITaskStore holds the read side: the latest state of every task.
type ITaskStore interface {
	Write(ctx context.Context, task domain.Task) error
	Read(ctx context.Context, id domain.TaskID) (domain.Task, bool, error)
	// ReadAll returns every task ordered by id.
	ReadAll(ctx context.Context) ([]domain.Task, error)
}

type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[domain.TaskID]domain.Task
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[domain.TaskID]domain.Task)}
}

func (s *MemoryTaskStore) Write(_ context.Context, task domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *MemoryTaskStore) Read(_ context.Context, id domain.TaskID) (domain.Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	return task, ok, nil
}

func (s *MemoryTaskStore) ReadAll(_ context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	tasks := make([]domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	s.mu.RUnlock()
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

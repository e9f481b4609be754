//go:generate go run go.uber.org/mock/mockgen -source=event_store.go -destination=../mocks/mock_event_store.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tasks-lab/domain"
	"tasks-lab/errors"
)

// IEventStore keeps the event stream of every aggregate.
// Versions of one stream are contiguous and start at 1.
type IEventStore interface {
	// Append adds events after expectedVersion, failing with
	// errors.ErrConcurrencyConflict when the stream moved meanwhile.
	Append(ctx context.Context, aggregateID string, expectedVersion int64, events []domain.EventEnvelope) error
	Load(ctx context.Context, aggregateID string) ([]domain.EventEnvelope, error)
	// ReadAll walks every stream, aggregates by id and events by version.
	ReadAll(ctx context.Context, fn func(domain.EventEnvelope) error) error
}

type MemoryEventStore struct {
	mu      sync.RWMutex
	streams map[string][]domain.EventEnvelope
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{streams: make(map[string][]domain.EventEnvelope)}
}

func (s *MemoryEventStore) Append(_ context.Context, aggregateID string, expectedVersion int64, events []domain.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := s.streams[aggregateID]
	if current := int64(len(stream)); current != expectedVersion {
		return fmt.Errorf("%w: %s at version %d, expected %d",
			errors.ErrConcurrencyConflict, aggregateID, current, expectedVersion)
	}
	if err := checkVersions(expectedVersion, events); err != nil {
		return err
	}
	s.streams[aggregateID] = append(stream, events...)
	return nil
}

func (s *MemoryEventStore) Load(_ context.Context, aggregateID string) ([]domain.EventEnvelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stream := s.streams[aggregateID]
	out := make([]domain.EventEnvelope, len(stream))
	copy(out, stream)
	return out, nil
}

func (s *MemoryEventStore) ReadAll(ctx context.Context, fn func(domain.EventEnvelope) error) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.streams))
	for id := range s.streams {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		stream, err := s.Load(ctx, id)
		if err != nil {
			return err
		}
		for _, env := range stream {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(env); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkVersions(expectedVersion int64, events []domain.EventEnvelope) error {
	for i, env := range events {
		if env.Context.Rejection {
			return fmt.Errorf("%w: rejections are not stored", errors.ErrInvalidMessage)
		}
		if want := expectedVersion + int64(i) + 1; env.Context.Version != want {
			return fmt.Errorf("%w: event version %d, expected %d",
				errors.ErrConcurrencyConflict, env.Context.Version, want)
		}
	}
	return nil
}

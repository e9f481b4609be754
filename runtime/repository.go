package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/domain/task"
	"tasks-lab/errors"
	"tasks-lab/repositories"
)

var _ contract.ICommandHandler = (*AggregateRepository)(nil)

// AggregateRepository rebuilds an aggregate from its stream, lets it
// handle a command and appends the outcome with optimistic concurrency.
type AggregateRepository struct {
	mu    sync.Mutex
	locks map[string]*aggregateLock
	store repositories.IEventStore
	log   *slog.Logger
}

// aggregateLock is dropped from the map once nobody holds or waits for it.
type aggregateLock struct {
	sync.Mutex
	refs int
}

func NewAggregateRepository(store repositories.IEventStore, log *slog.Logger) *AggregateRepository {
	return &AggregateRepository{locks: make(map[string]*aggregateLock), store: store, log: log}
}

// lock serializes the commands of one aggregate. The returned func releases it.
func (r *AggregateRepository) lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &aggregateLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}

// Load replays the stream of one task.
func (r *AggregateRepository) Load(ctx context.Context, id domain.TaskID) (*task.Aggregate, error) {
	events, err := r.store.Load(ctx, string(id))
	if err != nil {
		return nil, err
	}
	aggregate := task.New(id)
	for _, env := range events {
		if err := aggregate.Apply(env.Message); err != nil {
			return nil, fmt.Errorf("replaying %s v%d: %w", id, env.Context.Version, err)
		}
	}
	return aggregate, nil
}

// Handle returns the stored event envelopes, or one rejection envelope
// when the aggregate refused the command. Rejections are not stored.
func (r *AggregateRepository) Handle(ctx context.Context, env domain.CommandEnvelope) ([]domain.EventEnvelope, error) {
	id := env.Message.AggregateID()
	unlock := r.lock(id)
	defer unlock()

	aggregate, err := r.Load(ctx, domain.TaskID(id))
	if err != nil {
		return nil, err
	}
	events, err := aggregate.Handle(env.Message)
	var rejection domain.Rejection
	if errors.As(err, &rejection) {
		r.log.Info("Command rejected", "command_id", env.ID, "aggregate_id", id, "reason", rejection.Error())
		return []domain.EventEnvelope{domain.NewRejectionEnvelope(rejection, env)}, nil
	}
	if err != nil {
		return nil, err
	}

	expected := aggregate.Version()
	envelopes := make([]domain.EventEnvelope, 0, len(events))
	for i, evt := range events {
		envelopes = append(envelopes, domain.NewEventEnvelope(evt, env, expected+int64(i)+1))
	}
	if err := r.store.Append(ctx, id, expected, envelopes); err != nil {
		return nil, err
	}
	return envelopes, nil
}

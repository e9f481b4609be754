package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/repositories"
)

var _ contract.EventSink = (*SubscriptionSink)(nil)

// SubscriptionSink runs after the projections. Event topics get the
// envelope itself, entity topics get the fresh state of the task.
// Subscribers are served concurrently so a stalled one only loses its
// own updates.
type SubscriptionSink struct {
	log      *slog.Logger
	registry contract.IRegistry
	tasks    repositories.ITaskStore
}

type delivery struct {
	subscriber contract.Subscriber
	update     domain.SubscriptionUpdate
}

func NewSubscriptionSink(log *slog.Logger, registry contract.IRegistry, tasks repositories.ITaskStore) *SubscriptionSink {
	return &SubscriptionSink{log: log, registry: registry, tasks: tasks}
}

func (s *SubscriptionSink) Consume(ctx context.Context, env domain.EventEnvelope) error {
	aggregateID := env.Message.AggregateID()
	var deliveries []delivery
	for _, sub := range s.registry.SubscribersFor(env.Message.TypeName()) {
		if !sub.Subscription.Topic.Target.Matches(aggregateID, env.Context.CommandID) {
			continue
		}
		deliveries = append(deliveries, delivery{subscriber: sub, update: domain.SubscriptionUpdate{
			SubscriptionID: sub.Subscription.ID,
			Events:         []domain.EventEnvelope{env},
		}})
	}

	if !env.Context.Rejection {
		entityDeliveries, err := s.entityDeliveries(ctx, env)
		if err != nil {
			return err
		}
		deliveries = append(deliveries, entityDeliveries...)
	}
	return s.deliver(ctx, deliveries)
}

func (s *SubscriptionSink) entityDeliveries(ctx context.Context, env domain.EventEnvelope) ([]delivery, error) {
	aggregateID := env.Message.AggregateID()
	entitySubs := s.registry.SubscribersFor(domain.TaskType)
	if len(entitySubs) == 0 {
		return nil, nil
	}
	task, ok, err := s.tasks.Read(ctx, domain.TaskID(aggregateID))
	if err != nil || !ok {
		return nil, err
	}
	var deliveries []delivery
	for _, sub := range entitySubs {
		if !sub.Subscription.Topic.Target.Matches(aggregateID, env.Context.CommandID) {
			continue
		}
		deliveries = append(deliveries, delivery{subscriber: sub, update: domain.SubscriptionUpdate{
			SubscriptionID: sub.Subscription.ID,
			Tasks:          []domain.Task{task},
		}})
	}
	return deliveries, nil
}

// deliver sends every update at once and waits for all of them. Updates
// that missed the deadline are reported in the returned error; a
// subscription cancelled meanwhile is not an error.
func (s *SubscriptionSink) deliver(ctx context.Context, deliveries []delivery) error {
	errs := make([]error, len(deliveries))
	var wg sync.WaitGroup
	for i, d := range deliveries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.subscriber.Sink.Send(ctx, d.update)
			if err == nil || errors.Is(err, errors.ErrSubscriptionNotFound) {
				return
			}
			s.log.Warn("Subscription update lost", "subscription_id", d.subscriber.Subscription.ID, "error", err)
			errs[i] = fmt.Errorf("subscription %s: %w", d.subscriber.Subscription.ID, err)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/runtime"
)

type ISubscriptionService interface {
	Subscribe(ctx context.Context, topic domain.Topic) (domain.Subscription, error)
	Activate(ctx context.Context, sub domain.Subscription, fn func(domain.SubscriptionUpdate) error) error
	Cancel(ctx context.Context, sub domain.Subscription) error
}

type SubscriptionService struct {
	registry   contract.IRegistry
	bufferSize int
	log        *slog.Logger
}

func NewSubscriptionService(registry contract.IRegistry, bufferSize int, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{registry: registry, bufferSize: bufferSize, log: log}
}

// Subscribe registers the topic. Updates are buffered until Activate.
func (s *SubscriptionService) Subscribe(_ context.Context, topic domain.Topic) (domain.Subscription, error) {
	typeName := domain.TypeName(topic.Target.Type)
	if !domain.IsEntityType(typeName) && !domain.IsEventType(typeName) {
		return domain.Subscription{}, fmt.Errorf("%w: %s", errors.ErrUnsupportedTarget, topic.Target.Type)
	}
	topic.Target.Type = typeName
	sub := domain.Subscription{ID: topic.ID, Topic: topic}
	if err := s.registry.Subscribe(sub, runtime.NewChannelSink(s.bufferSize)); err != nil {
		return domain.Subscription{}, err
	}
	s.log.Debug("Subscription created", "subscription_id", sub.ID, "type", typeName)
	return sub, nil
}

// Activate delivers updates to fn until ctx is done or the subscription is cancelled.
// A cancelled subscription ends with a nil error.
func (s *SubscriptionService) Activate(ctx context.Context, sub domain.Subscription, fn func(domain.SubscriptionUpdate) error) error {
	subscriber, ok := s.registry.Lookup(sub.ID)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrSubscriptionNotFound, sub.ID)
	}
	sink, ok := subscriber.Sink.(*runtime.ChannelSink)
	if !ok {
		return fmt.Errorf("%w: subscription %s cannot be activated", errors.ErrSubscriptionNotFound, sub.ID)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sink.Done():
			return nil
		case update := <-sink.Updates():
			if err := fn(update); err != nil {
				return err
			}
		}
	}
}

func (s *SubscriptionService) Cancel(_ context.Context, sub domain.Subscription) error {
	sink, ok := s.registry.Unsubscribe(sub.ID)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrSubscriptionNotFound, sub.ID)
	}
	sink.Close()
	s.log.Debug("Subscription cancelled", "subscription_id", sub.ID)
	return nil
}

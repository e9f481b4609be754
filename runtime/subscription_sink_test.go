package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"tasks-lab/contract"
	"tasks-lab/domain"
	"tasks-lab/errors"
	"tasks-lab/mocks"
)

func subscriber(sink contract.UpdateSink, target domain.TopicTarget) contract.Subscriber {
	topic := domain.NewTopic("actor", target)
	return contract.Subscriber{Subscription: domain.Subscription{ID: topic.ID, Topic: topic}, Sink: sink}
}

func TestSubscriptionSink_Delivers_Event_And_Entity(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	registry := mocks.NewMockIRegistry(ctrl)
	tasks := mocks.NewMockITaskStore(ctrl)
	eventSink := mocks.NewMockUpdateSink(ctrl)
	entitySink := mocks.NewMockUpdateSink(ctrl)
	id := domain.NewTaskID()
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "Reset wall clock"})
	env := domain.NewEventEnvelope(domain.TaskCreated{ID: id, Title: "Reset wall clock"}, cmd, 1)
	state := domain.Task{ID: id, Title: "Reset wall clock", Version: 1}

	// Given one event subscriber on the command and one entity subscriber
	onEvent := subscriber(eventSink, domain.TopicTarget{Type: domain.TaskCreatedType, CommandID: &cmd.ID})
	onEntity := subscriber(entitySink, domain.TopicTarget{Type: domain.TaskType})
	registry.EXPECT().SubscribersFor(domain.TaskCreatedType).Return([]contract.Subscriber{onEvent})
	registry.EXPECT().SubscribersFor(domain.TaskType).Return([]contract.Subscriber{onEntity})
	tasks.EXPECT().Read(gomock.Any(), id).Return(state, true, nil)

	// Then each one gets its own kind of update
	eventSink.EXPECT().Send(gomock.Any(), domain.SubscriptionUpdate{
		SubscriptionID: onEvent.Subscription.ID,
		Events:         []domain.EventEnvelope{env},
	}).Return(nil)
	entitySink.EXPECT().Send(gomock.Any(), domain.SubscriptionUpdate{
		SubscriptionID: onEntity.Subscription.ID,
		Tasks:          []domain.Task{state},
	}).Return(nil)

	// When
	req.NoError(NewSubscriptionSink(slog.Default(), registry, tasks).Consume(ctx, env))
}

func TestSubscriptionSink_Skips_Other_Commands(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	tasks := mocks.NewMockITaskStore(ctrl)
	sink := mocks.NewMockUpdateSink(ctrl)
	id := domain.NewTaskID()
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "t"})
	other := uuid.New()

	// Given a subscriber waiting for another command, no Send is expected
	registry.EXPECT().SubscribersFor(domain.TaskCreatedType).
		Return([]contract.Subscriber{subscriber(sink, domain.TopicTarget{Type: domain.TaskCreatedType, CommandID: &other})})
	registry.EXPECT().SubscribersFor(domain.TaskType).Return(nil)

	// When
	env := domain.NewEventEnvelope(domain.TaskCreated{ID: id, Title: "t"}, cmd, 1)
	req.NoError(NewSubscriptionSink(slog.Default(), registry, tasks).Consume(context.Background(), env))
}

func TestSubscriptionSink_Rejection_Does_Not_Touch_Entities(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	tasks := mocks.NewMockITaskStore(ctrl)
	sink := mocks.NewMockUpdateSink(ctrl)
	id := domain.NewTaskID()
	cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "t"})
	rejection := domain.NewRejectionEnvelope(domain.TaskAlreadyExists{ID: id}, cmd)
	onRejection := subscriber(sink, domain.TopicTarget{Type: domain.TaskAlreadyExistsType})

	registry.EXPECT().SubscribersFor(domain.TaskAlreadyExistsType).Return([]contract.Subscriber{onRejection})
	// A slow subscriber is reported to the fan-out
	sink.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.ErrSinkTimeout)

	err := NewSubscriptionSink(slog.Default(), registry, tasks).Consume(context.Background(), rejection)
	req.ErrorIs(err, errors.ErrSinkTimeout)
}

func TestSubscriptionSink_Stalled_Subscriber_Does_Not_Starve_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	stalled := NewChannelSink(0)
	healthy := NewChannelSink(100)
	sink := NewSubscriptionSink(slog.Default(), registry, mocks.NewMockITaskStore(ctrl))

	// Given a subscriber nobody reads and a subscriber with room to spare
	onStalled := subscriber(stalled, domain.TopicTarget{Type: domain.TaskCreatedType})
	onHealthy := subscriber(healthy, domain.TopicTarget{Type: domain.TaskCreatedType})
	req.NoError(registry.Subscribe(onStalled.Subscription, stalled))
	req.NoError(registry.Subscribe(onHealthy.Subscription, healthy))

	// When events are fanned out under a short deadline
	const events = 20
	for i := range events {
		id := domain.NewTaskID()
		cmd := domain.NewCommand("actor", domain.CreateTask{ID: id, Title: "t"})
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		err := sink.Consume(ctx, domain.NewEventEnvelope(domain.TaskCreated{ID: id, Title: "t"}, cmd, int64(i+1)))
		cancel()

		// Then the stalled subscriber surfaces as a timeout
		req.ErrorIs(err, context.DeadlineExceeded)
	}

	// And the healthy subscriber got every update
	req.Len(healthy.Updates(), events)
	req.Empty(stalled.Updates())
}

//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"tasks-lab/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	return typeName(w)
}

// GetSinkName names a sink the same way, for logs and telemetry.
func GetSinkName(s EventSink) string {
	if s == nil {
		return "NilSink"
	}
	return typeName(s)
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes every event published by the bounded context,
// rejections included. Consume must honour ctx cancellation.
type EventSink interface {
	Consume(ctx context.Context, env domain.EventEnvelope) error
}

// UpdateSink receives the updates of one subscription.
type UpdateSink interface {
	Send(ctx context.Context, update domain.SubscriptionUpdate) error
	Close()
}

type Subscriber struct {
	Subscription domain.Subscription
	Sink         UpdateSink
}

type IRegistry interface {
	Subscribe(sub domain.Subscription, sink UpdateSink) error
	Unsubscribe(id uuid.UUID) (UpdateSink, bool)
	Lookup(id uuid.UUID) (Subscriber, bool)
	SubscribersFor(typeName string) []Subscriber
}

// ICommandHandler turns one command into the envelopes it produced:
// the stored events, or a single rejection.
type ICommandHandler interface {
	Handle(ctx context.Context, env domain.CommandEnvelope) ([]domain.EventEnvelope, error)
}

type ICommandBus interface {
	Post(ctx context.Context, env domain.CommandEnvelope) domain.Ack
}

// ITaskSearch matches task titles. A limit <= 0 returns every match.
type ITaskSearch interface {
	Search(ctx context.Context, text string, limit int) ([]domain.TaskID, error)
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a fact emitted by an aggregate.
type Event interface {
	AggregateID() string
	TypeName() string
}

// TaskCreated records that a task came into existence.
type TaskCreated struct {
	ID    TaskID
	Title string
}

func (e TaskCreated) AggregateID() string { return string(e.ID) }

func (e TaskCreated) TypeName() string { return TaskCreatedType }

// Rejection is an event explaining why a command was refused.
// It is returned as an error by the aggregate and is never persisted.
type Rejection interface {
	Event
	error
}

// TaskAlreadyExists is raised when CreateTask targets an existing task.
type TaskAlreadyExists struct {
	ID TaskID
}

func (r TaskAlreadyExists) AggregateID() string { return string(r.ID) }

func (r TaskAlreadyExists) TypeName() string { return TaskAlreadyExistsType }

func (r TaskAlreadyExists) Error() string {
	return fmt.Sprintf("task %s already exists", r.ID)
}

// EventContext links an event to the command that produced it.
type EventContext struct {
	CommandID uuid.UUID
	Actor     UserID
	Version   int64
	Timestamp time.Time
	Rejection bool
}

// EventEnvelope is the unit stored in the event store and fanned out to sinks.
type EventEnvelope struct {
	ID      uuid.UUID
	Message Event
	Context EventContext
}

// NewEventEnvelope stamps an event produced while handling cmd.
func NewEventEnvelope(evt Event, cmd CommandEnvelope, version int64) EventEnvelope {
	return EventEnvelope{
		ID:      uuid.New(),
		Message: evt,
		Context: EventContext{
			CommandID: cmd.ID,
			Actor:     cmd.Context.Actor,
			Version:   version,
			Timestamp: time.Now().UTC(),
		},
	}
}

// NewRejectionEnvelope stamps a rejection of cmd.
func NewRejectionEnvelope(rejection Rejection, cmd CommandEnvelope) EventEnvelope {
	env := NewEventEnvelope(rejection, cmd, 0)
	env.Context.Rejection = true
	return env
}

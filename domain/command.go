package domain

import (
	"time"

	"github.com/google/uuid"
)

// Command is a request to change the state of one aggregate.
type Command interface {
	AggregateID() string
	TypeName() string
}

// CreateTask asks for a new task with the given title.
type CreateTask struct {
	ID    TaskID `validate:"required,uuid"`
	Title string `validate:"required,max=256"`
}

func (c CreateTask) AggregateID() string { return string(c.ID) }

func (c CreateTask) TypeName() string { return CreateTaskType }

// ActorContext tells who issued a request and when.
type ActorContext struct {
	Actor     UserID `validate:"required"`
	Timestamp time.Time
}

// CommandEnvelope wraps a command with the identity of the request.
type CommandEnvelope struct {
	ID      uuid.UUID
	Message Command
	Context ActorContext
}

// NewCommand envelopes a command on behalf of the actor.
func NewCommand(actor UserID, cmd Command) CommandEnvelope {
	return CommandEnvelope{
		ID:      uuid.New(),
		Message: cmd,
		Context: ActorContext{Actor: actor, Timestamp: time.Now().UTC()},
	}
}

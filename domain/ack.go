package domain

import "github.com/google/uuid"

type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
)

// Ack acknowledges that a command was accepted by the bus, or why not.
// Acceptance says nothing about the outcome of handling.
type Ack struct {
	CommandID uuid.UUID
	Status    Status
	Error     string
}

func Accepted(id uuid.UUID) Ack {
	return Ack{CommandID: id, Status: StatusOK}
}

func Refused(id uuid.UUID, err error) Ack {
	return Ack{CommandID: id, Status: StatusError, Error: err.Error()}
}

// Package task holds the Task aggregate: the write-side state of one
// task and the rules deciding which events a command produces.
package task

import (
	"fmt"

	"tasks-lab/domain"
	"tasks-lab/errors"
)

type Aggregate struct {
	state domain.Task
}

func New(id domain.TaskID) *Aggregate {
	return &Aggregate{state: domain.Task{ID: id}}
}

func (a *Aggregate) ID() string { return string(a.state.ID) }

func (a *Aggregate) Version() int64 { return a.state.Version }

// State returns a copy of the current task.
func (a *Aggregate) State() domain.Task { return a.state }

// Handle decides the events of a command without mutating the aggregate.
// A refused command yields a domain.Rejection as error.
func (a *Aggregate) Handle(cmd domain.Command) ([]domain.Event, error) {
	switch c := cmd.(type) {
	case domain.CreateTask:
		if a.state.Version > 0 {
			return nil, domain.TaskAlreadyExists{ID: c.ID}
		}
		return []domain.Event{domain.TaskCreated{ID: c.ID, Title: c.Title}}, nil
	default:
		return nil, fmt.Errorf("%w: %T", errors.ErrUnsupportedCommand, cmd)
	}
}

// Apply folds one event into the state.
func (a *Aggregate) Apply(evt domain.Event) error {
	switch e := evt.(type) {
	case domain.TaskCreated:
		a.state.ID = e.ID
		a.state.Title = e.Title
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownType, evt)
	}
	a.state.Version++
	return nil
}

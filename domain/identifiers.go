// Package domain contains the messages of the Tasks bounded context.
// Commands express intent, events record facts, and entity states are
// the folded result of events. Nothing here talks to storage or transport.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

const typeURLPrefix = "type.tasks-lab.io/"

// Type names of every message known to the context.
const (
	TaskType              = "tasks.Task"
	CreateTaskType        = "tasks.CreateTask"
	TaskCreatedType       = "tasks.TaskCreated"
	TaskAlreadyExistsType = "tasks.TaskAlreadyExists"
)

type TaskID string

type UserID string

func (id TaskID) String() string { return string(id) }

func (id UserID) String() string { return string(id) }

// NewTaskID generates a random task identifier.
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

// NewUserID generates a random actor identifier.
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// TypeURL qualifies a type name the way it travels on the wire.
func TypeURL(typeName string) string {
	return typeURLPrefix + typeName
}

// TypeName strips the URL prefix, accepting bare names as well.
func TypeName(typeURL string) string {
	return strings.TrimPrefix(typeURL, typeURLPrefix)
}

// IsEventType reports whether the type name designates an event or a rejection.
func IsEventType(typeName string) bool {
	switch TypeName(typeName) {
	case TaskCreatedType, TaskAlreadyExistsType:
		return true
	default:
		return false
	}
}

// IsEntityType reports whether the type name designates an entity state.
func IsEntityType(typeName string) bool {
	return TypeName(typeName) == TaskType
}

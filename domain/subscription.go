package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// TopicTarget selects what a subscription observes.
// Type is either an entity type or an event type. IDs narrows to
// given aggregates, CommandID to events produced by one command.
type TopicTarget struct {
	Type      string
	IDs       []TaskID
	CommandID *uuid.UUID
}

type Topic struct {
	ID      uuid.UUID
	Target  TopicTarget
	Context ActorContext
}

type Subscription struct {
	ID    uuid.UUID
	Topic Topic
}

// SubscriptionUpdate carries either entity states or events, never both.
type SubscriptionUpdate struct {
	SubscriptionID uuid.UUID
	Tasks          []Task
	Events         []EventEnvelope
}

// NewTopic builds a topic on behalf of the actor.
func NewTopic(actor UserID, target TopicTarget) Topic {
	return Topic{
		ID:      uuid.New(),
		Target:  target,
		Context: ActorContext{Actor: actor, Timestamp: time.Now().UTC()},
	}
}

// Matches reports whether an aggregate id and producing command pass the topic filters.
func (t TopicTarget) Matches(aggregateID string, commandID uuid.UUID) bool {
	if len(t.IDs) > 0 && !lo.Contains(t.IDs, TaskID(aggregateID)) {
		return false
	}
	if t.CommandID != nil && *t.CommandID != commandID {
		return false
	}
	return true
}

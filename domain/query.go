package domain

import "github.com/google/uuid"

// Target selects entity states of one type.
// Empty IDs and TitleContains mean "all".
type Target struct {
	Type          string
	IDs           []TaskID
	TitleContains string
}

type Query struct {
	ID      uuid.UUID
	Target  Target
	Context ActorContext
}

type QueryResponse struct {
	Status Status
	Tasks  []Task
}

// NewQuery builds a query for all tasks, optionally narrowed by ids.
func NewQuery(actor UserID, ids ...TaskID) Query {
	return Query{
		ID:      uuid.New(),
		Target:  Target{Type: TaskType, IDs: ids},
		Context: ActorContext{Actor: actor},
	}
}

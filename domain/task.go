package domain

// Task is the entity state of the Task aggregate.
type Task struct {
	ID      TaskID
	Title   string
	Version int64
}

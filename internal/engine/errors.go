package engine

import "fmt"

// TaskNotFoundError is returned when a completion targets an unknown id.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

// TaskDoneError is returned when a task has already been completed.
// Completions are recorded exactly once; corrections are new events.
type TaskDoneError struct {
	ID string
}

func (e TaskDoneError) Error() string {
	return fmt.Sprintf("task %s is already completed", e.ID)
}

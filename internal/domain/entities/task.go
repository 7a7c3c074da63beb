package entities

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority ranks a generated task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// IsValid checks if the priority is one of the known levels
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is an actionable item generated in bulk from the session
// transcript. Tasks are read-only from the client's perspective.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"createdAt"`
	Priority    TaskPriority `json:"priority"`
}

// NewTask creates an incomplete task with the given priority, defaulting
// to medium when the priority is unknown.
func NewTask(title, description string, priority TaskPriority) Task {
	if !priority.IsValid() {
		priority = PriorityMedium
	}
	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
		Priority:    priority,
	}
}

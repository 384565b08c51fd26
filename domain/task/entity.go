// Package task contains the core task domain: the entity, the filter/sort/
// paginate query engine, and the mutable backing collection.
package task

import "time"

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the fixed enum values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is one of the fixed enum values.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Weight returns the numeric ordering weight of a priority.
// Sorting by priority uses this weight, never the label text.
func (p TaskPriority) Weight() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is the core domain entity managed by the admin console.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Assignees   []string     `json:"assignees"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasAssignee reports whether name is one of the task's assignees.
func (t *Task) HasAssignee(name string) bool {
	for _, a := range t.Assignees {
		if a == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out tasks without
// exposing the collection's backing slices.
func (t *Task) Clone() Task {
	c := *t
	if t.Assignees != nil {
		c.Assignees = append([]string(nil), t.Assignees...)
	}
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return c
}

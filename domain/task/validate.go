package task

import (
	"strings"
	"time"
)

// Field limits enforced at the service boundary.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
)

// ValidateNew checks a task about to be created. The caller is expected to
// have assigned Status and Priority defaults already.
func ValidateNew(t *Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required")
	}
	if len(t.Title) > MaxTitleLen {
		return NewValidationError("title", "must be at most 100 characters")
	}
	if len(t.Description) > MaxDescriptionLen {
		return NewValidationError("description", "must be at most 1000 characters")
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "unknown status: "+string(t.Status))
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "unknown priority: "+string(t.Priority))
	}
	if len(t.Assignees) == 0 {
		return NewValidationError("assignees", "at least one assignee is required")
	}
	if t.DueDate != nil && t.DueDate.Before(startOfToday()) {
		return NewValidationError("due_date", "must not be before today")
	}
	return nil
}

// ValidatePatch checks the provided fields of a partial update. Untouched
// fields are not re-validated.
func ValidatePatch(p *TaskPatch) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return NewValidationError("title", "is required")
		}
		if len(*p.Title) > MaxTitleLen {
			return NewValidationError("title", "must be at most 100 characters")
		}
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLen {
		return NewValidationError("description", "must be at most 1000 characters")
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "unknown status: "+string(*p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("priority", "unknown priority: "+string(*p.Priority))
	}
	if p.Assignees != nil && len(p.Assignees) == 0 {
		return NewValidationError("assignees", "at least one assignee is required")
	}
	return nil
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

package task

import (
	"sync"
	"time"
)

// TaskPatch carries the fields of a partial update. Nil pointers and nil
// slices leave the corresponding field untouched.
type TaskPatch struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	Assignees   []string      `json:"assignees,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
}

// apply shallow-merges the provided fields onto t.
func (p *TaskPatch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignees != nil {
		t.Assignees = append([]string(nil), p.Assignees...)
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), p.Tags...)
	}
}

// Collection is the in-memory backing store for tasks. It preserves
// insertion order (new tasks are prepended) and is safe for concurrent use.
// Validation happens at the service boundary; the collection only enforces
// presence semantics.
type Collection struct {
	mu    sync.RWMutex
	items []*Task
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{items: make([]*Task, 0)}
}

// Insert prepends a fully-built task to the collection.
func (c *Collection) Insert(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]*Task{t}, c.items...)
}

// Get returns a copy of the task with the given id.
func (c *Collection) Get(id string) (Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.items {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return Task{}, ErrNotFound
}

// Update shallow-merges patch onto the task with the given id, bumps
// UpdatedAt, and returns a copy of the result. The task keeps its position
// in the collection.
func (c *Collection) Update(id string, patch TaskPatch) (Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.items {
		if t.ID == id {
			patch.apply(t)
			t.UpdatedAt = time.Now()
			return t.Clone(), nil
		}
	}
	return Task{}, ErrNotFound
}

// Delete removes the task with the given id. Deleting an absent id,
// including a second delete of the same id, returns ErrNotFound.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.items {
		if t.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// BatchDelete removes every task whose id is in ids. Unmatched ids are
// ignored; the return value counts only the rows actually removed.
func (c *Collection) BatchDelete(ids []string) int {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	affected := 0
	for _, t := range c.items {
		if want[t.ID] {
			affected++
			continue
		}
		kept = append(kept, t)
	}
	c.items = kept
	return affected
}

// BatchUpdateStatus sets status and bumps UpdatedAt on every task whose id
// is in ids. Unmatched ids are ignored; the return value counts only the
// rows actually changed.
func (c *Collection) BatchUpdateStatus(ids []string, status TaskStatus) int {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	affected := 0
	for _, t := range c.items {
		if want[t.ID] {
			t.Status = status
			t.UpdatedAt = now
			affected++
		}
	}
	return affected
}

// Snapshot returns a copy of every task in collection order, suitable for
// handing to Query.
func (c *Collection) Snapshot() []Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Task, 0, len(c.items))
	for _, t := range c.items {
		out = append(out, t.Clone())
	}
	return out
}

// Len returns the number of tasks in the collection.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

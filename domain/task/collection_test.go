package task

import (
	"errors"
	"testing"
	"time"
)

func seedCollection(ids ...string) *Collection {
	c := NewCollection()
	for i, id := range ids {
		created := testBase.Add(time.Duration(i) * time.Minute)
		c.Insert(&Task{
			ID:        id,
			Title:     "task " + id,
			Status:    StatusPending,
			Priority:  PriorityMedium,
			Assignees: []string{"alice"},
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return c
}

func TestCollectionInsertPrepends(t *testing.T) {
	c := seedCollection("t1", "t2", "t3")

	snap := c.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(Snapshot()) = %d, want 3", len(snap))
	}
	// Last inserted task comes first.
	want := []string{"t3", "t2", "t1"}
	for i, id := range want {
		if snap[i].ID != id {
			t.Errorf("Snapshot[%d].ID = %q, want %q", i, snap[i].ID, id)
		}
	}
}

func TestCollectionUpdate(t *testing.T) {
	c := seedCollection("t1", "t2")

	before, err := c.Get("t1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	title := "renamed"
	status := StatusCompleted
	updated, err := c.Update("t1", TaskPatch{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("Title = %q, want %q", updated.Title, "renamed")
	}
	if updated.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", updated.Status)
	}
	// Untouched fields keep their values.
	if updated.Priority != PriorityMedium {
		t.Errorf("Priority = %q, want medium (untouched)", updated.Priority)
	}
	if !updated.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}
	if updated.UpdatedAt.Before(before.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want >= %v", updated.UpdatedAt, before.UpdatedAt)
	}

	// The task keeps its position in the collection.
	snap := c.Snapshot()
	if snap[1].ID != "t1" {
		t.Errorf("updated task moved: Snapshot[1].ID = %q, want t1", snap[1].ID)
	}
}

func TestCollectionUpdateBumpsUpdatedAtEveryCall(t *testing.T) {
	c := seedCollection("t1")
	status := StatusInProgress

	first, err := c.Update("t1", TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	// Same payload again: UpdatedAt still moves forward.
	second, err := c.Update("t1", TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not bumped on repeated update: first=%v second=%v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestCollectionUpdateNotFound(t *testing.T) {
	c := seedCollection("t1")
	title := "x"
	if _, err := c.Update("missing", TaskPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCollectionDeleteStrict(t *testing.T) {
	c := seedCollection("t1", "t2")

	if err := c.Delete("t1"); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	if err := c.Delete("t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCollectionBatchDeleteBestEffort(t *testing.T) {
	c := seedCollection("t1", "t2", "t3")

	affected := c.BatchDelete([]string{"t1", "t2", "nonexistent"})
	if affected != 2 {
		t.Errorf("BatchDelete() = %d, want 2 (missing ids ignored)", affected)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if _, err := c.Get("t3"); err != nil {
		t.Errorf("t3 should survive batch delete, Get() error = %v", err)
	}
}

func TestCollectionBatchUpdateStatus(t *testing.T) {
	c := seedCollection("t1", "t2", "t3")

	affected := c.BatchUpdateStatus([]string{"t1", "t3", "ghost"}, StatusCancelled)
	if affected != 2 {
		t.Errorf("BatchUpdateStatus() = %d, want 2", affected)
	}
	for _, id := range []string{"t1", "t3"} {
		got, err := c.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if got.Status != StatusCancelled {
			t.Errorf("%s Status = %q, want cancelled", id, got.Status)
		}
	}
	untouched, _ := c.Get("t2")
	if untouched.Status != StatusPending {
		t.Errorf("t2 Status = %q, want pending (not in batch)", untouched.Status)
	}
}

func TestCollectionSnapshotIsACopy(t *testing.T) {
	c := seedCollection("t1")

	snap := c.Snapshot()
	snap[0].Title = "mutated"
	snap[0].Assignees[0] = "mallory"

	got, err := c.Get("t1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "task t1" {
		t.Errorf("collection task mutated through snapshot: Title = %q", got.Title)
	}
	if got.Assignees[0] != "alice" {
		t.Errorf("collection assignees mutated through snapshot: %v", got.Assignees)
	}
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/example/task-admin/events"
	"github.com/example/task-admin/modules/stream"
)

func TestFeed_NewestFirst(t *testing.T) {
	f := newFeed(10)

	for i := 1; i <= 3; i++ {
		f.add(Activity{ID: fmt.Sprintf("a%d", i), Message: fmt.Sprintf("entry %d", i)})
	}

	got := f.list(0)
	if len(got) != 3 {
		t.Fatalf("list() returned %d activities, want 3", len(got))
	}
	for i, wantID := range []string{"a3", "a2", "a1"} {
		if got[i].ID != wantID {
			t.Errorf("list()[%d].ID = %s, want %s", i, got[i].ID, wantID)
		}
	}
}

func TestFeed_EvictsOldestAtCapacity(t *testing.T) {
	f := newFeed(5)

	for i := 1; i <= 8; i++ {
		f.add(Activity{ID: fmt.Sprintf("a%d", i)})
	}

	if f.len() != 5 {
		t.Fatalf("len() = %d, want 5", f.len())
	}
	got := f.list(0)
	if got[0].ID != "a8" {
		t.Errorf("newest entry = %s, want a8", got[0].ID)
	}
	if got[len(got)-1].ID != "a4" {
		t.Errorf("oldest surviving entry = %s, want a4", got[len(got)-1].ID)
	}
}

func TestFeed_ListLimit(t *testing.T) {
	f := newFeed(10)
	for i := 1; i <= 6; i++ {
		f.add(Activity{ID: fmt.Sprintf("a%d", i)})
	}

	if got := f.list(2); len(got) != 2 || got[0].ID != "a6" {
		t.Errorf("list(2) = %v, want the two newest entries", got)
	}
	if got := f.list(100); len(got) != 6 {
		t.Errorf("list(100) returned %d activities, want 6", len(got))
	}
}

func TestHandlers_RecordActivities(t *testing.T) {
	m := NewModule()
	ctx := context.Background()

	_ = m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: "t1", Title: "Ship release", Priority: "high"}, nil)
	_ = m.handleTaskUpdated(ctx, events.TaskUpdatedEvent{TaskID: "t1", Title: "Ship release", Status: "done"}, nil)
	_ = m.handleTasksBatchChanged(ctx, events.TasksBatchChangedEvent{Operation: "delete", Affected: 4}, nil)
	_ = m.handlePhotoUploaded(ctx, events.PhotoUploadedEvent{PhotoID: "p1", UploaderID: "alice"}, nil)

	got := m.feed.list(0)
	if len(got) != 4 {
		t.Fatalf("feed has %d activities, want 4", len(got))
	}
	wantKinds := []string{"photo_uploaded", "tasks_batch_changed", "task_updated", "task_created"}
	for i, want := range wantKinds {
		if got[i].Kind != want {
			t.Errorf("feed[%d].Kind = %s, want %s", i, got[i].Kind, want)
		}
		if got[i].ID == "" || got[i].Message == "" || got[i].Timestamp.IsZero() {
			t.Errorf("feed[%d] has empty fields: %+v", i, got[i])
		}
	}
}

func TestRecord_PushesToHub(t *testing.T) {
	hub := stream.NewHub()
	hubCtx, cancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})

	sub := stream.NewSubscriber("feed-test")
	hub.Register(sub)
	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	m := NewModule()
	m.SetHub(hub)
	_ = m.handleTaskDeleted(context.Background(), events.TaskDeletedEvent{TaskID: "t9", Title: "Old chore"}, nil)

	select {
	case data := <-sub.Frames():
		var frame struct {
			Type    string   `json:"type"`
			Payload Activity `json:"payload"`
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("failed to unmarshal frame: %v", err)
		}
		if frame.Type != "activity" {
			t.Errorf("frame type = %q, want activity", frame.Type)
		}
		if frame.Payload.Kind != "task_deleted" {
			t.Errorf("payload kind = %q, want task_deleted", frame.Payload.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no frame received after recording an activity")
	}
}

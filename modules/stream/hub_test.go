package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func startTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})
	return hub
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("SubscriberCount() = %d, want %d", hub.SubscriberCount(), want)
}

func readFrame(t *testing.T, sub *Subscriber) Frame {
	t.Helper()
	select {
	case data, ok := <-sub.Frames():
		if !ok {
			t.Fatal("subscriber channel closed while expecting a frame")
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("failed to unmarshal frame: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return Frame{}
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub := startTestHub(t)

	first := NewSubscriber("sub-1")
	second := NewSubscriber("sub-2")
	hub.Register(first)
	hub.Register(second)
	waitForCount(t, hub, 2)

	hub.Broadcast("activity", map[string]string{"kind": "task_created"})

	for _, sub := range []*Subscriber{first, second} {
		frame := readFrame(t, sub)
		if frame.Type != "activity" {
			t.Errorf("frame type = %q, want %q", frame.Type, "activity")
		}
		payload, ok := frame.Payload.(map[string]any)
		if !ok {
			t.Fatalf("frame payload has type %T, want map", frame.Payload)
		}
		if payload["kind"] != "task_created" {
			t.Errorf("payload kind = %v, want task_created", payload["kind"])
		}
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := startTestHub(t)

	sub := NewSubscriber("sub-1")
	hub.Register(sub)
	waitForCount(t, hub, 1)

	hub.Unregister(sub)
	waitForCount(t, hub, 0)

	select {
	case _, ok := <-sub.Frames():
		if ok {
			t.Error("received a frame from an unregistered subscriber")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after unregister")
	}
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	hub := startTestHub(t)

	slow := NewSubscriber("slow")
	hub.Register(slow)
	waitForCount(t, hub, 1)

	// Never read: once the buffer is full the hub must drop the
	// subscriber instead of blocking.
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Broadcast("activity", i)
	}
	waitForCount(t, hub, 0)

	drained := 0
	for range slow.Frames() {
		drained++
	}
	if drained != subscriberBuffer {
		t.Errorf("drained %d buffered frames, want %d", drained, subscriberBuffer)
	}
}

func TestHub_ShutdownClosesSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	sub := NewSubscriber("sub-1")
	hub.Register(sub)
	waitForCount(t, hub, 1)

	cancel()
	hub.Wait()

	if _, ok := <-sub.Frames(); ok {
		t.Error("subscriber channel still open after shutdown")
	}

	// Post-shutdown calls must not block.
	hub.Broadcast("activity", "late")
	hub.Register(NewSubscriber("late"))
	hub.Unregister(sub)
}

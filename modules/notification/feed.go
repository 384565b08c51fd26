// Package notification keeps a bounded in-memory activity feed built
// from task and photo events, and pushes every new entry to the
// broadcast hub.
package notification

import (
	"sync"
	"time"
)

// FeedCapacity is how many activities the feed retains.
const FeedCapacity = 100

// Activity is one feed entry.
type Activity struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// feed holds the most recent activities, newest first.
type feed struct {
	mu         sync.RWMutex
	activities []Activity
	capacity   int
}

func newFeed(capacity int) *feed {
	return &feed{
		activities: make([]Activity, 0, capacity),
		capacity:   capacity,
	}
}

// add prepends the activity, evicting the oldest entry when full.
func (f *feed) add(a Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.activities = append([]Activity{a}, f.activities...)
	if len(f.activities) > f.capacity {
		f.activities = f.activities[:f.capacity]
	}
}

// list returns up to limit activities, newest first. limit <= 0 means all.
func (f *feed) list(limit int) []Activity {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.activities)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Activity, n)
	copy(out, f.activities[:n])
	return out
}

func (f *feed) len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.activities)
}

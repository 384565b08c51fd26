// Package stream owns the broadcast hub that fans activity frames out
// to connected websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// subscriberBuffer is the per-subscriber frame backlog before the hub
// considers the consumer too slow and drops it.
const subscriberBuffer = 16

// Frame is what subscribers receive, serialized as JSON.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Subscriber is one connected event stream consumer. The hub owns the
// channel: it is closed on unregister, drop, or shutdown.
type Subscriber struct {
	ID string
	ch chan []byte
}

// NewSubscriber creates a subscriber with a bounded frame buffer.
func NewSubscriber(id string) *Subscriber {
	return &Subscriber{
		ID: id,
		ch: make(chan []byte, subscriberBuffer),
	}
}

// Frames returns the channel the hub delivers serialized frames on.
func (s *Subscriber) Frames() <-chan []byte {
	return s.ch
}

// Hub manages subscribers and frame broadcasting.
type Hub struct {
	subscribers map[string]*Subscriber
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan *Frame
	done        chan struct{}
	mu          sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan *Frame, 256),
		done:        make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllSubscribers()
			close(h.done)
			return
		case sub := <-h.register:
			h.handleRegister(sub)
		case sub := <-h.unregister:
			h.handleUnregister(sub)
		case frame := <-h.broadcast:
			h.handleBroadcast(frame)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllSubscribers() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subscribers {
		close(sub.ch)
	}
	h.subscribers = make(map[string]*Subscriber)
}

func (h *Hub) handleRegister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers[sub.ID] = sub
	log.Printf("[hub] Subscriber %s registered", sub.ID)
}

func (h *Hub) handleUnregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.ID]; ok {
		delete(h.subscribers, sub.ID)
		close(sub.ch)
		log.Printf("[hub] Subscriber %s unregistered", sub.ID)
	}
}

func (h *Hub) handleBroadcast(frame *Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("[hub] Failed to marshal broadcast frame: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers {
		select {
		case sub.ch <- data:
		default:
			// Slow consumer, drop it rather than stall the hub.
			delete(h.subscribers, id)
			close(sub.ch)
			log.Printf("[hub] Dropping slow subscriber %s", id)
		}
	}
}

// Register adds a subscriber to the hub.
func (h *Hub) Register(sub *Subscriber) {
	select {
	case h.register <- sub:
	case <-h.done:
	}
}

// Unregister removes a subscriber and closes its channel.
func (h *Hub) Unregister(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Broadcast sends a frame to every subscriber.
func (h *Hub) Broadcast(frameType string, payload any) {
	select {
	case h.broadcast <- &Frame{Type: frameType, Payload: payload}:
	case <-h.done:
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

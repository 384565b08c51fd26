package stream

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
)

// StreamModule owns the broadcast hub lifecycle. Producers (the
// notification feed) and consumers (the websocket gateway) receive the
// hub by direct wiring in main.
type StreamModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

var _ mono.Module = (*StreamModule)(nil)
var _ mono.HealthCheckableModule = (*StreamModule)(nil)

// NewModule creates a new StreamModule.
func NewModule() *StreamModule {
	return &StreamModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *StreamModule) Name() string {
	return "stream"
}

// Start runs the hub goroutine.
func (m *StreamModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[stream] Module started - broadcast hub running")
	return nil
}

// Stop shuts the hub down and waits for it to drain.
func (m *StreamModule) Stop(_ context.Context) error {
	subscriberCount := m.hub.SubscriberCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[stream] Module stopped - %d subscribers were connected", subscriberCount)
	return nil
}

// Health returns the health status.
func (m *StreamModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"subscribers": m.hub.SubscriberCount(),
		},
	}
}

// GetHub returns the hub for modules that publish or serve frames.
func (m *StreamModule) GetHub() *Hub {
	return m.hub
}

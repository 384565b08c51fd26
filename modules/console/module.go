// Package console holds the per-connection state coordinator behind the
// admin UI: filters, pagination, the loaded page, and row selection, with
// stale reload responses discarded.
package console

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/task-admin/modules/task"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// ConsoleModule manages console sessions. One session is created per
// connected websocket client.
type ConsoleModule struct {
	port          task.TaskPort
	debounceDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

var _ mono.Module = (*ConsoleModule)(nil)
var _ mono.DependentModule = (*ConsoleModule)(nil)

// NewModule creates the console module.
func NewModule() *ConsoleModule {
	return &ConsoleModule{
		debounceDelay: defaultDebounce,
		sessions:      make(map[string]*Session),
	}
}

func (m *ConsoleModule) Name() string {
	return "console"
}

func (m *ConsoleModule) Dependencies() []string {
	return []string{"task"}
}

func (m *ConsoleModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.port = task.NewTaskAdapter(container)
	}
}

// NewSession creates and tracks a session bound to the task services.
func (m *ConsoleModule) NewSession() (*Session, error) {
	if m.port == nil {
		return nil, fmt.Errorf("console module not wired to task services")
	}
	s := newSession(uuid.New().String(), m.port, m.debounceDelay)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// CloseSession closes and forgets a session.
func (m *ConsoleModule) CloseSession(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// SessionCount returns the number of live sessions.
func (m *ConsoleModule) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *ConsoleModule) Start(_ context.Context) error {
	if m.port == nil {
		return fmt.Errorf("task dependency not set")
	}
	log.Println("[console] Module started (depends on: task)")
	return nil
}

func (m *ConsoleModule) Stop(_ context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	log.Printf("[console] Module stopped, closed %d sessions", len(sessions))
	return nil
}

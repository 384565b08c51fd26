package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/task-admin/modules/console"
	"github.com/example/task-admin/modules/stream"
	"github.com/example/task-admin/modules/task"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// consoleSession is the slice of the console session the gateway drives.
// Mutation errors surface to the client as toasts emitted by the session
// itself, so the dispatcher only reports frames it could not decode.
type consoleSession interface {
	SetFilters(patch console.FilterPatch)
	SetKeyword(keyword string)
	SetPagination(patch console.PagePatch)
	Reload()
	ToggleSelection(id string)
	SelectAll()
	ClearSelection()
	CreateTask(req *task.CreateTaskRequest) error
	UpdateTask(req *task.UpdateTaskRequest) error
	DeleteTask(id string) error
	BatchDeleteSelected() (int, error)
	BatchUpdateStatusSelected(status string) (int, error)
}

func (m *APIModule) setupWebsocketRoutes() {
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws/console", websocket.New(m.handleConsole))
	m.app.Get("/ws/events", websocket.New(m.handleEvents))
}

// wsWriter serializes writes to one connection. Session callbacks fire
// from reload goroutines while the read loop writes error frames, and
// the underlying conn allows only one concurrent writer.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) writeFrame(frame serverFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(frame)
}

// handleConsole handles WebSocket connections at /ws/console. Each
// connection owns one console session, closed on disconnect.
func (m *APIModule) handleConsole(c *websocket.Conn) {
	sess, err := m.console.NewSession()
	if err != nil {
		_ = c.WriteJSON(serverFrame{Type: "error", Error: "failed to open console session"})
		return
	}
	logger := slog.With("session", sess.ID())
	logger.Info("console session opened")

	defer func() {
		m.console.CloseSession(sess.ID())
		logger.Info("console session closed")
	}()

	w := &wsWriter{conn: c}
	sess.OnChange(func(snap console.Snapshot) {
		if err := w.writeFrame(serverFrame{Type: "state", Payload: snap}); err != nil {
			logger.Warn("state write failed", "error", err)
		}
	})
	sess.OnToast(func(t console.Toast) {
		if err := w.writeFrame(serverFrame{Type: "toast", Payload: t}); err != nil {
			logger.Warn("toast write failed", "error", err)
		}
	})

	// Push the empty state immediately so the client can render, then
	// kick off the first load.
	if err := w.writeFrame(serverFrame{Type: "state", Payload: sess.Snapshot()}); err != nil {
		return
	}
	sess.Reload()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read failed", "error", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			_ = w.writeFrame(serverFrame{Type: "error", Error: "invalid frame"})
			continue
		}
		if err := dispatchConsoleFrame(sess, frame); err != nil {
			_ = w.writeFrame(serverFrame{Type: "error", Error: err.Error()})
		}
	}
}

// dispatchConsoleFrame applies one client frame to the session.
func dispatchConsoleFrame(sess consoleSession, frame clientFrame) error {
	switch frame.Type {
	case "set_filters":
		var patch console.FilterPatch
		if err := json.Unmarshal(frame.Payload, &patch); err != nil {
			return fmt.Errorf("invalid set_filters payload")
		}
		sess.SetFilters(patch)
	case "set_keyword":
		var p keywordPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return fmt.Errorf("invalid set_keyword payload")
		}
		sess.SetKeyword(p.Keyword)
	case "set_pagination":
		var patch console.PagePatch
		if err := json.Unmarshal(frame.Payload, &patch); err != nil {
			return fmt.Errorf("invalid set_pagination payload")
		}
		sess.SetPagination(patch)
	case "toggle_selection":
		var p idPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return fmt.Errorf("invalid toggle_selection payload")
		}
		sess.ToggleSelection(p.ID)
	case "select_all":
		sess.SelectAll()
	case "clear_selection":
		sess.ClearSelection()
	case "reload":
		sess.Reload()
	case "create_task":
		var req task.CreateTaskRequest
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			return fmt.Errorf("invalid create_task payload")
		}
		_ = sess.CreateTask(&req)
	case "update_task":
		var req task.UpdateTaskRequest
		if err := json.Unmarshal(frame.Payload, &req); err != nil {
			return fmt.Errorf("invalid update_task payload")
		}
		_ = sess.UpdateTask(&req)
	case "delete_task":
		var p idPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return fmt.Errorf("invalid delete_task payload")
		}
		_ = sess.DeleteTask(p.ID)
	case "batch_delete":
		_, _ = sess.BatchDeleteSelected()
	case "batch_status":
		var p statusPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return fmt.Errorf("invalid batch_status payload")
		}
		_, _ = sess.BatchUpdateStatusSelected(p.Status)
	default:
		return fmt.Errorf("unknown frame type %q", frame.Type)
	}
	return nil
}

// handleEvents handles WebSocket connections at /ws/events: a read-only
// feed of broadcast hub frames.
func (m *APIModule) handleEvents(c *websocket.Conn) {
	sub := stream.NewSubscriber(uuid.New().String())
	m.hub.Register(sub)
	defer m.hub.Unregister(sub)

	logger := slog.With("subscriber", sub.ID)
	logger.Info("event stream opened")
	defer logger.Info("event stream closed")

	// Reader goroutine: the client never sends data frames, but reading
	// is what detects disconnects and close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data, ok := <-sub.Frames():
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Warn("write failed", "error", err)
				return
			}
		case <-done:
			return
		}
	}
}

// Package api is the HTTP façade: REST endpoints with a uniform
// response envelope, the websocket console gateway, and the websocket
// event stream.
package api

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/task-admin/modules/captcha"
	"github.com/example/task-admin/modules/catalog"
	"github.com/example/task-admin/modules/console"
	"github.com/example/task-admin/modules/notification"
	"github.com/example/task-admin/modules/photo"
	"github.com/example/task-admin/modules/stream"
	"github.com/example/task-admin/modules/task"
	"github.com/example/task-admin/modules/user"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// healthSource is one module whose health the /health endpoint reports.
type healthSource struct {
	name  string
	check mono.HealthCheckableModule
}

// APIModule serves the REST API and the websocket endpoints.
type APIModule struct {
	port string

	app        *fiber.App
	tasks      task.TaskPort
	users      user.UserPort
	products   catalog.CatalogPort
	photos     photo.PhotoPort
	captchas   captcha.CaptchaPort
	activities notification.NotificationPort

	console *console.ConsoleModule
	hub     *stream.Hub

	healthSources []healthSource
}

var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates the API module listening on the given port.
func NewModule(port string) *APIModule {
	return &APIModule{port: port}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"task", "user", "catalog", "photo", "captcha", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.tasks = task.NewTaskAdapter(container)
	case "user":
		m.users = user.NewUserAdapter(container)
	case "catalog":
		m.products = catalog.NewCatalogAdapter(container)
	case "photo":
		m.photos = photo.NewPhotoAdapter(container)
	case "captcha":
		m.captchas = captcha.NewCaptchaAdapter(container)
	case "notification":
		m.activities = notification.NewNotificationAdapter(container)
	}
}

// SetConsole wires the console module (called from main.go).
func (m *APIModule) SetConsole(c *console.ConsoleModule) {
	m.console = c
}

// SetHub wires the broadcast hub (called from main.go).
func (m *APIModule) SetHub(hub *stream.Hub) {
	m.hub = hub
}

// AddHealthSource registers a module with the /health aggregation.
func (m *APIModule) AddHealthSource(name string, check mono.HealthCheckableModule) {
	m.healthSources = append(m.healthSources, healthSource{name: name, check: check})
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.tasks == nil {
		return fmt.Errorf("task adapter dependency not set")
	}
	if m.console == nil {
		return fmt.Errorf("console module not wired, call SetConsole before start")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub not wired, call SetHub before start")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "Task Admin Console",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		BodyLimit:             12 * 1024 * 1024, // batch photo uploads
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	log.Println("[api] Module stopped")
	return nil
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":             m.port,
			"console_sessions": m.console.SessionCount(),
			"ws_subscribers":   m.hub.SubscriberCount(),
		},
	}
}

// errorHandler handles errors that escape route handlers, keeping the
// response envelope intact.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(Envelope{
		Success: false,
		Message: message,
	})
}

// GetApp returns the Fiber app (for testing).
func (m *APIModule) GetApp() *fiber.App {
	return m.app
}

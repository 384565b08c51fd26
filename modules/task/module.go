// Package task exposes the task domain as request-reply services and emits
// task lifecycle events.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	domain "github.com/example/task-admin/domain/task"
	"github.com/example/task-admin/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskModule provides task management services backed by the in-memory
// collection.
type TaskModule struct {
	collection *domain.Collection
	eventBus   mono.EventBus
	seed       bool
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the task module. When seed is true the collection is
// populated with sample tasks at startup.
func NewModule(seed bool) *TaskModule {
	return &TaskModule{
		collection: domain.NewCollection(),
		seed:       seed,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.TasksBatchChangedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "batch-delete-tasks", json.Unmarshal, json.Marshal, m.batchDeleteTasks,
	); err != nil {
		return fmt.Errorf("failed to register batch-delete-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "batch-update-status", json.Unmarshal, json.Marshal, m.batchUpdateStatus,
	); err != nil {
		return fmt.Errorf("failed to register batch-update-status service: %w", err)
	}

	log.Printf("[task] Registered services: list-tasks, create-task, update-task, delete-task, batch-delete-tasks, batch-update-status")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}
	if m.seed && m.collection.Len() == 0 {
		seedTasks(m.collection)
		log.Printf("[task] Seeded %d sample tasks", m.collection.Len())
	}
	log.Println("[task] Module started")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

// Health reports the module as healthy with the current collection size.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tasks": m.collection.Len(),
		},
	}
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/example/task-admin/events"
	"github.com/example/task-admin/modules/stream"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
)

// NotificationModule subscribes to domain events and serves the
// activity feed.
type NotificationModule struct {
	feed *feed
	hub  *stream.Hub
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.HealthCheckableModule = (*NotificationModule)(nil)

// NewModule creates a new NotificationModule.
func NewModule() *NotificationModule {
	return &NotificationModule{
		feed: newFeed(FeedCapacity),
	}
}

// Name returns the module name.
func (m *NotificationModule) Name() string {
	return "notification"
}

// SetHub wires the broadcast hub, done in main before the app starts.
func (m *NotificationModule) SetHub(hub *stream.Hub) {
	m.hub = hub
}

// RegisterServices registers the feed query service.
func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(container, "list-activities", json.Unmarshal, json.Marshal, m.listActivities); err != nil {
		return fmt.Errorf("failed to register list-activities service: %w", err)
	}

	log.Println("[notification] Registered services: services.notification.list-activities")
	return nil
}

// RegisterEventConsumers registers event handlers.
func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TasksBatchChangedV1, m.handleTasksBatchChanged, m); err != nil {
		return fmt.Errorf("failed to register TasksBatchChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.PhotoUploadedV1, m.handlePhotoUploaded, m); err != nil {
		return fmt.Errorf("failed to register PhotoUploaded consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.PhotoProcessedV1, m.handlePhotoProcessed, m); err != nil {
		return fmt.Errorf("failed to register PhotoProcessed consumer: %w", err)
	}

	log.Println("[notification] Registered event consumers: TaskCreated, TaskUpdated, TaskDeleted, TasksBatchChanged, PhotoUploaded, PhotoProcessed")
	return nil
}

// Start begins listening for events.
func (m *NotificationModule) Start(_ context.Context) error {
	log.Println("[notification] Module started - building activity feed")
	return nil
}

// Stop stops the module.
func (m *NotificationModule) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}

// Health reports the feed fill level.
func (m *NotificationModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"activities": m.feed.len(),
			"capacity":   FeedCapacity,
		},
	}
}

func (m *NotificationModule) listActivities(_ context.Context, req ListActivitiesRequest, _ *mono.Msg) (ListActivitiesResponse, error) {
	return ListActivitiesResponse{
		Activities: m.feed.list(req.Limit),
		Total:      m.feed.len(),
	}, nil
}

// Event handlers

func (m *NotificationModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record("task_created", fmt.Sprintf("Task %q created with priority %s", event.Title, event.Priority))
	return nil
}

func (m *NotificationModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.record("task_updated", fmt.Sprintf("Task %q updated, status %s", event.Title, event.Status))
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record("task_deleted", fmt.Sprintf("Task %q deleted", event.Title))
	return nil
}

func (m *NotificationModule) handleTasksBatchChanged(_ context.Context, event events.TasksBatchChangedEvent, _ *mono.Msg) error {
	switch event.Operation {
	case "delete":
		m.record("tasks_batch_changed", fmt.Sprintf("%d tasks deleted", event.Affected))
	case "status":
		m.record("tasks_batch_changed", fmt.Sprintf("%d tasks moved to %s", event.Affected, event.Status))
	default:
		m.record("tasks_batch_changed", fmt.Sprintf("%d tasks changed", event.Affected))
	}
	return nil
}

func (m *NotificationModule) handlePhotoUploaded(_ context.Context, event events.PhotoUploadedEvent, _ *mono.Msg) error {
	m.record("photo_uploaded", fmt.Sprintf("Photo %s uploaded by %s", event.PhotoID, event.UploaderID))
	return nil
}

func (m *NotificationModule) handlePhotoProcessed(_ context.Context, event events.PhotoProcessedEvent, _ *mono.Msg) error {
	m.record("photo_processed", fmt.Sprintf("Photo %s processed, %d thumbnails", event.PhotoID, len(event.Thumbnails)))
	return nil
}

// record appends to the feed and pushes the entry to live subscribers.
func (m *NotificationModule) record(kind, message string) {
	activity := Activity{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
	}
	m.feed.add(activity)
	log.Printf("[notification] %s: %s", kind, message)

	if m.hub != nil {
		m.hub.Broadcast("activity", activity)
	}
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationPort defines the feed operations other modules use.
type NotificationPort interface {
	ListActivities(ctx context.Context, limit int) (*ListActivitiesResponse, error)
}

// notificationAdapter wraps ServiceContainer for type-safe cross-module calls.
type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a new adapter for the feed services.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notificationAdapter{container: container}
}

// ListActivities fetches the feed via the list-activities service.
func (a *notificationAdapter) ListActivities(ctx context.Context, limit int) (*ListActivitiesResponse, error) {
	req := ListActivitiesRequest{Limit: limit}
	var resp ListActivitiesResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-activities", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-activities service call failed: %w", err)
	}
	return &resp, nil
}

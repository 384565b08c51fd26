package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps the task module's ServiceContainer for type-safe
// cross-module calls. It implements TaskPort.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates an adapter over the container received via
// SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListTasks queries one page of tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	return &resp, nil
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskDTO, error) {
	var resp TaskDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	return &resp, nil
}

// UpdateTask applies a partial update via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskDTO, error) {
	var resp TaskDTO
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID string) error {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	return nil
}

// BatchDeleteTasks removes the given ids via the batch-delete-tasks service
// and returns the number of rows actually removed.
func (a *taskAdapter) BatchDeleteTasks(ctx context.Context, ids []string) (int, error) {
	req := BatchDeleteRequest{IDs: ids}
	var resp BatchResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "batch-delete-tasks", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return 0, fmt.Errorf("batch-delete-tasks service call failed: %w", err)
	}
	return resp.Affected, nil
}

// BatchUpdateStatus sets the status on the given ids via the
// batch-update-status service and returns the number of rows changed.
func (a *taskAdapter) BatchUpdateStatus(ctx context.Context, ids []string, status string) (int, error) {
	req := BatchStatusRequest{IDs: ids, Status: status}
	var resp BatchResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "batch-update-status", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return 0, fmt.Errorf("batch-update-status service call failed: %w", err)
	}
	return resp.Affected, nil
}

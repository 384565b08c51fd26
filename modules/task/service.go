package task

import (
	"context"
	"log"
	"time"

	domain "github.com/example/task-admin/domain/task"
	"github.com/example/task-admin/events"
	"github.com/go-monolith/mono"
	"github.com/google/uuid"
)

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(_ context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	criteria, err := toCriteria(&req)
	if err != nil {
		return ListTasksResponse{}, err
	}

	result, err := domain.Query(
		m.collection.Snapshot(),
		criteria,
		domain.SortSpec{Field: req.SortField, Order: req.SortOrder},
		domain.PageRequest{Page: req.Page, PageSize: req.PageSize},
	)
	if err != nil {
		return ListTasksResponse{}, err
	}

	resp := ListTasksResponse{
		Tasks: make([]TaskDTO, 0, len(result.Items)),
		Total: result.Total,
	}
	for i := range result.Items {
		resp.Tasks = append(resp.Tasks, toTaskDTO(&result.Items[i]))
	}
	return resp, nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(_ context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskDTO, error) {
	status := domain.TaskStatus(req.Status)
	if req.Status == "" {
		status = domain.StatusPending
	}

	now := time.Now()
	newTask := &domain.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    domain.TaskPriority(req.Priority),
		Assignees:   req.Assignees,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := domain.ValidateNew(newTask); err != nil {
		return TaskDTO{}, err
	}

	m.collection.Insert(newTask)

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    newTask.ID,
			Title:     newTask.Title,
			Priority:  string(newTask.Priority),
			Assignees: newTask.Assignees,
			CreatedAt: newTask.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", newTask.ID, err)
		}
	}

	return toTaskDTO(newTask), nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(_ context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskDTO, error) {
	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Assignees:   req.Assignees,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		patch.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	if err := domain.ValidatePatch(&patch); err != nil {
		return TaskDTO{}, err
	}

	updated, err := m.collection.Update(req.TaskID, patch)
	if err != nil {
		return TaskDTO{}, err
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{
			TaskID:    updated.ID,
			Title:     updated.Title,
			Status:    string(updated.Status),
			UpdatedAt: updated.UpdatedAt,
		}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskUpdated event for task %s: %v", updated.ID, err)
		}
	}

	return toTaskDTO(&updated), nil
}

// deleteTask handles the delete-task service request. Deleting an id that
// is already gone reports not-found rather than succeeding silently.
func (m *TaskModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	existing, err := m.collection.Get(req.TaskID)
	if err != nil {
		return DeleteTaskResponse{Deleted: false}, err
	}
	if err := m.collection.Delete(req.TaskID); err != nil {
		return DeleteTaskResponse{Deleted: false}, err
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    existing.ID,
			Title:     existing.Title,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", existing.ID, err)
		}
	}

	return DeleteTaskResponse{Deleted: true}, nil
}

// batchDeleteTasks handles the batch-delete-tasks service request. Missing
// ids are skipped; the response counts only rows actually removed.
func (m *TaskModule) batchDeleteTasks(_ context.Context, req BatchDeleteRequest, _ *mono.Msg) (BatchResponse, error) {
	affected := m.collection.BatchDelete(req.IDs)
	m.publishBatchChanged("delete", "", affected)
	return BatchResponse{Affected: affected}, nil
}

// batchUpdateStatus handles the batch-update-status service request.
func (m *TaskModule) batchUpdateStatus(_ context.Context, req BatchStatusRequest, _ *mono.Msg) (BatchResponse, error) {
	status := domain.TaskStatus(req.Status)
	if !status.Valid() {
		return BatchResponse{}, domain.NewValidationError("status", "unknown status: "+req.Status)
	}
	affected := m.collection.BatchUpdateStatus(req.IDs, status)
	m.publishBatchChanged("status", req.Status, affected)
	return BatchResponse{Affected: affected}, nil
}

func (m *TaskModule) publishBatchChanged(op, status string, affected int) {
	if m.eventBus == nil {
		return
	}
	event := events.TasksBatchChangedEvent{
		Operation: op,
		Status:    status,
		Affected:  affected,
		ChangedAt: time.Now(),
	}
	if err := events.TasksBatchChangedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[task] Warning: failed to publish TasksBatchChanged event: %v", err)
	}
}

// toCriteria converts wire filter fields into domain criteria, rejecting
// unknown enum values instead of silently matching nothing.
func toCriteria(req *ListTasksRequest) (domain.FilterCriteria, error) {
	criteria := domain.FilterCriteria{
		Keyword:  req.Keyword,
		Assignee: req.Assignee,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	}
	if req.DateField != "" {
		criteria.DateField = domain.DateField(req.DateField)
	}
	for _, s := range req.Status {
		status := domain.TaskStatus(s)
		if !status.Valid() {
			return domain.FilterCriteria{}, domain.NewValidationError("status", "unknown status: "+s)
		}
		criteria.Status = append(criteria.Status, status)
	}
	for _, p := range req.Priority {
		priority := domain.TaskPriority(p)
		if !priority.Valid() {
			return domain.FilterCriteria{}, domain.NewValidationError("priority", "unknown priority: "+p)
		}
		criteria.Priority = append(criteria.Priority, priority)
	}
	return criteria, nil
}

// toTaskDTO converts a domain task to its wire representation.
func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Assignees:   t.Assignees,
		DueDate:     t.DueDate,
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

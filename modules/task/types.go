package task

import (
	"context"
	"time"
)

// TaskDTO is the wire representation of a task.
type TaskDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignees   []string   `json:"assignees"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListTasksRequest is the request for the list-tasks service. Empty filter
// dimensions are ignored; page and page_size are required and 1-based.
type ListTasksRequest struct {
	Keyword   string     `json:"keyword,omitempty"`
	Status    []string   `json:"status,omitempty"`
	Priority  []string   `json:"priority,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
	DateFrom  *time.Time `json:"date_from,omitempty"`
	DateTo    *time.Time `json:"date_to,omitempty"`
	DateField string     `json:"date_field,omitempty"`
	SortField string     `json:"sort_field,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
}

// ListTasksResponse is the response for the list-tasks service.
type ListTasksResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int       `json:"total"`
}

// CreateTaskRequest is the request for the create-task service.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority"`
	Assignees   []string   `json:"assignees"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateTaskRequest is the request for the update-task service. Nil fields
// are left untouched by the update.
type UpdateTaskRequest struct {
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Assignees   []string   `json:"assignees,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// DeleteTaskRequest is the request for the delete-task service.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

// DeleteTaskResponse is the response for the delete-task service.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// BatchDeleteRequest is the request for the batch-delete-tasks service.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchStatusRequest is the request for the batch-update-status service.
type BatchStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BatchResponse reports how many rows a batch operation actually changed.
// Unmatched ids never count.
type BatchResponse struct {
	Affected int `json:"affected"`
}

// TaskPort is the contract driving adapters use to reach the task services.
type TaskPort interface {
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskDTO, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskDTO, error)
	DeleteTask(ctx context.Context, taskID string) error
	BatchDeleteTasks(ctx context.Context, ids []string) (int, error)
	BatchUpdateStatus(ctx context.Context, ids []string, status string) (int, error)
}

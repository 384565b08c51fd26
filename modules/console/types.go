package console

import (
	"time"

	"github.com/example/task-admin/modules/task"
)

// DefaultPageSize is the page size a fresh session starts with.
const DefaultPageSize = 10

// Filters holds the active filter dimensions of a session. Zero values mean
// "no filter".
type Filters struct {
	Keyword   string     `json:"keyword,omitempty"`
	Status    []string   `json:"status,omitempty"`
	Priority  []string   `json:"priority,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
	DateFrom  *time.Time `json:"date_from,omitempty"`
	DateTo    *time.Time `json:"date_to,omitempty"`
	DateField string     `json:"date_field,omitempty"`
	SortField string     `json:"sort_field,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
}

// FilterPatch carries a partial filter change. Nil pointers and nil slices
// leave the dimension untouched; pointers to zero values clear it.
type FilterPatch struct {
	Keyword   *string    `json:"keyword,omitempty"`
	Status    []string   `json:"status,omitempty"`
	Priority  []string   `json:"priority,omitempty"`
	Assignee  *string    `json:"assignee,omitempty"`
	DateFrom  *time.Time `json:"date_from,omitempty"`
	DateTo    *time.Time `json:"date_to,omitempty"`
	DateField *string    `json:"date_field,omitempty"`
	SortField *string    `json:"sort_field,omitempty"`
	SortOrder *string    `json:"sort_order,omitempty"`
}

// PagePatch carries a partial pagination change.
type PagePatch struct {
	Page     *int `json:"page,omitempty"`
	PageSize *int `json:"page_size,omitempty"`
}

// Snapshot is a copy of the UI-observable session state.
type Snapshot struct {
	Filters   Filters        `json:"filters"`
	Page      int            `json:"page"`
	PageSize  int            `json:"page_size"`
	Total     int            `json:"total"`
	Tasks     []task.TaskDTO `json:"tasks"`
	Loading   bool           `json:"loading"`
	Selected  []string       `json:"selected"`
	LastError string         `json:"last_error,omitempty"`
}

// Toast is a transient user-visible notification.
type Toast struct {
	Level   string `json:"level"` // "success" or "error"
	Message string `json:"message"`
}

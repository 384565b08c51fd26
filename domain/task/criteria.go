package task

import "time"

// Sort orders accepted by the query engine.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sortable fields accepted by the query engine.
const (
	FieldTitle     = "title"
	FieldStatus    = "status"
	FieldPriority  = "priority"
	FieldDueDate   = "due_date"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// DateField selects which timestamp a date-range filter compares against.
type DateField string

const (
	DateFieldCreatedAt DateField = "created_at"
	DateFieldDueDate   DateField = "due_date"
)

// FilterCriteria describes the active search dimensions. Zero values mean
// "no filter" for every dimension.
type FilterCriteria struct {
	Keyword   string         `json:"keyword,omitempty"`
	Status    []TaskStatus   `json:"status,omitempty"`
	Priority  []TaskPriority `json:"priority,omitempty"`
	Assignee  string         `json:"assignee,omitempty"`
	DateFrom  *time.Time     `json:"date_from,omitempty"`
	DateTo    *time.Time     `json:"date_to,omitempty"`
	DateField DateField      `json:"date_field,omitempty"`
}

// SortSpec names the sort field and direction. A zero SortSpec selects the
// default ordering (created_at descending).
type SortSpec struct {
	Field string `json:"field,omitempty"`
	Order string `json:"order,omitempty"`
}

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// QueryResult is one page of tasks plus the total count of the filtered
// (pre-pagination) set.
type QueryResult struct {
	Items []Task `json:"items"`
	Total int    `json:"total"`
}

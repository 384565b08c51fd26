package task

import (
	"sort"
	"strings"
	"time"
)

// Query filters, sorts, and paginates a snapshot of the collection. It is a
// pure function: the input slice is never mutated. The pipeline stages run
// in a fixed order so that results are identical under ties:
// keyword, status, priority, assignee, date range, stable sort, total,
// pagination.
func Query(tasks []Task, criteria FilterCriteria, spec SortSpec, page PageRequest) (QueryResult, error) {
	if page.Page <= 0 {
		return QueryResult{}, NewValidationError("page", "must be greater than zero")
	}
	if page.PageSize <= 0 {
		return QueryResult{}, NewValidationError("page_size", "must be greater than zero")
	}
	field, order, err := normalizeSort(spec)
	if err != nil {
		return QueryResult{}, err
	}

	filtered := make([]Task, 0, len(tasks))
	for i := range tasks {
		if matches(&tasks[i], criteria) {
			filtered = append(filtered, tasks[i])
		}
	}

	sortTasks(filtered, field, order)

	total := len(filtered)
	start := (page.Page - 1) * page.PageSize
	if start >= total {
		return QueryResult{Items: []Task{}, Total: total}, nil
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return QueryResult{Items: filtered[start:end], Total: total}, nil
}

// matches applies every filter dimension; empty dimensions retain the task.
func matches(t *Task, c FilterCriteria) bool {
	if c.Keyword != "" {
		kw := strings.ToLower(c.Keyword)
		if !strings.Contains(strings.ToLower(t.Title), kw) &&
			!strings.Contains(strings.ToLower(t.Description), kw) {
			return false
		}
	}
	if len(c.Status) > 0 && !containsStatus(c.Status, t.Status) {
		return false
	}
	if len(c.Priority) > 0 && !containsPriority(c.Priority, t.Priority) {
		return false
	}
	if c.Assignee != "" && !t.HasAssignee(c.Assignee) {
		return false
	}
	if c.DateFrom != nil || c.DateTo != nil {
		cmp := t.CreatedAt
		if c.DateField == DateFieldDueDate {
			if t.DueDate == nil {
				return false
			}
			cmp = *t.DueDate
		}
		if c.DateFrom != nil && cmp.Before(*c.DateFrom) {
			return false
		}
		if c.DateTo != nil && cmp.After(*c.DateTo) {
			return false
		}
	}
	return true
}

func containsStatus(set []TaskStatus, s TaskStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []TaskPriority, p TaskPriority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

// normalizeSort fills in defaults and rejects unknown fields and orders.
// An empty spec selects created_at descending; an explicit field without an
// order sorts ascending.
func normalizeSort(spec SortSpec) (string, string, error) {
	field := spec.Field
	order := spec.Order
	if field == "" {
		field = FieldCreatedAt
		if order == "" {
			order = OrderDesc
		}
	}
	if order == "" {
		order = OrderAsc
	}
	switch field {
	case FieldTitle, FieldStatus, FieldPriority, FieldDueDate, FieldCreatedAt, FieldUpdatedAt:
	default:
		return "", "", NewValidationError("sort_field", "unknown field: "+field)
	}
	if order != OrderAsc && order != OrderDesc {
		return "", "", NewValidationError("sort_order", "must be asc or desc")
	}
	return field, order, nil
}

// sortTasks stable-sorts in place. String fields compare case-insensitively,
// priority compares by numeric weight, and a missing due date sorts after
// every defined date regardless of direction.
func sortTasks(items []Task, field, order string) {
	desc := order == OrderDesc
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		switch field {
		case FieldDueDate:
			if a.DueDate == nil {
				return false
			}
			if b.DueDate == nil {
				return true
			}
			if a.DueDate.Equal(*b.DueDate) {
				return false
			}
			if desc {
				return a.DueDate.After(*b.DueDate)
			}
			return a.DueDate.Before(*b.DueDate)
		case FieldPriority:
			wa, wb := a.Priority.Weight(), b.Priority.Weight()
			if wa == wb {
				return false
			}
			if desc {
				return wa > wb
			}
			return wa < wb
		case FieldTitle:
			return lessString(a.Title, b.Title, desc)
		case FieldStatus:
			return lessString(string(a.Status), string(b.Status), desc)
		case FieldUpdatedAt:
			return lessTime(a.UpdatedAt, b.UpdatedAt, desc)
		default:
			return lessTime(a.CreatedAt, b.CreatedAt, desc)
		}
	})
}

func lessString(a, b string, desc bool) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return false
	}
	if desc {
		return la > lb
	}
	return la < lb
}

func lessTime(a, b time.Time, desc bool) bool {
	if a.Equal(b) {
		return false
	}
	if desc {
		return a.After(b)
	}
	return a.Before(b)
}

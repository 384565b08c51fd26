package task

import (
	"time"

	domain "github.com/example/task-admin/domain/task"
	"github.com/google/uuid"
)

// seedTasks fills an empty collection with sample data for demos and manual
// testing. Tasks are inserted oldest first, so the newest one ends up at the
// head of the collection.
func seedTasks(c *domain.Collection) {
	due := func(days int) *time.Time {
		d := time.Now().AddDate(0, 0, days)
		return &d
	}

	samples := []domain.Task{
		{
			Title:       "Set up project repository",
			Description: "Initialize the repo, branch protection and CI pipeline",
			Status:      domain.StatusCompleted,
			Priority:    domain.PriorityHigh,
			Assignees:   []string{"alice"},
			Tags:        []string{"infra"},
		},
		{
			Title:       "Design task list page",
			Description: "Table layout with filters, sorting and batch actions",
			Status:      domain.StatusCompleted,
			Priority:    domain.PriorityMedium,
			Assignees:   []string{"bob", "carol"},
			Tags:        []string{"ui"},
		},
		{
			Title:       "Implement search filters",
			Description: "Keyword, status, priority, assignee and date range",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityHigh,
			Assignees:   []string{"carol"},
			DueDate:     due(3),
			Tags:        []string{"ui", "search"},
		},
		{
			Title:       "Fix urgent pagination bug",
			Description: "Total count is wrong after filtering by status",
			Status:      domain.StatusInProgress,
			Priority:    domain.PriorityUrgent,
			Assignees:   []string{"alice", "dave"},
			DueDate:     due(1),
			Tags:        []string{"bug"},
		},
		{
			Title:       "Write API documentation",
			Description: "Document the task endpoints and response envelope",
			Status:      domain.StatusPending,
			Priority:    domain.PriorityLow,
			Assignees:   []string{"erin"},
			DueDate:     due(14),
			Tags:        []string{"docs"},
		},
		{
			Title:       "Add batch status update",
			Description: "Allow changing status for all selected rows at once",
			Status:      domain.StatusPending,
			Priority:    domain.PriorityMedium,
			Assignees:   []string{"bob"},
			DueDate:     due(7),
		},
		{
			Title:       "Review photo upload flow",
			Description: "Check dedupe behaviour and thumbnail generation",
			Status:      domain.StatusPending,
			Priority:    domain.PriorityHigh,
			Assignees:   []string{"dave"},
			DueDate:     due(5),
			Tags:        []string{"photos"},
		},
		{
			Title:       "Deprecate legacy export",
			Description: "The CSV export endpoint is unused since the migration",
			Status:      domain.StatusCancelled,
			Priority:    domain.PriorityLow,
			Assignees:   []string{"erin"},
		},
	}

	base := time.Now().Add(-time.Duration(len(samples)) * time.Hour)
	for i := range samples {
		t := samples[i]
		t.ID = uuid.New().String()
		t.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		t.UpdatedAt = t.CreatedAt
		c.Insert(&t)
	}
}

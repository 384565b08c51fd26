package console

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/example/task-admin/domain/task"
	"github.com/example/task-admin/modules/task"
)

const (
	defaultDebounce = 300 * time.Millisecond
	requestTimeout  = 10 * time.Second
)

// Session is the state coordinator behind one admin console view. It is the
// single source of truth for filters, pagination, the loaded page, the
// loading flag, and the multi-select set. Every filter or pagination change
// triggers exactly one reload, and only the response to the latest
// outstanding reload is ever applied.
type Session struct {
	id   string
	port task.TaskPort

	mu        sync.Mutex
	filters   Filters
	page      int
	pageSize  int
	total     int
	tasks     []task.TaskDTO
	loading   bool
	selected  map[string]bool
	lastError string
	seq       uint64
	closed    bool

	debounce      *time.Timer
	debounceDelay time.Duration

	onChange func(Snapshot)
	onToast  func(Toast)

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(id string, port task.TaskPort, debounceDelay time.Duration) *Session {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:            id,
		port:          port,
		page:          1,
		pageSize:      DefaultPageSize,
		selected:      make(map[string]bool),
		debounceDelay: debounceDelay,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// OnChange registers the callback invoked with a state snapshot after every
// applied change. The callback runs outside the session lock.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// OnToast registers the callback invoked for transient notifications.
func (s *Session) OnToast(fn func(Toast)) {
	s.mu.Lock()
	s.onToast = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetFilters merges the patch into the filter state, resets the page to 1,
// and reloads.
func (s *Session) SetFilters(patch FilterPatch) {
	s.mu.Lock()
	s.applyFilterPatchLocked(patch)
	s.page = 1
	s.reloadLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// SetKeyword schedules a debounced keyword change. Rapid calls coalesce
// into a single filter change carrying the last value.
func (s *Session) SetKeyword(keyword string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.debounceDelay, func() {
		s.SetFilters(FilterPatch{Keyword: &keyword})
	})
}

// SetPagination merges the patch into the pagination state and reloads
// without resetting the page.
func (s *Session) SetPagination(patch PagePatch) {
	s.mu.Lock()
	if patch.Page != nil {
		s.page = *patch.Page
	}
	if patch.PageSize != nil {
		s.pageSize = *patch.PageSize
	}
	s.reloadLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Reload issues a query with the current filters and pagination. The
// response is applied only if no newer reload has been issued meanwhile.
func (s *Session) Reload() {
	s.mu.Lock()
	s.reloadLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) reloadLocked() {
	if s.closed {
		return
	}
	s.seq++
	s.loading = true
	go s.load(s.seq, s.listRequestLocked())
}

func (s *Session) listRequestLocked() *task.ListTasksRequest {
	return &task.ListTasksRequest{
		Keyword:   s.filters.Keyword,
		Status:    append([]string(nil), s.filters.Status...),
		Priority:  append([]string(nil), s.filters.Priority...),
		Assignee:  s.filters.Assignee,
		DateFrom:  s.filters.DateFrom,
		DateTo:    s.filters.DateTo,
		DateField: s.filters.DateField,
		SortField: s.filters.SortField,
		SortOrder: s.filters.SortOrder,
		Page:      s.page,
		PageSize:  s.pageSize,
	}
}

// load runs one reload round-trip. Responses belonging to a superseded
// sequence number are discarded; the newer in-flight reload owns the
// loading flag.
func (s *Session) load(seq uint64, req *task.ListTasksRequest) {
	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	resp, err := s.port.ListTasks(ctx, req)

	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.loading = false
	if err != nil {
		s.lastError = err.Error()
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.toast(Toast{Level: "error", Message: fmt.Sprintf("Failed to load tasks: %v", err)})
		return
	}
	s.tasks = resp.Tasks
	s.total = resp.Total
	s.lastError = ""
	s.pruneSelectionLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// ToggleSelection flips the selection state of one id.
func (s *Session) ToggleSelection(id string) {
	s.mu.Lock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// SelectAll selects every row of the currently loaded page.
func (s *Session) SelectAll() {
	s.mu.Lock()
	for _, t := range s.tasks {
		s.selected[t.ID] = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// ClearSelection empties the selected-id set.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// CreateTask creates a task and reloads on success.
func (s *Session) CreateTask(req *task.CreateTaskRequest) error {
	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	created, err := s.port.CreateTask(ctx, req)
	if err != nil {
		s.toast(Toast{Level: "error", Message: actionError("create task", err)})
		return err
	}
	s.toast(Toast{Level: "success", Message: fmt.Sprintf("Task %q created", created.Title)})
	s.Reload()
	return nil
}

// UpdateTask applies a partial update and reloads on success.
func (s *Session) UpdateTask(req *task.UpdateTaskRequest) error {
	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	updated, err := s.port.UpdateTask(ctx, req)
	if err != nil {
		s.toast(Toast{Level: "error", Message: actionError("update task", err)})
		return err
	}
	s.toast(Toast{Level: "success", Message: fmt.Sprintf("Task %q updated", updated.Title)})
	s.Reload()
	return nil
}

// DeleteTask deletes one task and reloads on success.
func (s *Session) DeleteTask(id string) error {
	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	if err := s.port.DeleteTask(ctx, id); err != nil {
		s.toast(Toast{Level: "error", Message: actionError("delete task", err)})
		return err
	}
	s.toast(Toast{Level: "success", Message: "Task deleted"})
	s.Reload()
	return nil
}

// BatchDeleteSelected deletes every selected task. The reported count
// reflects only rows that actually existed; the selection is cleared and
// the page reloaded afterwards.
func (s *Session) BatchDeleteSelected() (int, error) {
	ids := s.selectedIDs()
	if len(ids) == 0 {
		s.toast(Toast{Level: "error", Message: "No tasks selected"})
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	affected, err := s.port.BatchDeleteTasks(ctx, ids)
	if err != nil {
		s.toast(Toast{Level: "error", Message: actionError("delete tasks", err)})
		return 0, err
	}

	s.ClearSelection()
	s.toast(Toast{Level: "success", Message: fmt.Sprintf("Deleted %d tasks", affected)})
	s.Reload()
	return affected, nil
}

// BatchUpdateStatusSelected sets the status on every selected task, clears
// the selection, and reloads.
func (s *Session) BatchUpdateStatusSelected(status string) (int, error) {
	ids := s.selectedIDs()
	if len(ids) == 0 {
		s.toast(Toast{Level: "error", Message: "No tasks selected"})
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	affected, err := s.port.BatchUpdateStatus(ctx, ids, status)
	if err != nil {
		s.toast(Toast{Level: "error", Message: actionError("update tasks", err)})
		return 0, err
	}

	s.ClearSelection()
	s.toast(Toast{Level: "success", Message: fmt.Sprintf("Updated %d tasks", affected)})
	s.Reload()
	return affected, nil
}

// Close stops the debounce timer, cancels outstanding reloads, and marks
// the session unusable.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.mu.Unlock()
	s.cancel()
}

func (s *Session) applyFilterPatchLocked(patch FilterPatch) {
	if patch.Keyword != nil {
		s.filters.Keyword = *patch.Keyword
	}
	if patch.Status != nil {
		s.filters.Status = patch.Status
	}
	if patch.Priority != nil {
		s.filters.Priority = patch.Priority
	}
	if patch.Assignee != nil {
		s.filters.Assignee = *patch.Assignee
	}
	if patch.DateFrom != nil {
		s.filters.DateFrom = patch.DateFrom
	}
	if patch.DateTo != nil {
		s.filters.DateTo = patch.DateTo
	}
	if patch.DateField != nil {
		s.filters.DateField = *patch.DateField
	}
	if patch.SortField != nil {
		s.filters.SortField = *patch.SortField
	}
	if patch.SortOrder != nil {
		s.filters.SortOrder = *patch.SortOrder
	}
}

// pruneSelectionLocked drops selected ids that are no longer part of the
// loaded page, so batch operations never carry stale targets.
func (s *Session) pruneSelectionLocked() {
	if len(s.selected) == 0 {
		return
	}
	visible := make(map[string]bool, len(s.tasks))
	for _, t := range s.tasks {
		visible[t.ID] = true
	}
	for id := range s.selected {
		if !visible[id] {
			delete(s.selected, id)
		}
	}
}

func (s *Session) selectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Session) snapshotLocked() Snapshot {
	tasks := make([]task.TaskDTO, len(s.tasks))
	copy(tasks, s.tasks)
	selected := make([]string, 0, len(s.selected))
	for id := range s.selected {
		selected = append(selected, id)
	}
	sort.Strings(selected)
	return Snapshot{
		Filters:   s.filters,
		Page:      s.page,
		PageSize:  s.pageSize,
		Total:     s.total,
		Tasks:     tasks,
		Loading:   s.loading,
		Selected:  selected,
		LastError: s.lastError,
	}
}

func (s *Session) notify(snap Snapshot) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func (s *Session) toast(t Toast) {
	s.mu.Lock()
	fn := s.onToast
	s.mu.Unlock()
	if fn != nil {
		fn(t)
	}
}

// actionError shapes a failure message for the toast by error kind.
func actionError(action string, err error) string {
	switch {
	case domain.IsValidation(err):
		return fmt.Sprintf("Cannot %s: %v", action, err)
	case domain.IsNotFound(err):
		return fmt.Sprintf("Cannot %s: task no longer exists", action)
	default:
		return fmt.Sprintf("Failed to %s: %v", action, err)
	}
}

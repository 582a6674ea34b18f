// Package store owns the client's shared mutable state: the currently
// loaded page of tasks plus its filter and pagination cursor. It is the
// single source of truth that every view projection derives from.
package store

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/task"
)

// DefaultPageSize is the page size for the paginated list view.
const DefaultPageSize = 10

// Collection caches the currently loaded page of tasks. Mutations from
// flows route through its methods so every projection observes a
// consistent snapshot. All methods are safe for concurrent use; bubbletea
// commands run in their own goroutines.
type Collection struct {
	mu  sync.Mutex
	svc service.Service
	log *log.Logger

	page     task.Page
	filter   task.Filter
	cursor   int
	pageSize int
	search   string
	loading  bool
	selected *task.Task

	// seq is a monotonic request-sequence token. A Load result is
	// applied only when its token still equals the latest issued one;
	// late results from superseded loads are silently discarded.
	seq uint64
}

// Snapshot is a consistent copy of the collection state handed to
// projections. Projections never mutate the shared page in place; they
// receive this copy instead.
type Snapshot struct {
	Page     task.Page
	Filter   task.Filter
	Cursor   int
	Search   string
	Loading  bool
	Selected *task.Task
}

// NewCollection creates an empty collection backed by svc.
func NewCollection(svc service.Service, logger *log.Logger) *Collection {
	if logger == nil {
		logger = log.Default()
	}
	return &Collection{
		svc:      svc,
		log:      logger,
		cursor:   1,
		pageSize: DefaultPageSize,
	}
}

// SetPageSize changes the page size used by subsequent loads. The
// calendar and kanban views request an enlarged size to approximate
// "all tasks".
func (c *Collection) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > 0 {
		c.pageSize = n
	}
}

// SetFilter updates the active filter and resets the page cursor to 1 so
// a narrowed result set cannot leave the cursor on an empty out-of-range
// page. It does not trigger a load; the caller re-loads.
func (c *Collection) SetFilter(f task.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.cursor = 1
}

// SetSearch updates the free-text search query and resets the cursor to
// 1. The query is client-side display state only; it is not forwarded to
// the remote service.
func (c *Collection) SetSearch(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = q
	c.cursor = 1
}

// SetPage moves the page cursor. No bounds validation happens here: an
// out-of-range page is passed through to the remote service and its
// response, possibly empty, is accepted as-is. The caller re-loads.
func (c *Collection) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = n
}

// Load fetches the page addressed by the current cursor and filter and,
// on success, replaces the held page atomically. Overlapping loads settle
// latest-call-wins: each Load takes a fresh sequence token and a result
// is dropped unless its token is still the newest. On failure the
// previous page stays visible and the error is returned.
func (c *Collection) Load(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	token := c.seq
	page, size, filter := c.cursor, c.pageSize, c.filter
	c.loading = true
	c.mu.Unlock()

	result, err := c.svc.ListTasks(ctx, page, size, filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.seq {
		c.log.Debug("discarding stale load result", "token", token, "latest", c.seq)
		return nil
	}
	c.loading = false

	if err != nil {
		return err
	}
	c.page = result
	return nil
}

// Insert prepends a newly created task. The optimistic local ordering is
// provisional and may differ from the server's; the mandatory post-create
// reload reconciles it. TotalCount is not recomputed here and stays stale
// until that reload.
func (c *Collection) Insert(t task.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page.Items = append([]task.Task{t}, c.page.Items...)
}

// Patch replaces the cached entry with a matching ID in place. It is a
// no-op when the task is not on the current page.
func (c *Collection) Patch(t task.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.page.Items {
		if c.page.Items[i].ID == t.ID {
			c.page.Items[i] = t
			return
		}
	}
}

// Remove deletes the cached entry with the given ID. No-op if absent.
// TotalCount is left stale until the next load.
func (c *Collection) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.page.Items {
		if c.page.Items[i].ID == id {
			c.page.Items = append(c.page.Items[:i], c.page.Items[i+1:]...)
			return
		}
	}
}

// Select marks a task as the edit target. The slot holds a single task;
// selecting another replaces the previous selection.
func (c *Collection) Select(t task.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := t
	c.selected = &copied
}

// ClearSelection empties the edit slot.
func (c *Collection) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Selected returns a copy of the task in the edit slot, or nil.
func (c *Collection) Selected() *task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	copied := *c.selected
	return &copied
}

// Snapshot returns a consistent copy of the current state for the view
// projections.
func (c *Collection) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]task.Task, len(c.page.Items))
	copy(items, c.page.Items)
	page := c.page
	page.Items = items

	var selected *task.Task
	if c.selected != nil {
		copied := *c.selected
		selected = &copied
	}

	return Snapshot{
		Page:     page,
		Filter:   c.filter,
		Cursor:   c.cursor,
		Search:   c.search,
		Loading:  c.loading,
		Selected: selected,
	}
}

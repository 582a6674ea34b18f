package views

import "github.com/taskdeck/taskdeck/internal/task"

// BoardState is the kanban view's local UI state: per-column collapse and
// the drag payload. It resets on remount; only the shared collection
// state persists across view switches.
type BoardState struct {
	Collapsed map[task.Status]bool
	Dragged   *task.Task
}

// NewBoardState returns a board with all three columns expanded and
// nothing grabbed.
func NewBoardState() BoardState {
	return BoardState{Collapsed: make(map[task.Status]bool)}
}

// ToggleColumn flips one column between expanded and collapsed.
func (s *BoardState) ToggleColumn(status task.Status) {
	s.Collapsed[status] = !s.Collapsed[status]
}

// Grab starts dragging a task.
func (s *BoardState) Grab(t task.Task) {
	copied := t
	s.Dragged = &copied
}

// Release clears the drag payload.
func (s *BoardState) Release() {
	s.Dragged = nil
}

// Drop resolves a drag release over the target column. When the drop
// should issue a status change it returns the full update payload with
// only the status swapped and ok=true. Dropping on the task's own column
// is a no-op (ok=false). The payload either way, the drag ends.
func (s *BoardState) Drop(target task.Status) (id int, req task.UpdateRequest, ok bool) {
	dragged := s.Dragged
	s.Dragged = nil
	if dragged == nil || dragged.Status == target {
		return 0, task.UpdateRequest{}, false
	}
	req = task.UpdateFrom(*dragged)
	req.Status = target
	return dragged.ID, req, true
}

// Column is one of the three ordered kanban lanes.
type Column struct {
	Status   task.Status
	Title    string
	Tasks    []task.Task
	Expanded bool
}

// BoardView groups the loaded set into exactly three ordered columns:
// Pending, InProgress, Completed.
type BoardView struct {
	Columns []Column
	Dragged *task.Task
}

var columnTitles = map[task.Status]string{
	task.StatusPending:    "Pending",
	task.StatusInProgress: "In Progress",
	task.StatusCompleted:  "Completed",
}

// ProjectBoard derives the kanban columns from the loaded set.
func ProjectBoard(items []task.Task, state BoardState) BoardView {
	columns := make([]Column, 0, 3)
	for _, status := range task.Statuses() {
		col := Column{
			Status:   status,
			Title:    columnTitles[status],
			Expanded: !state.Collapsed[status],
		}
		for _, t := range items {
			if t.Status == status {
				col.Tasks = append(col.Tasks, t)
			}
		}
		columns = append(columns, col)
	}
	return BoardView{Columns: columns, Dragged: state.Dragged}
}

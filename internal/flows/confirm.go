package flows

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/task"
)

// DeleteConfirm is the two-step delete dialog: RequestDelete opens it,
// and only Confirm fires the remote call. On failure the dialog stays
// open and the error is logged; no user-facing message is mandated.
type DeleteConfirm struct {
	Task task.Task
	Op   Operation
}

// RequestDelete opens the confirmation dialog for a task. No network
// traffic happens until Confirm.
func RequestDelete(t task.Task) *DeleteConfirm {
	return &DeleteConfirm{Task: t}
}

// Confirm fires the delete. The caller closes the dialog only when this
// returns nil.
func (r *Runner) Confirm(ctx context.Context, d *DeleteConfirm) error {
	return r.ConfirmDelete(ctx, &d.Op, d.Task.ID)
}

// Package flows implements the user-initiated mutation flows: create,
// edit, delete and quick status change. Each flow validates locally where
// required, calls the remote service, applies the optimistic patch to the
// collection, then triggers a full reload as the reconciliation pass.
package flows

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// State is the lifecycle of one operation instance.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrBusy is returned when an operation instance is re-triggered while a
// submission is already in flight. The UI disables the triggering control
// for the duration, so hitting this means the guard was bypassed.
var ErrBusy = errors.New("submission already in flight")

// FallbackMessage is shown when the server fails without providing a
// message of its own.
const FallbackMessage = "something went wrong, please try again"

// Operation tracks the Idle → Submitting → (Succeeded | Failed) machine
// for a single control. Two different tasks may be mutated concurrently
// by giving each its own Operation; there is no global lock.
type Operation struct {
	mu    sync.Mutex
	state State
	err   error
}

// State returns the current lifecycle state.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Err returns the failure of the last submission, nil otherwise.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// UserMessage returns the text to surface for a failed submission: the
// server-provided message verbatim when present, else a generic fallback.
func (o *Operation) UserMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err == nil {
		return ""
	}
	var fetchErr *service.FetchError
	if errors.As(o.err, &fetchErr) && fetchErr.Message != "" {
		return fetchErr.Message
	}
	return FallbackMessage
}

func (o *Operation) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Submitting {
		return false
	}
	o.state = Submitting
	o.err = nil
	return true
}

func (o *Operation) finish(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
	if err != nil {
		o.state = Failed
		return
	}
	o.state = Succeeded
}

// Runner executes mutation flows against the remote service and routes
// every local effect through the collection store.
type Runner struct {
	svc  service.Service
	col  *store.Collection
	sess *session.Store
	log  *log.Logger
}

// NewRunner wires a flow runner.
func NewRunner(svc service.Service, col *store.Collection, sess *session.Store, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{svc: svc, col: col, sess: sess, log: logger}
}

// Create submits a new task. Local validation failures return before any
// network call and leave the operation Idle; the form layer resolves
// them. On success the task is prepended optimistically and a full reload
// reconciles ordering and counts.
func (r *Runner) Create(ctx context.Context, op *Operation, req task.CreateRequest) error {
	if vErr := req.Validate(); vErr != nil {
		return vErr
	}
	if !op.begin() {
		return ErrBusy
	}

	created, err := r.svc.CreateTask(ctx, req)
	if err != nil {
		r.fail(op, "create", err)
		return err
	}

	r.col.Insert(created)
	op.finish(nil)
	r.reconcile(ctx, "create")
	return nil
}

// Edit replaces a task with the submitted payload. Same validation and
// failure contract as Create. The edit selection is cleared on success.
func (r *Runner) Edit(ctx context.Context, op *Operation, id int, req task.UpdateRequest) error {
	if vErr := req.Validate(); vErr != nil {
		return vErr
	}
	if !op.begin() {
		return ErrBusy
	}

	updated, err := r.svc.UpdateTask(ctx, id, req)
	if err != nil {
		r.fail(op, "edit", err)
		return err
	}

	r.col.Patch(updated)
	r.col.ClearSelection()
	op.finish(nil)
	r.reconcile(ctx, "edit")
	return nil
}

// ConfirmDelete fires the remote delete after the two-step confirmation
// has completed. On failure the error is logged and returned; the
// confirmation dialog stays open so the action can be retried.
func (r *Runner) ConfirmDelete(ctx context.Context, op *Operation, id int) error {
	if !op.begin() {
		return ErrBusy
	}

	if err := r.svc.DeleteTask(ctx, id); err != nil {
		r.fail(op, "delete", err)
		return err
	}

	r.col.Remove(id)
	op.finish(nil)
	r.reconcile(ctx, "delete")
	return nil
}

// ChangeStatus sends the complete task payload with only the status
// swapped; the remote contract requires a full-object update. Changing to
// the task's current status is a local no-op and issues no call.
func (r *Runner) ChangeStatus(ctx context.Context, op *Operation, t task.Task, target task.Status) error {
	if t.Status == target {
		return nil
	}

	if !op.begin() {
		return ErrBusy
	}

	req := task.UpdateFrom(t)
	req.Status = target

	updated, err := r.svc.UpdateTask(ctx, t.ID, req)
	if err != nil {
		r.fail(op, "status change", err)
		return err
	}

	r.col.Patch(updated)
	op.finish(nil)
	r.reconcile(ctx, "status change")
	return nil
}

// fail records a submission failure. A 401 is fatal to the session: the
// session is torn down and the store is left untouched, so no optimistic
// patch ever lands for an unauthorized mutation.
func (r *Runner) fail(op *Operation, flow string, err error) {
	op.finish(err)

	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		r.log.Warn("unauthorized, clearing session", "flow", flow)
		if r.sess != nil {
			r.sess.Clear()
		}
		return
	}
	r.log.Error("flow failed", "flow", flow, "err", err)
}

// reconcile is phase two of the optimistic protocol: a full reload that
// replaces the provisional local ordering and counts with the server's
// truth. The mutation itself already succeeded, so a reload failure is
// logged and the optimistic state stays visible until the next load.
func (r *Runner) reconcile(ctx context.Context, flow string) {
	if err := r.col.Load(ctx); err != nil {
		r.log.Warn("post-mutation reload failed", "flow", flow, "err", err)
	}
}

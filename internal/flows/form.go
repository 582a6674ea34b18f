package flows

import (
	"fmt"

	"github.com/taskdeck/taskdeck/internal/task"
)

// TaskForm holds the raw field values of the create/edit form. The form
// keeps whatever the user typed across failed submissions; nothing is
// cleared until the flow succeeds.
type TaskForm struct {
	Title       string
	Description string
	DueDate     string // raw "YYYY-MM-DD" text, may be empty
	Status      task.Status

	// EditID is the target task for an edit, 0 for a create.
	EditID int

	// FieldErr is the current field-level validation error, resolved
	// purely in the form layer.
	FieldErr *task.ValidationError
}

// NewCreateForm returns an empty create form.
func NewCreateForm() *TaskForm {
	return &TaskForm{}
}

// NewCreateFormForDate returns a create form with the due date prefilled,
// used when creating from a calendar day cell.
func NewCreateFormForDate(d task.Date) *TaskForm {
	return &TaskForm{DueDate: d.String()}
}

// NewEditForm pre-fills from the currently selected task.
func NewEditForm(t task.Task) *TaskForm {
	f := &TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		EditID:      t.ID,
	}
	if t.DueDate != nil && !t.DueDate.IsZero() {
		f.DueDate = t.DueDate.String()
	}
	return f
}

// IsEdit reports whether the form targets an existing task.
func (f *TaskForm) IsEdit() bool {
	return f.EditID != 0
}

// dueDate parses the due date field. Empty means no due date.
func (f *TaskForm) dueDate() (*task.Date, *task.ValidationError) {
	if f.DueDate == "" {
		return nil, nil
	}
	d, err := task.ParseDate(f.DueDate)
	if err != nil {
		return nil, &task.ValidationError{Field: "dueDate", Err: fmt.Errorf("must be YYYY-MM-DD")}
	}
	return &d, nil
}

// CreateRequest validates the form and builds the create payload. On
// failure FieldErr is set and the form values stay intact.
func (f *TaskForm) CreateRequest() (task.CreateRequest, bool) {
	req := task.CreateRequest{Title: f.Title, Description: f.Description}

	due, vErr := f.dueDate()
	if vErr == nil {
		req.DueDate = due
		vErr = req.Validate()
	}
	f.FieldErr = vErr
	return req, vErr == nil
}

// UpdateRequest validates the form and builds the full-replace payload.
func (f *TaskForm) UpdateRequest() (task.UpdateRequest, bool) {
	req := task.UpdateRequest{Title: f.Title, Description: f.Description, Status: f.Status}

	due, vErr := f.dueDate()
	if vErr == nil {
		req.DueDate = due
		vErr = req.Validate()
	}
	f.FieldErr = vErr
	return req, vErr == nil
}

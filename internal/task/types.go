// Package task defines the task data model shared by the client.
package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status represents a task status. The remote service transmits it as a
// small integer; the three values form a closed set and any status is
// reachable from any other.
type Status int

const (
	StatusPending    Status = 0
	StatusInProgress Status = 1
	StatusCompleted  Status = 2
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in-progress"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Statuses lists the three statuses in their canonical column order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// ParseStatus converts a status name to its value.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "pending":
		return StatusPending, nil
	case "in-progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return 0, fmt.Errorf("unknown status %q, must be one of: pending, in-progress, completed", name)
}

// UnmarshalJSON rejects integers outside the closed set so a malformed
// response cannot smuggle an unknown status into the cache.
func (s *Status) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("parse status: %w", err)
	}
	v := Status(n)
	if !v.Valid() {
		return fmt.Errorf("invalid status %d, must be 0, 1 or 2", n)
	}
	*s = v
	return nil
}

// Task represents a single to-do item owned by the authenticated user.
// ID and the timestamps are assigned server-side.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserName    string    `json:"userName,omitempty"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// Page is a window over the server's task collection. It is recomputed on
// every load and never persisted.
type Page struct {
	Items       []Task `json:"items"`
	TotalCount  int    `json:"totalCount"`
	PageSize    int    `json:"pageSize"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
}

// Filter narrows a load to a single status. The zero value matches all
// statuses; exactly one filter is active at a time.
type Filter struct {
	Status Status
	active bool
}

// FilterAll matches every status.
var FilterAll = Filter{}

// FilterBy matches only tasks with the given status.
func FilterBy(s Status) Filter {
	return Filter{Status: s, active: true}
}

// All reports whether the filter matches every status.
func (f Filter) All() bool {
	return !f.active
}

// String returns the filter name for display and logging.
func (f Filter) String() string {
	if f.All() {
		return "all"
	}
	return f.Status.String()
}

// CreateRequest is the payload for creating a task. The server assigns
// ID, timestamps and the initial Pending status.
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     *Date  `json:"dueDate,omitempty"`
}

// UpdateRequest is the payload for updating a task. The remote contract
// is a full-object replace; there is no partial-update endpoint.
type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     *Date  `json:"dueDate,omitempty"`
	Status      Status `json:"status"`
}

// UpdateFrom builds a full UpdateRequest mirroring the task's current
// fields. Quick status changes swap only Status on the result.
func UpdateFrom(t Task) UpdateRequest {
	return UpdateRequest{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
	}
}

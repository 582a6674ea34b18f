// Package service defines the backend-agnostic interface for remote task
// operations. The store, flows and commands depend on this interface and
// never on the HTTP client directly.
package service

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/task"
)

// Credentials carries a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries an account-creation request.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Identity is the authenticated user plus the bearer token the transport
// should present on subsequent calls.
type Identity struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Service is the remote task backend contract.
type Service interface {
	// Login exchanges credentials for a bearer token and user identity.
	Login(ctx context.Context, creds Credentials) (Identity, error)

	// Register creates a new account. It does not log the user in.
	Register(ctx context.Context, reg Registration) error

	// ListTasks returns one page of tasks. page is 1-based; an
	// out-of-range page is passed through and the server's response
	// (possibly an empty page) is returned as-is.
	ListTasks(ctx context.Context, page, pageSize int, filter task.Filter) (task.Page, error)

	// CreateTask creates a task; the server assigns ID and timestamps.
	CreateTask(ctx context.Context, req task.CreateRequest) (task.Task, error)

	// UpdateTask replaces the full task object; there is no partial
	// update in the remote contract.
	UpdateTask(ctx context.Context, id int, req task.UpdateRequest) (task.Task, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id int) error
}

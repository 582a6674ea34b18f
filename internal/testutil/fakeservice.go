// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/task"
)

// FakeService is an in-memory implementation of service.Service for
// testing. Tasks are kept in insertion order; pagination and status
// filtering mirror the remote contract, including the echo of an
// out-of-range page as an empty item list.
type FakeService struct {
	mu     sync.Mutex
	tasks  []task.Task
	nextID int

	// Error injection for testing.
	LoginErr  error
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// ListHook, when set, runs inside ListTasks before the page is
	// assembled. Tests use it to block a call and force overlapping
	// loads to settle out of order.
	ListHook func(page int)

	// Calls counts remote calls per method name.
	Calls map[string]int
}

// NewFakeService creates an empty fake backend.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1, Calls: make(map[string]int)}
}

// Seed adds tasks directly, assigning sequential IDs to any task with a
// zero ID.
func (f *FakeService) Seed(tasks ...task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tasks {
		if t.ID == 0 {
			t.ID = f.nextID
		}
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
		f.tasks = append(f.tasks, t)
	}
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeService) count(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[method]++
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.Identity, error) {
	f.count("Login")
	if f.LoginErr != nil {
		return service.Identity{}, f.LoginErr
	}
	return service.Identity{Token: "fake-token", UserID: "u1", Email: creds.Email, Name: "Test User"}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) error {
	f.count("Register")
	return nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, page, pageSize int, filter task.Filter) (task.Page, error) {
	f.count("ListTasks")
	if f.ListErr != nil {
		return task.Page{}, f.ListErr
	}
	if f.ListHook != nil {
		f.ListHook(page)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []task.Task
	for _, t := range f.tasks {
		if filter.All() || t.Status == filter.Status {
			matches = append(matches, t)
		}
	}

	total := len(matches)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	var items []task.Task
	if start >= 0 && start < total {
		end := start + pageSize
		if end > total {
			end = total
		}
		items = append(items, matches[start:end]...)
	}

	return task.Page{
		Items:       items,
		TotalCount:  total,
		PageSize:    pageSize,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req task.CreateRequest) (task.Task, error) {
	f.count("CreateTask")
	if f.CreateErr != nil {
		return task.Task{}, f.CreateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t := task.Task{
		ID:          f.nextID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      task.StatusPending,
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int, req task.UpdateRequest) (task.Task, error) {
	f.count("UpdateTask")
	if f.UpdateErr != nil {
		return task.Task{}, f.UpdateErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = req.Title
			f.tasks[i].Description = req.Description
			f.tasks[i].DueDate = req.DueDate
			f.tasks[i].Status = req.Status
			return f.tasks[i], nil
		}
	}
	return task.Task{}, &service.FetchError{Op: "update task", StatusCode: 404, Message: fmt.Sprintf("task %d not found", id)}
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) error {
	f.count("DeleteTask")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.FetchError{Op: "delete task", StatusCode: 404, Message: fmt.Sprintf("task %d not found", id)}
}

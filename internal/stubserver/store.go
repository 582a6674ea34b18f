package stubserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskdeck/taskdeck/internal/service"
	"github.com/taskdeck/taskdeck/internal/task"
)

// Development account available on every fresh store.
const (
	DefaultEmail    = "demo@taskdeck.local"
	DefaultPassword = "demo"
	DefaultName     = "Demo User"
)

// Account is a registered stub user.
type Account struct {
	ID    string
	Email string
	Name  string

	password string
}

// Store holds all stub state in memory. Tasks are kept newest-first so
// pagination matches the service contract: page 1 starts at the most
// recently created task.
type Store struct {
	mu       sync.Mutex
	accounts map[string]Account // by email
	sessions map[string]string  // token -> email
	tasks    []task.Task
	nextID   int
}

// NewStore returns a store preloaded with the default dev account.
func NewStore() *Store {
	s := &Store{
		accounts: make(map[string]Account),
		sessions: make(map[string]string),
		nextID:   1,
	}
	_ = s.AddAccount(DefaultEmail, DefaultPassword, DefaultName)
	return s
}

// AddAccount registers a user. Emails are unique.
func (s *Store) AddAccount(email, password, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[email]; exists {
		return fmt.Errorf("email already registered")
	}
	s.accounts[email] = Account{
		ID:       ulid.Make().String(),
		Email:    email,
		Name:     name,
		password: password,
	}
	return nil
}

// Login checks credentials and mints a fresh bearer token.
func (s *Store) Login(email, password string) (service.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[email]
	if !ok || acct.password != password {
		return service.Identity{}, false
	}

	token := ulid.Make().String()
	s.sessions[token] = email
	return service.Identity{
		Token:  token,
		UserID: acct.ID,
		Email:  acct.Email,
		Name:   acct.Name,
	}, true
}

// Resolve maps a bearer token back to its account.
func (s *Store) Resolve(token string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.sessions[token]
	if !ok {
		return Account{}, false
	}
	acct, ok := s.accounts[email]
	return acct, ok
}

// Revoke drops a session token. Unknown tokens are a no-op.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// List returns one page of tasks matching the filter. Pages past the
// end come back with empty items and the requested page number echoed.
func (s *Store) List(page, pageSize int, filter task.Filter) task.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []task.Task
	for _, t := range s.tasks {
		if filter.All() || t.Status == filter.Status {
			matched = append(matched, t)
		}
	}

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	items := []task.Task{}
	if start >= 0 && start < total {
		end := start + pageSize
		if end > total {
			end = total
		}
		items = append(items, matched[start:end]...)
	}

	return task.Page{
		Items:       items,
		TotalCount:  total,
		PageSize:    pageSize,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
}

// Create inserts a new pending task at the front of the list.
func (s *Store) Create(req task.CreateRequest, userName string) task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(req, userName)
}

func (s *Store) insert(req task.CreateRequest, userName string) task.Task {
	now := nowUTC()
	t := task.Task{
		ID:          s.nextID,
		Title:       req.Title,
		Description: req.Description,
		Status:      task.StatusPending,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserName:    userName,
	}
	s.nextID++
	s.tasks = append([]task.Task{t}, s.tasks...)
	return t
}

// SeedTask inserts a task with an explicit status, used when loading
// seed files.
func (s *Store) SeedTask(req task.CreateRequest, status task.Status, userName string) task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.insert(req, userName)
	t.Status = status
	s.tasks[0] = t
	return t
}

// Update replaces all mutable fields of a task.
func (s *Store) Update(id int, req task.UpdateRequest) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		s.tasks[i].Title = req.Title
		s.tasks[i].Description = req.Description
		s.tasks[i].DueDate = req.DueDate
		s.tasks[i].Status = req.Status
		s.tasks[i].UpdatedAt = nowUTC()
		return s.tasks[i], true
	}
	return task.Task{}, false
}

// Delete removes a task by ID.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Package session holds the authenticated user identity. The in-memory
// store is the source of truth for the running process; the CLI
// additionally persists the identity to a file so separate invocations
// stay logged in.
package session

import (
	"sync"

	"github.com/taskdeck/taskdeck/internal/service"
)

// User is the authenticated user's identity.
type User struct {
	UserID string
	Email  string
	Name   string
}

// Store owns the current session. Absence of a session means every task
// operation is unauthorized. Safe for concurrent use; bubbletea commands
// run in their own goroutines.
type Store struct {
	mu    sync.RWMutex
	user  *User
	token string
}

// NewStore returns an empty, logged-out session store.
func NewStore() *Store {
	return &Store{}
}

// Set installs the identity returned by a successful login.
func (s *Store) Set(id service.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &User{UserID: id.UserID, Email: id.Email, Name: id.Name}
	s.token = id.Token
}

// Clear tears the session down. Used for logout and for any 401 response.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

// User returns the current user, or nil when logged out.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token, or "" when logged out. The API client
// uses this as its token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a session is held.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

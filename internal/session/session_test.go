package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/taskdeck/taskdeck/internal/service"
)

func identity() service.Identity {
	return service.Identity{
		Token:  "tok-123",
		UserID: "u-1",
		Email:  "user@example.com",
		Name:   "User",
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()

	if s.Authenticated() {
		t.Fatal("fresh store should be logged out")
	}
	if s.Token() != "" {
		t.Fatal("fresh store should have no token")
	}

	s.Set(identity())

	if !s.Authenticated() {
		t.Fatal("expected authenticated after Set")
	}
	if s.Token() != "tok-123" {
		t.Errorf("Token() = %q", s.Token())
	}
	u := s.User()
	if u == nil || u.Email != "user@example.com" || u.Name != "User" {
		t.Errorf("User() = %+v", u)
	}

	s.Clear()

	if s.Authenticated() || s.Token() != "" || s.User() != nil {
		t.Error("expected empty store after Clear")
	}
}

func TestUserReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Set(identity())

	u := s.User()
	u.Name = "mutated"

	if s.User().Name != "User" {
		t.Error("mutating the returned user leaked into the store")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	if err := SaveFile(path, identity()); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 0600", perm)
	}

	id, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if id != identity() {
		t.Errorf("round trip mismatch: %+v", id)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadFileRejectsEmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"token":""}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for token-less session file")
	}
}

func TestRemoveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := SaveFile(path, identity()); err != nil {
		t.Fatal(err)
	}

	if err := RemoveFile(path); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("file should be gone")
	}

	// Removing again is a no-op.
	if err := RemoveFile(path); err != nil {
		t.Errorf("second RemoveFile failed: %v", err)
	}
}

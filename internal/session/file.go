package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskdeck/taskdeck/internal/service"
)

// DefaultPath returns the per-user session file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", "taskdeck", "session.json"), nil
}

// SaveFile persists the identity so later invocations stay logged in.
// The file carries the bearer token and is created user-readable only.
func SaveFile(path string, id service.Identity) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// LoadFile reads a persisted identity. A missing file is reported via
// os.ErrNotExist so callers can treat it as "not logged in".
func LoadFile(path string) (service.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return service.Identity{}, err
	}
	var id service.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return service.Identity{}, fmt.Errorf("decode session file: %w", err)
	}
	if id.Token == "" {
		return service.Identity{}, fmt.Errorf("session file has no token")
	}
	return id, nil
}

// RemoveFile deletes the persisted session. Missing files are fine; the
// point is to end up logged out.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Package session persists the login response on disk, the terminal
// client's analogue of the browser's local storage.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/streamvault/streamvault/internal/service"
)

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a store at an explicit path. An empty path picks the
// default location under the user config directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "streamvault", "session.json")
	}
	return &Store{path: path}, nil
}

// Save persists the full login response.
func (s *Store) Save(session *service.LoginResult) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil when none exists. A corrupt or
// empty file counts as no session, so the guard falls back to login.
func (s *Store) Load() (*service.LoginResult, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session service.LoginResult
	if err := json.Unmarshal(data, &session); err != nil || session.User.UserID == "" {
		return nil, nil
	}
	return &session, nil
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

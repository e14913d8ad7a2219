package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"residentbook-backend-go/internal/models"
)

const sessionFileName = "session.json"

// SessionStore persists the signed-in session between runs.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath is <user config dir>/residentbook/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "residentbook", sessionFileName), nil
}

func (s *SessionStore) Path() string { return s.path }

// Save writes the session readable by the current user only.
func (s *SessionStore) Save(session *models.Session) error {
	if session == nil {
		return errors.New("nil session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Restore loads the saved session. Any read or parse problem, or a session
// missing its identity fields, yields nil (logged out).
func (s *SessionStore) Restore() *models.Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil
	}
	if session.UserID == "" || session.IDToken == "" || session.Role == "" {
		return nil
	}
	return &session
}

// Clear removes the saved session. A missing file is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

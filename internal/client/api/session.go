package api

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/filex"
)

// SessionStore keeps the session token between CLI runs.
type SessionStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type sessionFile struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileSession stores the token as JSON in a user-only file.
type FileSession struct {
	path string
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

// DefaultSessionPath is ~/.shelfsync/session.json.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".shelfsync", "session.json")
	}
	return filepath.Join(home, ".shelfsync", "session.json")
}

// Load returns "" when no session was saved.
func (f *FileSession) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var s sessionFile
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s.Token, nil
}

func (f *FileSession) Save(token string) error {
	if _, err := filex.EnsureDir(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sessionFile{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileSession) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemorySession is a SessionStore that lives only as long as the process.
type MemorySession struct {
	token string
}

func (m *MemorySession) Load() (string, error) { return m.token, nil }
func (m *MemorySession) Save(token string) error {
	m.token = token
	return nil
}
func (m *MemorySession) Clear() error {
	m.token = ""
	return nil
}

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Store persists the bearer credential between runs. The file holds a single
// JSON object and is created with owner-only permissions.
type Store struct {
	path string
}

type savedCredential struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// NewStore builds a store writing to the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the credential to disk, replacing any previous one.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(savedCredential{
		Token:   token,
		SavedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load returns the persisted credential, or "" when none is saved. A missing
// file is the normal unauthenticated state, not an error.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var saved savedCredential
	if err := json.Unmarshal(data, &saved); err != nil {
		return "", err
	}
	return saved.Token, nil
}

// Clear removes the persisted credential. Clearing an already-empty store is
// a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

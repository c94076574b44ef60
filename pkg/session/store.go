package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialStore persists the bearer credential across process restarts.
// It also serves as the transport's credential source, so a saved or cleared
// credential takes effect on the next outgoing request.
type CredentialStore interface {
	// Load returns the stored credential and whether one is present.
	Load() (string, bool)
	// Save replaces the stored credential.
	Save(token string) error
	// Clear removes the stored credential. Clearing an empty store is not
	// an error.
	Clear() error
}

// FileStore keeps the credential as a single string in one file, created
// with owner-only permissions.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore holds the credential in memory; used in tests and for
// single-invocation sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// User is the cached profile returned by login.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	TailorID ID     `json:"tailor_id,omitempty"`
}

// SessionStore keeps the session token and cached user between requests.
type SessionStore interface {
	Token() string
	User() *User
	Save(token string, user *User) error
	Clear()
}

type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *MemoryStore) Save(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	return nil
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// fileSession mirrors the browser local-storage keys.
type fileSession struct {
	AuthToken   string `json:"auth_token,omitempty"`
	LegacyToken string `json:"token,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// FileStore persists the session as a small JSON file, e.g. for the CLI.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() fileSession {
	var fs fileSession
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fs
	}
	_ = json.Unmarshal(data, &fs)
	return fs
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs := s.load()
	if fs.AuthToken != "" {
		return fs.AuthToken
	}
	return fs.LegacyToken
}

func (s *FileStore) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().User
}

func (s *FileStore) Save(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(fileSession{AuthToken: token, User: user}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.WriteFile(s.path, []byte(`{}`), 0o600)
	}
}

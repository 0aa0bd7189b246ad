package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultConfigDirName = "nucleus-console"
	defaultStoreFilename = "state.json"
)

// DefaultPath returns the state file location:
//  1. $XDG_CONFIG_HOME/nucleus-console/state.json
//  2. ~/.config/nucleus-console/state.json
func DefaultPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, defaultConfigDirName, defaultStoreFilename), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", defaultConfigDirName, defaultStoreFilename), nil
}

// FileStore keeps all keys in one JSON object on disk. Every Set rewrites the
// file atomically (temp file + rename).
type FileStore struct {
	mu     sync.Mutex
	path   string
	data   map[string]string
	loaded bool
}

// fileSnapshot is the on-disk layout.
type fileSnapshot struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
	Updated string            `json:"updated,omitempty"`
}

// NewFileStore returns a store backed by path. The file is read lazily.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return "", err
	}
	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		// An unreadable file is replaced rather than blocking every write.
		s.data = make(map[string]string)
		s.loaded = true
	}
	s.data[key] = value
	return s.writeLocked()
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = make(map[string]string)
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read store %s: %w", s.path, err)
	}
	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse store %s: %w", s.path, err)
	}
	if snap.Values == nil {
		snap.Values = make(map[string]string)
	}
	s.data = snap.Values
	s.loaded = true
	return nil
}

func (s *FileStore) writeLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}
	payload, err := json.MarshalIndent(fileSnapshot{
		Version: 1,
		Values:  s.data,
		Updated: time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	payload = append(payload, '\n')

	tmp := s.path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write temp store %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename to %s: %w", s.path, err)
	}
	return nil
}

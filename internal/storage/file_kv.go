package storage

import (
	"fmt"
	"path/filepath"
	"sync"

	"recipe-assistant/pkg/fsutils"

	"github.com/gofrs/flock"
)

const fileKVLockName = ".store.lock"

// FileKV implements KeyValue using one JSON file per key.
// Writes replace the file atomically and are serialised across processes by a
// lock file in the same directory (exclusive for writes, shared for reads).
type FileKV struct {
	// BasePath is the directory where the <key>.json files are stored.
	BasePath string

	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileKV creates a new FileKV instance.
// It ensures the base storage directory exists.
func NewFileKV(basePath string) (*FileKV, error) {
	if err := fsutils.CreateDir(basePath); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", basePath, err)
	}
	return &FileKV{
		BasePath: basePath,
		lock:     flock.New(filepath.Join(basePath, fileKVLockName)),
	}, nil
}

func (s *FileKV) pathFor(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("storage key cannot be empty")
	}
	return filepath.Join(s.BasePath, fsutils.SanitizeFilename(key)+".json"), nil
}

// Get reads the value stored under key.
func (s *FileKV) Get(key string) ([]byte, bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return nil, false, fmt.Errorf("failed to acquire shared lock on %s: %w", s.BasePath, err)
	}
	defer s.lock.Unlock()

	return fsutils.ReadFileIfExists(path)
}

// Set persists value under key, replacing the previous file.
func (s *FileKV) Set(key string, value []byte) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire exclusive lock on %s: %w", s.BasePath, err)
	}
	defer s.lock.Unlock()

	if err := fsutils.WriteFileAtomic(path, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Update holds the exclusive lock across the read and the write, so another
// process sharing BasePath cannot slip a write in between.
func (s *FileKV) Update(key string, fn func([]byte, bool) ([]byte, error)) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire exclusive lock on %s: %w", s.BasePath, err)
	}
	defer s.lock.Unlock()

	value, ok, err := fsutils.ReadFileIfExists(path)
	if err != nil {
		return fmt.Errorf("failed to read key %s: %w", key, err)
	}
	updated, err := fn(value, ok)
	if err != nil {
		return err
	}
	if err := fsutils.WriteFileAtomic(path, updated); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key (idempotent delete).
func (s *FileKV) Delete(key string) error {
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire exclusive lock on %s: %w", s.BasePath, err)
	}
	defer s.lock.Unlock()

	return fsutils.RemoveIfExists(path)
}

// Close releases the lock file handle.
func (s *FileKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Close()
}

package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore is a single-JSON-file Store. It is the reference backend:
// Save writes to a sibling temp file and renames it over the target, so a
// reader never observes partial JSON (spec.md §4.2).
type FileStore struct {
	path      string
	lockPath  string
	token     string
	mu        sync.Mutex
	closed    bool
	haveLock  bool
}

// OpenFileStore opens a store for the checkpoint file at path, creating its
// directory if necessary; the file itself is first written by Save.
// It takes an advisory lock at lockPath (path + ".lock") for the lifetime
// of the store; a second OpenFileStore against the same path fails with
// ErrLocked.
func OpenFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create directory %s: %w", dir, err)
	}

	lockPath := path + ".lock"
	token := uuid.NewString()
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("checkpoint: create lock file: %w", err)
	}
	fmt.Fprintf(lockFile, "pid=%d token=%s\n", os.Getpid(), token)
	lockFile.Close()

	return &FileStore{
		path:     path,
		lockPath: lockPath,
		token:    token,
		haveLock: true,
	}, nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("checkpoint: parse %s: %w", s.path, err)
	}
	return &cp, nil
}

// Save implements Store. It writes to path+".tmp" then renames, which is
// atomic on POSIX filesystems — the crash-safety contract in spec.md §4.2.
func (s *FileStore) Save(ctx context.Context, cp *Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	tmpPath := s.path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("checkpoint: open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("checkpoint: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("checkpoint: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("checkpoint: rename into place: %w", err)
	}
	return nil
}

// Close releases the advisory lock. Safe to call more than once.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.haveLock {
		os.Remove(s.lockPath)
		s.haveLock = false
	}
	return nil
}

var _ Store = (*FileStore)(nil)

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// DirStore keeps each package as a file in a library directory.
// Bytes are staged in a temporary directory and renamed into place,
// so a reader never sees a partially written package.
type DirStore struct {
	libDir  string
	tempDir string
	mu      sync.RWMutex
	closed  bool
}

// NewDirStore creates a directory store, creating both directories if needed.
// tempDir must be on the same filesystem as libDir. If tempDir is empty,
// a ".tmp" directory inside libDir is used.
func NewDirStore(libDir, tempDir string) (*DirStore, error) {
	if libDir == "" {
		return nil, errors.New("library directory required")
	}
	if tempDir == "" {
		tempDir = filepath.Join(libDir, ".tmp")
	}
	for _, dir := range []string{libDir, tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return &DirStore{libDir: libDir, tempDir: tempDir}, nil
}

// Path returns the file path where the package would be stored.
func (s *DirStore) Path(name string) string {
	return filepath.Join(s.libDir, name)
}

// Write implements Store.
func (s *DirStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	tmpPath := filepath.Join(s.tempDir, name+"."+uuid.New().String()+".tmp")
	if err := writeSynced(tmpPath, data); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("stage artifact %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("install artifact %s: %w", name, err)
	}
	return nil
}

// Read implements Store.
func (s *DirStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	return data, nil
}

// Delete implements Store.
func (s *DirStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete artifact %s: %w", name, err)
	}
	return nil
}

// Close implements Store.
func (s *DirStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// writeSynced writes data to path and flushes it to stable storage.
func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

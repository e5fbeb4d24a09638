package snapshot

import (
	"errors"
	"fmt"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNoSnapshot indicates the snapshot file does not exist.
	// On startup this is the expected first-boot state.
	ErrNoSnapshot = errors.New("no snapshot")

	// ErrCorrupt indicates the snapshot file exists but cannot be trusted.
	ErrCorrupt = errors.New("snapshot corrupt")
)

// IOError wraps filesystem failures while taking or loading a snapshot.
type IOError struct {
	// Op is the operation that failed ("create", "write", "sync", "rename", "read").
	Op string
	// Path is the file involved.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *IOError) Unwrap() error {
	return e.Err
}

// CorruptError describes why a snapshot file was rejected.
type CorruptError struct {
	// Path is the rejected file. Empty when decoding from memory.
	Path string
	// Reason describes the first check that failed.
	Reason string
}

// Error implements the error interface.
func (e *CorruptError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("snapshot corrupt at %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("snapshot corrupt: %s", e.Reason)
}

// Unwrap returns ErrCorrupt for errors.Is support.
func (e *CorruptError) Unwrap() error {
	return ErrCorrupt
}

func corrupt(format string, args ...any) error {
	return &CorruptError{Reason: fmt.Sprintf(format, args...)}
}

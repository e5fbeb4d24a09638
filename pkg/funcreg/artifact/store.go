// Package artifact provides durable byte storage for uploaded function packages.
package artifact

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Store persists package bytes addressed by package name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Write stores data under name, replacing any previous bytes.
	// Writing the same bytes twice is harmless.
	Write(ctx context.Context, name string, data []byte) error

	// Read returns the bytes stored under name.
	// Returns ErrNotFound if nothing is stored.
	Read(ctx context.Context, name string) ([]byte, error)

	// Delete removes the bytes stored under name.
	// Returns nil if nothing is stored.
	Delete(ctx context.Context, name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for artifact operations.
var (
	// ErrNotFound indicates no package is stored under the name.
	ErrNotFound = errors.New("artifact not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("artifact store closed")

	// ErrInvalidName indicates a package name that cannot be used as a storage key.
	ErrInvalidName = errors.New("invalid artifact name")
)

// ValidateName rejects names that are empty or could escape a storage directory.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// Checksum returns the hex-encoded MD5 digest of data, the format callers
// use for package checksums.
func Checksum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

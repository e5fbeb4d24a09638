package funcreg

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations.
var (
	// ErrDuplicateName indicates a function with the same name is already registered.
	ErrDuplicateName = errors.New("function already registered")

	// ErrChecksumConflict indicates a package name is already on record with a different checksum.
	ErrChecksumConflict = errors.New("package checksum conflict")

	// ErrChecksumMismatch indicates uploaded bytes do not hash to the asserted checksum.
	ErrChecksumMismatch = errors.New("package bytes do not match checksum")

	// ErrArtifactWrite indicates the artifact store failed to persist package bytes.
	ErrArtifactWrite = errors.New("artifact write failed")

	// ErrInvalidRequest indicates a request with missing required fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound indicates the function is not registered.
	ErrNotFound = errors.New("function not found")

	// ErrLockReleased indicates an operation on a handle whose lock was already released.
	ErrLockReleased = errors.New("registry lock released")

	// ErrNilContext indicates Acquire was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// DuplicateNameError rejects a registration whose name is taken.
type DuplicateNameError struct {
	// Name is the function name that is already registered.
	Name string
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("function %q already registered", e.Name)
}

// Unwrap returns ErrDuplicateName for errors.Is support.
func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// ChecksumConflictError rejects a registration that reuses a package name
// with different content.
type ChecksumConflictError struct {
	// Function is the function being registered.
	Function string
	// Package is the reused package name.
	Package string
	// Checksum is the checksum the request asserted.
	Checksum string
	// Existing is the checksum on record.
	Existing string
}

// Error implements the error interface.
func (e *ChecksumConflictError) Error() string {
	return fmt.Sprintf("function %q: package %q already registered with checksum %q, got %q",
		e.Function, e.Package, e.Existing, e.Checksum)
}

// Unwrap returns ErrChecksumConflict for errors.Is support.
func (e *ChecksumConflictError) Unwrap() error {
	return ErrChecksumConflict
}

// ChecksumMismatchError rejects uploaded bytes that do not match the asserted checksum.
type ChecksumMismatchError struct {
	Function string
	Package  string
	Asserted string
	Actual   string
}

// Error implements the error interface.
func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("function %q: package %q bytes hash to %q, request asserted %q",
		e.Function, e.Package, e.Actual, e.Asserted)
}

// Unwrap returns ErrChecksumMismatch for errors.Is support.
func (e *ChecksumMismatchError) Unwrap() error {
	return ErrChecksumMismatch
}

// ArtifactWriteError wraps an artifact store failure during registration.
// Nothing is committed when it is returned.
type ArtifactWriteError struct {
	// Function is the function being registered.
	Function string
	// Package is the package that could not be written.
	Package string
	// Err is the underlying store error.
	Err error
}

// Error implements the error interface.
func (e *ArtifactWriteError) Error() string {
	return fmt.Sprintf("function %q: write package %q: %v", e.Function, e.Package, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ArtifactWriteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrArtifactWrite.
func (e *ArtifactWriteError) Is(target error) bool {
	return target == ErrArtifactWrite
}

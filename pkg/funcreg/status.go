package funcreg

import (
	"errors"
	"fmt"
)

// StatusCode classifies the outcome of a registry operation.
type StatusCode int

const (
	// StatusSuccess indicates the operation committed.
	StatusSuccess StatusCode = iota

	// StatusNotFound indicates the function was not registered.
	StatusNotFound

	// StatusDuplicateName indicates the function name is taken.
	StatusDuplicateName

	// StatusChecksumConflict indicates the package name is on record with another checksum.
	StatusChecksumConflict

	// StatusChecksumMismatch indicates uploaded bytes do not match the asserted checksum.
	StatusChecksumMismatch

	// StatusArtifactWriteFailed indicates the package bytes could not be stored.
	StatusArtifactWriteFailed

	// StatusInvalidRequest indicates missing required fields.
	StatusInvalidRequest

	// StatusExecuteError indicates any other failure, including a released lock.
	StatusExecuteError
)

// String returns the code name.
func (c StatusCode) String() string {
	switch c {
	case StatusSuccess:
		return "SUCCESS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusDuplicateName:
		return "DUPLICATE_NAME"
	case StatusChecksumConflict:
		return "CHECKSUM_CONFLICT"
	case StatusChecksumMismatch:
		return "CHECKSUM_MISMATCH"
	case StatusArtifactWriteFailed:
		return "ARTIFACT_WRITE_FAILED"
	case StatusInvalidRequest:
		return "INVALID_REQUEST"
	case StatusExecuteError:
		return "EXECUTE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Status is the result returned to callers of Register and Unregister.
// Failure messages name the function and package involved.
type Status struct {
	Code    StatusCode
	Message string

	err error
}

// OK returns true if the operation committed.
func (s Status) OK() bool {
	return s.Code == StatusSuccess
}

// Err returns nil for a successful status, otherwise an error carrying the
// message. The typed cause remains reachable through errors.Is/As.
func (s Status) Err() error {
	if s.OK() {
		return nil
	}
	if s.err != nil {
		return &StatusError{Code: s.Code, Message: s.Message, Err: s.err}
	}
	return &StatusError{Code: s.Code, Message: s.Message}
}

// String formats the status for logs.
func (s Status) String() string {
	if s.Message == "" {
		return s.Code.String()
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// StatusError is the error form of a failed Status.
type StatusError struct {
	Code    StatusCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StatusError) Unwrap() error {
	return e.Err
}

func success() Status {
	return Status{Code: StatusSuccess}
}

// failure builds a failed status whose code follows the error's kind.
func failure(prefix string, err error) Status {
	return Status{
		Code:    codeFor(err),
		Message: fmt.Sprintf("%s: %v", prefix, err),
		err:     err,
	}
}

func codeFor(err error) StatusCode {
	switch {
	case errors.Is(err, ErrDuplicateName):
		return StatusDuplicateName
	case errors.Is(err, ErrChecksumConflict):
		return StatusChecksumConflict
	case errors.Is(err, ErrChecksumMismatch):
		return StatusChecksumMismatch
	case errors.Is(err, ErrArtifactWrite):
		return StatusArtifactWriteFailed
	case errors.Is(err, ErrInvalidRequest):
		return StatusInvalidRequest
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	default:
		return StatusExecuteError
	}
}

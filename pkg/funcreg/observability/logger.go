// Package observability provides logging, metrics, and tracing for the
// function registry.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// EnrichLogger adds registry operation context to a logger.
func EnrichLogger(logger *slog.Logger, op, function string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("op", op),
		slog.String("function", function),
	)
}

// LogLockAcquired logs acquisition of the registry lock.
func LogLockAcquired(logger *slog.Logger, wait time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("registry lock acquired",
		slog.Duration("wait", wait),
	)
}

// LogLockReleased logs release of the registry lock.
func LogLockReleased(logger *slog.Logger, held time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("registry lock released",
		slog.Duration("held", held),
	)
}

// LogRegistered logs a committed registration. uploaded is the number of
// package bytes written, zero when an existing package was reused.
func LogRegistered(logger *slog.Logger, function, pkg string, uploaded int) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("function", function),
		slog.String("package", pkg),
	}
	if uploaded > 0 {
		attrs = append(attrs, slog.String("uploaded", humanize.Bytes(uint64(uploaded))))
	} else {
		attrs = append(attrs, slog.Bool("reused_package", true))
	}
	logger.Info("function registered", attrs...)
}

// LogRegisterFailed logs a rejected or failed registration.
func LogRegisterFailed(logger *slog.Logger, function, pkg, code string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("function registration failed",
		slog.String("function", function),
		slog.String("package", pkg),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)
}

// LogUnregistered logs removal of a function.
func LogUnregistered(logger *slog.Logger, function, pkg string) {
	if logger == nil {
		return
	}
	logger.Info("function unregistered",
		slog.String("function", function),
		slog.String("package", pkg),
	)
}

// LogSnapshotTaken logs a successful snapshot write.
func LogSnapshotTaken(logger *slog.Logger, path string, functions, packages int, sizeBytes int64) {
	if logger == nil {
		return
	}
	logger.Info("registry snapshot taken",
		slog.String("path", path),
		slog.Int("functions", functions),
		slog.Int("packages", packages),
		slog.String("size", humanize.Bytes(uint64(sizeBytes))),
	)
}

// LogSnapshotLoaded logs a successful snapshot load.
func LogSnapshotLoaded(logger *slog.Logger, path string, functions, packages int, takenAt time.Time) {
	if logger == nil {
		return
	}
	logger.Info("registry snapshot loaded",
		slog.String("path", path),
		slog.Int("functions", functions),
		slog.Int("packages", packages),
		slog.String("age", humanize.Time(takenAt)),
	)
}

// LogSnapshotError logs a snapshot failure.
func LogSnapshotError(logger *slog.Logger, op, dir string, err error) {
	if logger == nil {
		return
	}
	logger.Error("registry snapshot failed",
		slog.String("operation", op),
		slog.String("dir", dir),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

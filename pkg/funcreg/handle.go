package funcreg

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/funcreg/pkg/funcreg/artifact"
	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
	"github.com/randalmurphal/funcreg/pkg/funcreg/table"
)

// CreateRequest asks the registry to register one function.
type CreateRequest struct {
	// Function is the metadata to register. Function.Name is the key.
	Function table.FunctionInfo

	// Package holds the package bytes. Leave nil when the package is already
	// stored under Function.PackageName with the same checksum; the registry
	// trusts its checksum index and does not check the artifact store.
	Package []byte
}

// Handle is proof of holding the registry lock. It is returned by
// Registry.Acquire and is valid until Release. Operations on a released
// handle fail with ErrLockReleased and never touch registry state.
type Handle struct {
	r          *Registry
	acquiredAt time.Time
	released   atomic.Bool
	once       sync.Once
}

func newHandle(r *Registry) *Handle {
	return &Handle{r: r, acquiredAt: time.Now()}
}

// Release gives up the registry lock. It is safe to call more than once.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.released.Store(true)
		<-h.r.sem
		observability.LogLockReleased(h.r.cfg.logger, time.Since(h.acquiredAt))
	})
}

func (h *Handle) active() bool {
	return !h.released.Load()
}

// Validate checks whether a function could be registered right now. It has
// no side effects and does not reserve the name; hold the handle across
// Validate and Register to make the result binding.
//
// Returns a *DuplicateNameError if the name is taken, a *ChecksumConflictError
// if packageName is on record with a different checksum, or an error wrapping
// ErrInvalidRequest if a field is empty or packageName is not a usable
// storage key.
func (h *Handle) Validate(name, packageName, checksum string) error {
	if !h.active() {
		return ErrLockReleased
	}
	switch {
	case name == "":
		return fmt.Errorf("%w: function name required", ErrInvalidRequest)
	case packageName == "":
		return fmt.Errorf("%w: function %q: package name required", ErrInvalidRequest, name)
	case checksum == "":
		return fmt.Errorf("%w: function %q: package checksum required", ErrInvalidRequest, name)
	}

	if err := artifact.ValidateName(packageName); err != nil {
		return fmt.Errorf("%w: function %q: %w", ErrInvalidRequest, name, err)
	}

	if h.r.functions.Contains(name) {
		return &DuplicateNameError{Name: name}
	}
	if h.r.checksums.Conflicts(packageName, checksum) {
		existing, _ := h.r.checksums.Lookup(packageName)
		return &ChecksumConflictError{
			Function: name,
			Package:  packageName,
			Checksum: checksum,
			Existing: existing,
		}
	}
	return nil
}

// NeedsUpload reports whether no checksum is on record for packageName, in
// which case the caller must send the package bytes with Register.
// A released handle reports true, since sending bytes is always safe.
func (h *Handle) NeedsUpload(packageName string) bool {
	if !h.active() {
		return true
	}
	return !h.r.checksums.Contains(packageName)
}

// Register commits a function. It re-runs Validate, writes the package bytes
// when present and the package is not yet on record, and only then records
// the metadata and checksum together. Bytes resent for a package already on
// record are ignored, so each package is written at most once. A failed
// artifact write leaves the registry unchanged. Panics are recovered and
// reported as StatusExecuteError.
func (h *Handle) Register(ctx context.Context, req CreateRequest) (st Status) {
	r := h.r
	info := req.Function
	prefix := fmt.Sprintf("register function [%s] with package [%s]", info.Name, info.PackageName)
	uploaded := 0

	if ctx == nil {
		st = failure(prefix, ErrNilContext)
		observability.LogRegisterFailed(r.cfg.logger, info.Name, info.PackageName, st.Code.String(), st.Err())
		return st
	}

	elapsed := observability.TimedOperation()
	var span trace.Span
	defer func() {
		if p := recover(); p != nil {
			st = failure(prefix, fmt.Errorf("panic: %v", p))
			if logger := observability.EnrichLogger(r.cfg.logger, "register", info.Name); logger != nil {
				logger.Error("panic during registration",
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}
		r.cfg.metrics.RecordRegistration(ctx, st.Code.String(), elapsed())
		r.cfg.spans.EndSpanWithError(span, st.Err())
		if st.OK() {
			observability.LogRegistered(r.cfg.logger, info.Name, info.PackageName, uploaded)
		} else {
			observability.LogRegisterFailed(r.cfg.logger, info.Name, info.PackageName, st.Code.String(), st.Err())
		}
	}()
	ctx, span = r.cfg.spans.StartOperationSpan(ctx, "register", info.Name)

	if err := h.Validate(info.Name, info.PackageName, info.PackageChecksum); err != nil {
		return failure(prefix, err)
	}

	// Validate passed, so a package on record carries this same checksum and
	// its bytes are already stored.
	known := r.checksums.Contains(info.PackageName)
	if req.Package != nil && !known {
		if r.cfg.verifyChecksums {
			if actual := artifact.Checksum(req.Package); actual != info.PackageChecksum {
				return failure(prefix, &ChecksumMismatchError{
					Function: info.Name,
					Package:  info.PackageName,
					Asserted: info.PackageChecksum,
					Actual:   actual,
				})
			}
		}
		if err := r.store.Write(ctx, info.PackageName, req.Package); err != nil {
			return failure(prefix, &ArtifactWriteError{
				Function: info.Name,
				Package:  info.PackageName,
				Err:      err,
			})
		}
		uploaded = len(req.Package)
		r.cfg.metrics.RecordUpload(ctx, info.PackageName, int64(uploaded))
		r.cfg.spans.AddSpanEvent(ctx, "artifact.written",
			attribute.String("package", info.PackageName),
			attribute.Int("bytes", uploaded),
		)
	} else if !known && r.cfg.logger != nil {
		r.cfg.logger.Warn("registering function without package bytes for an unknown package",
			slog.String("function", info.Name),
			slog.String("package", info.PackageName),
		)
	}

	// Validate passed under the lock, so Add cannot collide.
	r.functions.Add(info)
	r.checksums.Put(info.PackageName, info.PackageChecksum)
	return success()
}

// Unregister removes a function. It returns StatusNotFound, not an error
// status, when name is not registered, so repeated calls are harmless.
//
// The package's checksum entry and stored bytes are kept even when no other
// function uses them: a package name keeps its checksum for the lifetime of
// the registry. OrphanedPackages lists such packages for a separate reaper.
func (h *Handle) Unregister(ctx context.Context, name string) Status {
	r := h.r
	prefix := fmt.Sprintf("unregister function [%s]", name)
	if ctx == nil {
		return failure(prefix, ErrNilContext)
	}

	ctx, span := r.cfg.spans.StartOperationSpan(ctx, "unregister", name)
	if !h.active() {
		st := failure(prefix, ErrLockReleased)
		r.cfg.spans.EndSpanWithError(span, st.Err())
		return st
	}

	removed, ok := r.functions.Remove(name)
	r.cfg.metrics.RecordUnregistration(ctx, ok)
	if !ok {
		r.cfg.spans.EndSpanWithError(span, nil)
		return Status{
			Code:    StatusNotFound,
			Message: fmt.Sprintf("%s: function not registered", prefix),
			err:     ErrNotFound,
		}
	}

	r.cfg.spans.EndSpanWithError(span, nil)
	observability.LogUnregistered(r.cfg.logger, name, removed.PackageName)
	return success()
}

// Get returns the metadata registered under name.
func (h *Handle) Get(name string) (table.FunctionInfo, error) {
	if !h.active() {
		return table.FunctionInfo{}, ErrLockReleased
	}
	info, ok := h.r.functions.Get(name)
	if !ok {
		return table.FunctionInfo{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return info, nil
}

// Functions returns every registered function ordered by name.
func (h *Handle) Functions() ([]table.FunctionInfo, error) {
	if !h.active() {
		return nil, ErrLockReleased
	}
	return h.r.functions.All(), nil
}

// Checksums returns a copy of the package checksum index.
func (h *Handle) Checksums() (map[string]string, error) {
	if !h.active() {
		return nil, ErrLockReleased
	}
	return h.r.checksums.Entries(), nil
}

// OrphanedPackages returns packages on record that no function references,
// in ascending order.
func (h *Handle) OrphanedPackages() ([]string, error) {
	if !h.active() {
		return nil, ErrLockReleased
	}
	referenced := h.r.functions.ReferencedPackages()
	var orphans []string
	for _, pkg := range h.r.checksums.Packages() {
		if _, ok := referenced[pkg]; !ok {
			orphans = append(orphans, pkg)
		}
	}
	return orphans, nil
}

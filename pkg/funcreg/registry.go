package funcreg

import (
	"context"
	"fmt"

	"github.com/randalmurphal/funcreg/pkg/funcreg/artifact"
	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
	"github.com/randalmurphal/funcreg/pkg/funcreg/table"
)

// Registry maps function names to their metadata and backing packages.
//
// All state sits behind one exclusive lock. Callers take it with Acquire
// (or Update) and perform validate, register, unregister, and snapshot
// operations through the returned Handle, so that a precondition check and
// the commit that depends on it observe the same state.
type Registry struct {
	// sem is the registry lock; a buffered channel so waiting can honour ctx.
	sem chan struct{}

	functions *table.FunctionTable
	checksums *table.ChecksumIndex
	store     artifact.Store
	cfg       registryConfig
}

// New creates an empty registry that writes package bytes to store.
func New(store artifact.Store, opts ...Option) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		sem:       make(chan struct{}, 1),
		functions: table.NewFunctionTable(),
		checksums: table.NewChecksumIndex(),
		store:     store,
		cfg:       cfg,
	}
}

// Acquire takes the registry lock and returns a handle for operating on the
// registry. It blocks until the lock is free or ctx is done. The caller must
// call Release on the handle, typically with defer:
//
//	h, err := reg.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer h.Release()
func (r *Registry) Acquire(ctx context.Context) (*Handle, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquire registry lock: %w", err)
	}

	waited := observability.TimedOperation()
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire registry lock: %w", ctx.Err())
	}

	wait := waited()
	r.cfg.metrics.RecordLockWait(ctx, wait)
	observability.LogLockAcquired(r.cfg.logger, wait)
	return newHandle(r), nil
}

// Update runs fn while holding the registry lock. The lock is released on
// every exit path, including a panic in fn.
func (r *Registry) Update(ctx context.Context, fn func(h *Handle) error) error {
	h, err := r.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()
	return fn(h)
}

// Create validates and registers a function in a single critical section.
func (r *Registry) Create(ctx context.Context, req CreateRequest) Status {
	var st Status
	err := r.Update(ctx, func(h *Handle) error {
		st = h.Register(ctx, req)
		return nil
	})
	if err != nil {
		return failure(fmt.Sprintf("register function [%s]", req.Function.Name), err)
	}
	return st
}

// Drop unregisters a function in its own critical section.
func (r *Registry) Drop(ctx context.Context, name string) Status {
	var st Status
	err := r.Update(ctx, func(h *Handle) error {
		st = h.Unregister(ctx, name)
		return nil
	})
	if err != nil {
		return failure(fmt.Sprintf("unregister function [%s]", name), err)
	}
	return st
}

// Store returns the artifact store the registry writes to.
func (r *Registry) Store() artifact.Store {
	return r.store
}

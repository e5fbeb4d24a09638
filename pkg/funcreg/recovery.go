package funcreg

import (
	"context"
	"errors"

	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
	"github.com/randalmurphal/funcreg/pkg/funcreg/snapshot"
	"github.com/randalmurphal/funcreg/pkg/funcreg/table"
)

// TakeSnapshot writes the function table and checksum index to the snapshot
// file in dir. The write is atomic; on failure any previous snapshot in dir
// is left intact.
func (h *Handle) TakeSnapshot(ctx context.Context, dir string) error {
	if ctx == nil {
		return ErrNilContext
	}
	if !h.active() {
		return ErrLockReleased
	}
	r := h.r

	ctx, span := r.cfg.spans.StartOperationSpan(ctx, "snapshot.take", "")
	state := snapshot.State{
		Functions: r.functions.All(),
		Checksums: r.checksums.Entries(),
	}
	info, err := snapshot.Take(dir, state)
	r.cfg.metrics.RecordSnapshot(ctx, "take", info.Size, err)
	r.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogSnapshotError(r.cfg.logger, "take", dir, err)
		return err
	}

	observability.LogSnapshotTaken(r.cfg.logger, info.Path, info.Functions, info.Packages, info.Size)
	return nil
}

// LoadSnapshot replaces the function table and checksum index with the
// contents of the snapshot in dir. Nothing is merged: entries registered
// since the snapshot was taken are discarded. On error the in-memory state is
// unchanged.
//
// Returns snapshot.ErrNoSnapshot if dir holds no snapshot, an error matching
// snapshot.ErrCorrupt if the file fails verification, or a *snapshot.IOError.
func (h *Handle) LoadSnapshot(ctx context.Context, dir string) error {
	if ctx == nil {
		return ErrNilContext
	}
	if !h.active() {
		return ErrLockReleased
	}
	r := h.r

	ctx, span := r.cfg.spans.StartOperationSpan(ctx, "snapshot.load", "")
	state, info, err := snapshot.Load(dir)
	r.cfg.metrics.RecordSnapshot(ctx, "load", info.Size, err)
	r.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			observability.LogSnapshotError(r.cfg.logger, "load", dir, err)
		}
		return err
	}

	functions := table.NewFunctionTable()
	for _, f := range state.Functions {
		functions.Add(f)
	}
	checksums := table.NewChecksumIndex()
	for pkg, sum := range state.Checksums {
		checksums.Put(pkg, sum)
	}
	r.functions = functions
	r.checksums = checksums

	observability.LogSnapshotLoaded(r.cfg.logger, info.Path, info.Functions, info.Packages, info.TakenAt)
	return nil
}

// TakeSnapshot acquires the lock and snapshots the registry into dir.
func (r *Registry) TakeSnapshot(ctx context.Context, dir string) error {
	return r.Update(ctx, func(h *Handle) error {
		return h.TakeSnapshot(ctx, dir)
	})
}

// LoadSnapshot acquires the lock and replaces the registry state with the
// snapshot in dir.
func (r *Registry) LoadSnapshot(ctx context.Context, dir string) error {
	return r.Update(ctx, func(h *Handle) error {
		return h.LoadSnapshot(ctx, dir)
	})
}

// Recover is the startup path. It loads the snapshot in dir and reports
// whether one was found. A missing snapshot is a clean first boot and leaves
// the registry empty; a corrupt or unreadable one is returned as an error
// and must not be ignored.
func (r *Registry) Recover(ctx context.Context, dir string) (bool, error) {
	err := r.LoadSnapshot(ctx, dir)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, snapshot.ErrNoSnapshot):
		if r.cfg.logger != nil {
			r.cfg.logger.Info("no registry snapshot found, starting empty")
		}
		return false, nil
	default:
		return false, err
	}
}

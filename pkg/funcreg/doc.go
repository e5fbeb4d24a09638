// Package funcreg is the registry of user-defined functions kept by a
// control-plane node. It maps each function name to its metadata and to the
// binary package implementing it, deduplicates package uploads by checksum,
// and snapshots its state for crash recovery.
//
// # Locking
//
// The registry has a single exclusive lock. Acquire it explicitly and run the
// whole validate-then-register sequence through the returned Handle:
//
//	h, err := reg.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer h.Release()
//
//	if err := h.Validate("sum", "sum.jar", checksum); err != nil {
//	    return err // *DuplicateNameError or *ChecksumConflictError
//	}
//	req := funcreg.CreateRequest{Function: info}
//	if h.NeedsUpload("sum.jar") {
//	    req.Package = jarBytes
//	}
//	if st := h.Register(ctx, req); !st.OK() {
//	    return st.Err()
//	}
//
// Use a context deadline on Acquire to bound lock waits; the registry itself
// never times out or retries. Update wraps Acquire and Release for callers
// that prefer a closure.
//
// # Deduplication
//
// A package name keeps the checksum it was first registered with. Another
// function may reuse the package without sending bytes when its checksum
// matches; a different checksum under the same package name is rejected with
// ErrChecksumConflict. Function names are unique and compared exactly.
//
// # Unregister
//
// Unregister removes the function only. The package checksum and stored
// bytes remain, so the package name cannot later be rebound to different
// content. OrphanedPackages lists packages no function references.
//
// # Snapshots
//
// TakeSnapshot writes the whole registry state to one file atomically.
// LoadSnapshot replaces the in-memory state with the file's contents.
// Recover treats a missing snapshot as a first boot and any other failure as
// fatal:
//
//	loaded, err := reg.Recover(ctx, snapshotDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
package funcreg

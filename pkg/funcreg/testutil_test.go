package funcreg_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/artifact"
	"github.com/randalmurphal/funcreg/pkg/funcreg/table"
)

func newTestRegistry(t *testing.T, opts ...funcreg.Option) (*funcreg.Registry, *artifact.MemoryStore) {
	t.Helper()
	store := artifact.NewMemoryStore()
	opts = append([]funcreg.Option{funcreg.WithLogger(nil)}, opts...)
	return funcreg.New(store, opts...), store
}

func fn(name, pkg, checksum string) table.FunctionInfo {
	return table.FunctionInfo{
		Name:            name,
		EntryPoint:      "org.example." + name,
		PackageName:     pkg,
		PackageChecksum: checksum,
	}
}

// register runs the full validate / needs-upload / register protocol under one lock.
func register(t *testing.T, reg *funcreg.Registry, info table.FunctionInfo, data []byte) funcreg.Status {
	t.Helper()
	ctx := context.Background()
	h, err := reg.Acquire(ctx)
	require.NoError(t, err)
	defer h.Release()

	req := funcreg.CreateRequest{Function: info}
	if h.NeedsUpload(info.PackageName) {
		req.Package = data
	}
	return h.Register(ctx, req)
}

func functions(t *testing.T, reg *funcreg.Registry) []table.FunctionInfo {
	t.Helper()
	var out []table.FunctionInfo
	require.NoError(t, reg.Update(context.Background(), func(h *funcreg.Handle) error {
		var err error
		out, err = h.Functions()
		return err
	}))
	return out
}

func checksums(t *testing.T, reg *funcreg.Registry) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, reg.Update(context.Background(), func(h *funcreg.Handle) error {
		var err error
		out, err = h.Checksums()
		return err
	}))
	return out
}

package funcreg_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
)

func TestConcurrent_DistinctNamesAllSucceed(t *testing.T) {
	reg, store := newTestRegistry(t)
	const n = 64

	var wg sync.WaitGroup
	results := make([]funcreg.Status, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("fn-%02d", i)
			// every caller shares one package so dedup is exercised under contention
			results[i] = register(t, reg, fn(name, "shared.jar", "abc"), []byte("jar"))
		}(i)
	}
	wg.Wait()

	for i, st := range results {
		assert.True(t, st.OK(), "caller %d: %s", i, st)
	}
	assert.Len(t, functions(t, reg), n)
	assert.Equal(t, 1, store.WriteCount("shared.jar"))
}

func TestConcurrent_SameNameExactlyOneWins(t *testing.T) {
	reg, _ := newTestRegistry(t)
	const n = 64
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]funcreg.Status, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			pkg := fmt.Sprintf("pkg-%02d.jar", i)
			results[i] = reg.Create(ctx, funcreg.CreateRequest{
				Function: fn("sum", pkg, "abc"),
				Package:  []byte("jar"),
			})
		}(i)
	}
	wg.Wait()

	wins, dups := 0, 0
	for _, st := range results {
		switch st.Code {
		case funcreg.StatusSuccess:
			wins++
		case funcreg.StatusDuplicateName:
			dups++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, dups)

	fns := functions(t, reg)
	require.Len(t, fns, 1)
	// only the winner's package was recorded
	assert.Len(t, checksums(t, reg), 1)
	assert.Contains(t, checksums(t, reg), fns[0].PackageName)
}

func TestConcurrent_ConflictingChecksums(t *testing.T) {
	reg, store := newTestRegistry(t)
	const n = 32
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]funcreg.Status, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = reg.Create(ctx, funcreg.CreateRequest{
				Function: fn(fmt.Sprintf("fn-%02d", i), "shared.jar", fmt.Sprintf("md5-%d", i%2)),
				Package:  []byte("jar"),
			})
		}(i)
	}
	wg.Wait()

	sums := checksums(t, reg)
	require.Len(t, sums, 1)
	winner := sums["shared.jar"]

	for i, st := range results {
		if fmt.Sprintf("md5-%d", i%2) == winner {
			assert.True(t, st.OK(), st.String())
		} else {
			assert.Equal(t, funcreg.StatusChecksumConflict, st.Code)
		}
	}
	for _, f := range functions(t, reg) {
		assert.Equal(t, winner, f.PackageChecksum)
	}
	// every caller sends bytes, but the package is written once
	assert.Equal(t, 1, store.WriteCount("shared.jar"))
}

func TestConcurrent_SnapshotSeesConsistentState(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	dir := t.TempDir()
	const n = 32

	var wg sync.WaitGroup
	wg.Add(n + 1)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			reg.Create(ctx, funcreg.CreateRequest{
				Function: fn(fmt.Sprintf("fn-%02d", i), fmt.Sprintf("pkg-%02d.jar", i), "abc"),
				Package:  []byte("jar"),
			})
		}(i)
	}
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			assert.NoError(t, reg.TakeSnapshot(ctx, dir))
		}
	}()
	wg.Wait()

	// Whatever the snapshot captured must satisfy the invariants
	restored, _ := newTestRegistry(t)
	require.NoError(t, restored.LoadSnapshot(ctx, dir))
	sums := checksums(t, restored)
	for _, f := range functions(t, restored) {
		assert.Equal(t, f.PackageChecksum, sums[f.PackageName])
	}
}

package artifact_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/funcreg/pkg/funcreg/artifact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStore_LeavesNoTempFiles(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "lib")
	tmp := filepath.Join(t.TempDir(), "tmp")
	s, err := artifact.NewDirStore(lib, tmp)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), "sum.jar", []byte("bytes")))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)

	data, err := os.ReadFile(filepath.Join(lib, "sum.jar"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
	assert.Equal(t, filepath.Join(lib, "sum.jar"), s.Path("sum.jar"))
}

func TestDirStore_Persistence(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "lib")

	s1, err := artifact.NewDirStore(lib, "")
	require.NoError(t, err)
	require.NoError(t, s1.Write(context.Background(), "sum.jar", []byte("persistent")))
	require.NoError(t, s1.Close())

	s2, err := artifact.NewDirStore(lib, "")
	require.NoError(t, err)
	defer s2.Close()

	data, err := s2.Read(context.Background(), "sum.jar")
	require.NoError(t, err)
	assert.Equal(t, []byte("persistent"), data)
}

func TestDirStore_RequiresLibDir(t *testing.T) {
	_, err := artifact.NewDirStore("", "")
	assert.Error(t, err)
}

func TestDirStore_CancelledContext(t *testing.T) {
	s, err := artifact.NewDirStore(t.TempDir(), "")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Write(ctx, "sum.jar", []byte("x")), context.Canceled)
}

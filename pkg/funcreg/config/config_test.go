package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/funcreg/pkg/funcreg/artifact"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendDir, cfg.Artifact.Backend)
	assert.Equal(t, 1, cfg.Artifact.Retry.MaxAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
snapshot_dir: /var/lib/funcreg/snapshot
verify_checksums: true
artifact:
  backend: sqlite
  sqlite_path: /var/lib/funcreg/packages.db
  retry:
    max_attempts: 4
    initial_interval: 250ms
    max_interval: 3
log:
  level: debug
  format: json
metrics: true
`)

	cfg, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/funcreg/snapshot", cfg.SnapshotDir)
	assert.True(t, cfg.VerifyChecksums)
	assert.Equal(t, BackendSQLite, cfg.Artifact.Backend)
	assert.Equal(t, 4, cfg.Artifact.Retry.MaxAttempts)
	assert.Equal(t, Duration(250*time.Millisecond), cfg.Artifact.Retry.InitialInterval)
	assert.Equal(t, Duration(3*time.Second), cfg.Artifact.Retry.MaxInterval)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics)
	assert.False(t, cfg.Tracing)

	// Unset values keep their defaults
	assert.Equal(t, "data/lib", cfg.Artifact.LibDir)
}

func TestFromYAML_Empty(t *testing.T) {
	cfg, err := FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "snapshot_dirr: x\n"},
		{"bad duration", "artifact:\n  retry:\n    initial_interval: soon\n"},
		{"bad backend", "artifact:\n  backend: s3\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad format", "log:\n  format: xml\n"},
		{"zero attempts", "artifact:\n  retry:\n    max_attempts: 0\n"},
		{"empty snapshot dir", "snapshot_dir: \"\"\n"},
		{"malformed", "snapshot_dir: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"snapshot_dir": "/snap",
		"artifact": {"backend": "memory", "retry": {"max_attempts": 2, "initial_interval": 0.5}},
		"log": {"level": "warn"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "/snap", cfg.SnapshotDir)
	assert.Equal(t, BackendMemory, cfg.Artifact.Backend)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.Artifact.Retry.InitialInterval)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = FromJSON([]byte(`{"unknown": 1}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"artifact": {"retry": {"max_interval": true}}}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	yamlPath := filepath.Join(tmpDir, "registry.YAML")
	require.NoError(t, os.WriteFile(yamlPath, []byte("snapshot_dir: /a\n"), 0o644))
	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "/a", cfg.SnapshotDir)

	jsonPath := filepath.Join(tmpDir, "registry.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"snapshot_dir": "/b"}`), 0o644))
	cfg, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "/b", cfg.SnapshotDir)

	txtPath := filepath.Join(tmpDir, "registry.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = Load(txtPath)
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = Load(filepath.Join(tmpDir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestOpenArtifactStore(t *testing.T) {
	ctx := context.Background()

	t.Run("dir", func(t *testing.T) {
		cfg := Default()
		cfg.Artifact.LibDir = filepath.Join(t.TempDir(), "lib")

		store, err := cfg.OpenArtifactStore(nil)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &artifact.DirStore{}, store)
		require.NoError(t, store.Write(ctx, "sum.jar", []byte("x")))
	})

	t.Run("sqlite with retry", func(t *testing.T) {
		cfg := Default()
		cfg.Artifact.Backend = BackendSQLite
		cfg.Artifact.SQLitePath = filepath.Join(t.TempDir(), "packages.db")
		cfg.Artifact.Retry.MaxAttempts = 3

		store, err := cfg.OpenArtifactStore(nil)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &artifact.RetryStore{}, store)
		require.NoError(t, store.Write(ctx, "sum.jar", []byte("x")))
	})

	t.Run("memory", func(t *testing.T) {
		cfg := Default()
		cfg.Artifact.Backend = BackendMemory

		store, err := cfg.OpenArtifactStore(nil)
		require.NoError(t, err)
		assert.IsType(t, &artifact.MemoryStore{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := Default()
		cfg.Artifact.Backend = "tape"

		_, err := cfg.OpenArtifactStore(nil)
		assert.Error(t, err)
	})
}

func TestRegistryOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.RegistryOptions(nil), 2)

	cfg.Metrics = true
	cfg.Tracing = true
	assert.Len(t, cfg.RegistryOptions(nil), 4)
}

func TestDurationMarshal(t *testing.T) {
	d := Duration(1500 * time.Millisecond)

	data, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(data))

	v, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", v)
}

// Package config loads function registry settings from YAML or JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/funcreg/pkg/funcreg"
	"github.com/randalmurphal/funcreg/pkg/funcreg/artifact"
	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
)

// Artifact backends.
const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds registry settings.
type Config struct {
	// SnapshotDir is the directory holding the recovery snapshot.
	SnapshotDir string `yaml:"snapshot_dir" json:"snapshot_dir"`

	// VerifyChecksums makes Register hash uploaded bytes.
	VerifyChecksums bool `yaml:"verify_checksums" json:"verify_checksums"`

	Artifact ArtifactConfig `yaml:"artifact" json:"artifact"`
	Log      LogConfig      `yaml:"log" json:"log"`

	// Metrics enables OpenTelemetry metrics via the global meter provider.
	Metrics bool `yaml:"metrics" json:"metrics"`

	// Tracing enables OpenTelemetry spans via the global tracer provider.
	Tracing bool `yaml:"tracing" json:"tracing"`
}

// ArtifactConfig selects and configures the artifact store.
type ArtifactConfig struct {
	Backend    string      `yaml:"backend" json:"backend"`
	LibDir     string      `yaml:"lib_dir" json:"lib_dir"`
	TempDir    string      `yaml:"temp_dir" json:"temp_dir"`
	SQLitePath string      `yaml:"sqlite_path" json:"sqlite_path"`
	Retry      RetryConfig `yaml:"retry" json:"retry"`
}

// RetryConfig configures artifact write retries. MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts     int      `yaml:"max_attempts" json:"max_attempts"`
	InitialInterval Duration `yaml:"initial_interval" json:"initial_interval"`
	MaxInterval     Duration `yaml:"max_interval" json:"max_interval"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Format is text or json.
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when a file omits a setting.
func Default() Config {
	return Config{
		SnapshotDir: "data/snapshot",
		Artifact: ArtifactConfig{
			Backend:    BackendDir,
			LibDir:     "data/lib",
			SQLitePath: "data/packages.db",
			Retry: RetryConfig{
				MaxAttempts:     1,
				InitialInterval: Duration(artifact.DefaultRetry.InitialInterval),
				MaxInterval:     Duration(artifact.DefaultRetry.MaxInterval),
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML over the defaults and validates the result.
// Unknown keys are rejected.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromJSON parses JSON over the defaults and validates the result.
// Unknown keys are rejected.
func FromJSON(data []byte) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.SnapshotDir == "" {
		errs = append(errs, errors.New("snapshot_dir required"))
	}
	switch c.Artifact.Backend {
	case BackendDir:
		if c.Artifact.LibDir == "" {
			errs = append(errs, errors.New("artifact.lib_dir required for dir backend"))
		}
	case BackendSQLite:
		if c.Artifact.SQLitePath == "" {
			errs = append(errs, errors.New("artifact.sqlite_path required for sqlite backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown artifact.backend %q", c.Artifact.Backend))
	}
	if c.Artifact.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("artifact.retry.max_attempts must be at least 1"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds a slog logger writing to w with the configured level and format.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OpenArtifactStore constructs the configured artifact store, wrapped in a
// retrying store when more than one attempt is configured.
func (c Config) OpenArtifactStore(logger *slog.Logger) (artifact.Store, error) {
	var (
		store artifact.Store
		err   error
	)
	switch c.Artifact.Backend {
	case BackendDir:
		store, err = artifact.NewDirStore(c.Artifact.LibDir, c.Artifact.TempDir)
	case BackendSQLite:
		store, err = artifact.NewSQLiteStore(c.Artifact.SQLitePath)
	case BackendMemory:
		store = artifact.NewMemoryStore()
	default:
		err = fmt.Errorf("unknown artifact backend %q", c.Artifact.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	if c.Artifact.Retry.MaxAttempts > 1 {
		store = artifact.NewRetryStore(store, artifact.RetryConfig{
			MaxAttempts:     c.Artifact.Retry.MaxAttempts,
			InitialInterval: time.Duration(c.Artifact.Retry.InitialInterval),
			MaxInterval:     time.Duration(c.Artifact.Retry.MaxInterval),
		}, logger)
	}
	return store, nil
}

// RegistryOptions returns the funcreg options this configuration implies.
func (c Config) RegistryOptions(logger *slog.Logger) []funcreg.Option {
	opts := []funcreg.Option{
		funcreg.WithLogger(logger),
		funcreg.WithChecksumVerification(c.VerifyChecksums),
	}
	if c.Metrics {
		opts = append(opts, funcreg.WithMetrics(observability.NewMetricsRecorder()))
	}
	if c.Tracing {
		opts = append(opts, funcreg.WithSpanManager(observability.NewSpanManager()))
	}
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log.level %q", s)
	}
	return level, nil
}

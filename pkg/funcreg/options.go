package funcreg

import (
	"log/slog"

	"github.com/randalmurphal/funcreg/pkg/funcreg/observability"
)

// registryConfig holds the optional collaborators of a Registry.
type registryConfig struct {
	logger          *slog.Logger
	metrics         observability.MetricsRecorder
	spans           observability.SpanManager
	verifyChecksums bool
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Registry.
type Option func(*registryConfig)

// WithLogger sets the structured logger. Default: slog.Default().
// Pass nil to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *registryConfig) {
		c.logger = logger
	}
}

// WithMetrics enables metrics recording.
//
// Example:
//
//	reg := funcreg.New(store, funcreg.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *registryConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager enables tracing of registry operations.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *registryConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithChecksumVerification makes Register hash uploaded bytes and reject
// them when they do not match the asserted checksum. Off by default: the
// checksum is normally computed and trusted upstream.
func WithChecksumVerification(enabled bool) Option {
	return func(c *registryConfig) {
		c.verifyChecksums = enabled
	}
}

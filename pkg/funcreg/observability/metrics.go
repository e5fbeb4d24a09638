package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records registry metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRegistration records a registration attempt with its outcome code.
	RecordRegistration(ctx context.Context, outcome string, duration time.Duration)

	// RecordUpload records package bytes written to the artifact store.
	RecordUpload(ctx context.Context, packageName string, sizeBytes int64)

	// RecordUnregistration records an unregister call.
	RecordUnregistration(ctx context.Context, found bool)

	// RecordSnapshot records a snapshot take or load.
	RecordSnapshot(ctx context.Context, op string, sizeBytes int64, err error)

	// RecordLockWait records how long a caller waited for the registry lock.
	RecordLockWait(ctx context.Context, wait time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	registrations    metric.Int64Counter
	registerLatency  metric.Float64Histogram
	uploadSize       metric.Int64Histogram
	unregistrations  metric.Int64Counter
	snapshotSize     metric.Int64Histogram
	snapshotFailures metric.Int64Counter
	lockWait         metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("funcreg")

	registrations, err := meter.Int64Counter("funcreg.registrations",
		metric.WithDescription("Number of registration attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	registerLatency, err := meter.Float64Histogram("funcreg.register.latency_ms",
		metric.WithDescription("Registration latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	uploadSize, err := meter.Int64Histogram("funcreg.upload.size_bytes",
		metric.WithDescription("Package bytes written to the artifact store"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	unregistrations, err := meter.Int64Counter("funcreg.unregistrations",
		metric.WithDescription("Number of unregister calls"),
	)
	if err != nil {
		return nil, err
	}

	snapshotSize, err := meter.Int64Histogram("funcreg.snapshot.size_bytes",
		metric.WithDescription("Snapshot file size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	snapshotFailures, err := meter.Int64Counter("funcreg.snapshot.failures",
		metric.WithDescription("Number of failed snapshot operations"),
	)
	if err != nil {
		return nil, err
	}

	lockWait, err := meter.Float64Histogram("funcreg.lock.wait_ms",
		metric.WithDescription("Time spent waiting for the registry lock"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		registrations:    registrations,
		registerLatency:  registerLatency,
		uploadSize:       uploadSize,
		unregistrations:  unregistrations,
		snapshotSize:     snapshotSize,
		snapshotFailures: snapshotFailures,
		lockWait:         lockWait,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRegistration records a registration attempt.
func (m *otelMetrics) RecordRegistration(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.registrations.Add(ctx, 1, attrs)
	m.registerLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordUpload records an artifact write.
func (m *otelMetrics) RecordUpload(ctx context.Context, packageName string, sizeBytes int64) {
	m.uploadSize.Record(ctx, sizeBytes,
		metric.WithAttributes(attribute.String("package", packageName)))
}

// RecordUnregistration records an unregister call.
func (m *otelMetrics) RecordUnregistration(ctx context.Context, found bool) {
	m.unregistrations.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("found", found)))
}

// RecordSnapshot records a snapshot operation.
func (m *otelMetrics) RecordSnapshot(ctx context.Context, op string, sizeBytes int64, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))
	if err != nil {
		m.snapshotFailures.Add(ctx, 1, attrs)
		return
	}
	m.snapshotSize.Record(ctx, sizeBytes, attrs)
}

// RecordLockWait records lock wait time.
func (m *otelMetrics) RecordLockWait(ctx context.Context, wait time.Duration) {
	m.lockWait.Record(ctx, float64(wait.Milliseconds()))
}

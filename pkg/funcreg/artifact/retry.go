package artifact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenk/backoff"
)

// RetryConfig configures write retries.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialInterval is the backoff before the first retry.
	InitialInterval time.Duration

	// MaxInterval caps the backoff between attempts.
	MaxInterval time.Duration
}

// DefaultRetry is the standard retry configuration.
var DefaultRetry = RetryConfig{
	MaxAttempts:     3,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// RetryStore wraps a Store and retries failed writes with exponential backoff.
// Reads and deletes pass through unchanged.
type RetryStore struct {
	Store
	cfg    RetryConfig
	logger *slog.Logger
}

// NewRetryStore wraps inner. A nil logger disables retry logging.
func NewRetryStore(inner Store, cfg RetryConfig, logger *slog.Logger) *RetryStore {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryStore{Store: inner, cfg: cfg, logger: logger}
}

// Write implements Store.
func (r *RetryStore) Write(ctx context.Context, name string, data []byte) error {
	var permanent error
	attempts := 0
	op := func() error {
		attempts++
		err := r.Store.Write(ctx, name, data)
		if err != nil && !isRetryable(err) {
			// stop retrying; reported below
			permanent = err
			return nil
		}
		return err
	}

	err := backoff.RetryNotify(op, r.newBackOff(ctx), func(err error, wait time.Duration) {
		if r.logger != nil {
			r.logger.Warn("artifact write failed, retrying",
				slog.String("package", name),
				slog.Int("attempt", attempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
	})
	if permanent != nil {
		return permanent
	}
	return err
}

func (r *RetryStore) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if r.cfg.InitialInterval > 0 {
		exp.InitialInterval = r.cfg.InitialInterval
	}
	if r.cfg.MaxInterval > 0 {
		exp.MaxInterval = r.cfg.MaxInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.cfg.MaxAttempts-1)), ctx)
}

// isRetryable reports whether a write error might succeed on another attempt.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrStoreClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrCheckViolation       = "23514"
)

// Retry reasons reported in logs and metrics.
const (
	retryReasonConflict   = "conflict"
	retryReasonConnection = "connection"
)

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
	metrics         *metrics.Metrics
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries caps how many times a failed attempt is re-run.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) {
		if n >= 0 {
			r.maxRetries = n
		}
	}
}

// WithRetryMetrics counts retries per reason.
func WithRetryMetrics(m *metrics.Metrics) RetrierOption {
	return func(r *Retrier) {
		r.metrics = m
	}
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
// When retries run out the last error is marked with domain.ErrConflict or
// domain.ErrUnavailable so callers can tell transient failures apart.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		reason, ok := retryReason(err)
		if !ok {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		if r.metrics != nil {
			r.metrics.TxRetries.WithLabelValues(reason).Inc()
		}

		r.logger.Warn().
			Err(err).
			Str("reason", reason).
			Int("retry", retryCount).
			Msg("retryable database error, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	return classifyError(err)
}

// classifyError marks transient PostgreSQL failures with their domain class.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	switch reason, _ := retryReason(err); reason {
	case retryReasonConflict:
		if !errors.Is(err, domain.ErrConflict) {
			return errors.Mark(err, domain.ErrConflict)
		}
	case retryReasonConnection:
		if !errors.Is(err, domain.ErrUnavailable) {
			return errors.Mark(err, domain.ErrUnavailable)
		}
	}

	return err
}

func retryReason(err error) (string, bool) {
	if isRetryableError(err) {
		return retryReasonConflict, true
	}
	if isConnectionError(err) {
		return retryReasonConnection, true
	}
	return "", false
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}
	return false
}

// isConnectionError reports failures that happened before the server saw the
// statement, which makes re-running the whole transaction safe.
func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCheckViolation
}

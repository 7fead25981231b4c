package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/nomadhomes/bookingledger/internal/domain"
)

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// txRunner runs a unit of work in one transaction, under the retrier and a
// per-attempt deadline.
type txRunner struct {
	txManager TransactionManager
	retrier   Retrier
	timeout   time.Duration
}

func newTxRunner(txManager TransactionManager) txRunner {
	return txRunner{
		txManager: txManager,
		retrier:   noRetry{},
		timeout:   DefaultTransactionTimeout,
	}
}

func (r txRunner) run(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	return r.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		err := r.attempt(txCtx, fn)
		if err != nil && ctx.Err() == nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
			return errors.Mark(errors.Wrap(err, "transaction timed out"), domain.ErrUnavailable)
		}
		return err
	})
}

func (r txRunner) attempt(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	tx, err := r.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

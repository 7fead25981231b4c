package usecase

import (
	"context"
	"time"

	"github.com/nomadhomes/bookingledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	// AdjustBalance adds delta to the balance in a single guarded statement.
	// It fails with domain.ErrInsufficientFunds when the result would drop below
	// domain.MinPointsBalance and with domain.ErrAccountNotFound when no row exists.
	AdjustBalance(ctx context.Context, tx Transaction, id string, delta int64, at time.Time) (*domain.BalanceChange, error)
}

// ListingRepository defines data access for listings.
type ListingRepository interface {
	Create(ctx context.Context, tx Transaction, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Listing, error)
}

// AvailabilityRepository defines data access for listing availability windows.
type AvailabilityRepository interface {
	Create(ctx context.Context, window *domain.AvailabilityWindow) error
	ListByListing(ctx context.Context, listingID string) ([]*domain.AvailabilityWindow, error)
}

// BookingRepository defines data access for bookings.
type BookingRepository interface {
	Create(ctx context.Context, tx Transaction, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Booking, error)
	// Delete removes the booking and returns the deleted row.
	Delete(ctx context.Context, tx Transaction, id string) (*domain.Booking, error)
	UpdateSchedule(ctx context.Context, tx Transaction, booking *domain.Booking) error
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
}

// EntryRepository defines data access for points entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	FindDiscrepancies(ctx context.Context) ([]domain.Discrepancy, error)
	CountAccounts(ctx context.Context) (int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation while it fails with a retryable storage error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyPending is the value an IdempotencyStore holds for a key whose
// first request is still running.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not. A nil response
	// claims the key with IdempotencyPending.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete successfully.
	Release(ctx context.Context, key string) error
}

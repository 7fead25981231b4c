package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultListingCacheTTL is how long a listing stays in the read-through cache
	DefaultListingCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation labels used for metrics and logs.
const (
	opCreateBooking     = "create"
	opDeleteBooking     = "delete"
	opRescheduleBooking = "reschedule"
)

package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// BookingUseCase keeps bookings and account points balances consistent.
type BookingUseCase struct {
	tx               txRunner
	accountRepo      AccountRepository
	listingRepo      ListingRepository
	availabilityRepo AvailabilityRepository
	bookingRepo      BookingRepository
	entryRepo        EntryRepository
	outboxRepo       OutboxRepository
	idGen            IDGenerator
	metrics          *metrics.Metrics
}

// NewBookingUseCase creates a new BookingUseCase.
func NewBookingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	listingRepo ListingRepository,
	availabilityRepo AvailabilityRepository,
	bookingRepo BookingRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *BookingUseCase {
	return &BookingUseCase{
		tx:               newTxRunner(txManager),
		accountRepo:      accountRepo,
		listingRepo:      listingRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		entryRepo:        entryRepo,
		outboxRepo:       outboxRepo,
		idGen:            idGen,
		metrics:          metrics,
	}
}

// WithRetrier sets the retrier wrapping every ledger transaction.
func (uc *BookingUseCase) WithRetrier(retrier Retrier) *BookingUseCase {
	if retrier != nil {
		uc.tx.retrier = retrier
	}
	return uc
}

// WithTransactionTimeout bounds each transaction attempt.
func (uc *BookingUseCase) WithTransactionTimeout(timeout time.Duration) *BookingUseCase {
	if timeout > 0 {
		uc.tx.timeout = timeout
	}
	return uc
}

// CreateBookingInput represents input for creating a booking.
// A nil TotalPrice books at the quoted price.
type CreateBookingInput struct {
	CheckIn    time.Time
	CheckOut   time.Time
	TotalPrice *int64
	AccountID  string
	ListingID  string
}

// UpdateBookingInput is a partial update of a booking. Only dates may change.
type UpdateBookingInput struct {
	CheckIn    *time.Time
	CheckOut   *time.Time
	TotalPrice *int64
}

// BookingResult is a booking together with its account's balance after the operation.
type BookingResult struct {
	Booking *domain.Booking
	Balance int64
}

// CreateBooking debits the booking price and records the booking atomically.
func (uc *BookingUseCase) CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error) {
	start := time.Now()

	result, err := uc.createBooking(ctx, input)
	uc.observe(opCreateBooking, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BookingsCreated.Inc()
		uc.metrics.PointsMoved.WithLabelValues("debit").Add(float64(result.Booking.TotalPrice))
	}

	return result, nil
}

func (uc *BookingUseCase) createBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error) {
	// 1. Validate inputs before touching storage
	if err := domain.ValidateStay(input.CheckIn, input.CheckOut); err != nil {
		return nil, err
	}
	if input.TotalPrice != nil && *input.TotalPrice < 0 {
		return nil, domain.ErrNegativePrice
	}

	// 2. Price the stay from the listing
	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}

	price, err := domain.QuotePrice(listing, input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}
	if input.TotalPrice != nil && *input.TotalPrice != price {
		return nil, errors.Wrapf(domain.ErrPriceMismatch, "expected %d, got %d", price, *input.TotalPrice)
	}

	if err := uc.checkAvailability(ctx, listing.ID, input.CheckIn, input.CheckOut); err != nil {
		return nil, err
	}

	// 3. Guarded debit, booking, entry and event in one transaction
	var result *BookingResult
	err = uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		change, err := uc.accountRepo.AdjustBalance(ctx, tx, input.AccountID, -price, now)
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			ID:         uc.idGen.Generate(),
			ListingID:  listing.ID,
			AccountID:  input.AccountID,
			CheckIn:    input.CheckIn.UTC(),
			CheckOut:   input.CheckOut.UTC(),
			TotalPrice: price,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uc.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		if err := uc.record(ctx, tx, domain.EntryKindBookingDebit, domain.EventTypeBookingCreated, booking, change, now); err != nil {
			return err
		}

		result = &BookingResult{Booking: booking, Balance: change.CurrentBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteBooking removes a booking and credits its price back exactly once.
func (uc *BookingUseCase) DeleteBooking(ctx context.Context, id string) (*BookingResult, error) {
	start := time.Now()

	var result *BookingResult
	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		// The delete locks the booking row; a concurrent delete finds nothing.
		booking, err := uc.bookingRepo.Delete(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		change, err := uc.accountRepo.AdjustBalance(ctx, tx, booking.AccountID, booking.TotalPrice, now)
		if err != nil {
			return err
		}

		if err := uc.record(ctx, tx, domain.EntryKindBookingCredit, domain.EventTypeBookingDeleted, booking, change, now); err != nil {
			return err
		}

		result = &BookingResult{Booking: booking, Balance: change.CurrentBalance}
		return nil
	})
	uc.observe(opDeleteBooking, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BookingsDeleted.Inc()
		uc.metrics.PointsMoved.WithLabelValues("credit").Add(float64(result.Booking.TotalPrice))
	}

	return result, nil
}

// UpdateBooking reschedules a booking. The new dates are re-quoted and the price
// difference is settled against the account in the same transaction.
func (uc *BookingUseCase) UpdateBooking(ctx context.Context, id string, input UpdateBookingInput) (*BookingResult, error) {
	start := time.Now()

	result, err := uc.updateBooking(ctx, id, input)
	uc.observe(opRescheduleBooking, start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BookingsRescheduled.Inc()
	}

	return result, nil
}

func (uc *BookingUseCase) updateBooking(ctx context.Context, id string, input UpdateBookingInput) (*BookingResult, error) {
	if input.TotalPrice != nil {
		return nil, domain.ErrPriceImmutable
	}

	var result *BookingResult
	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		// Booking row first, then the account row: same order as DeleteBooking.
		booking, err := uc.bookingRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		checkIn, checkOut := booking.CheckIn, booking.CheckOut
		if input.CheckIn != nil {
			checkIn = input.CheckIn.UTC()
		}
		if input.CheckOut != nil {
			checkOut = input.CheckOut.UTC()
		}
		if err := domain.ValidateStay(checkIn, checkOut); err != nil {
			return err
		}

		listing, err := uc.listingRepo.GetByID(ctx, booking.ListingID)
		if err != nil {
			return err
		}
		if err := uc.checkAvailability(ctx, listing.ID, checkIn, checkOut); err != nil {
			return err
		}

		now := time.Now().UTC()
		price, err := domain.QuotePrice(listing, checkIn, checkOut)
		if err != nil {
			return err
		}
		delta := booking.TotalPrice - price

		booking.CheckIn = checkIn
		booking.CheckOut = checkOut
		booking.TotalPrice = price
		booking.UpdatedAt = now

		if delta == 0 {
			if err := uc.bookingRepo.UpdateSchedule(ctx, tx, booking); err != nil {
				return err
			}
			account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, booking.AccountID)
			if err != nil {
				return err
			}
			result = &BookingResult{Booking: booking, Balance: account.PointsBalance}
			return nil
		}

		change, err := uc.accountRepo.AdjustBalance(ctx, tx, booking.AccountID, delta, now)
		if err != nil {
			return err
		}
		if err := uc.bookingRepo.UpdateSchedule(ctx, tx, booking); err != nil {
			return err
		}
		if err := uc.record(ctx, tx, domain.EntryKindBookingAdjustment, domain.EventTypeBookingRescheduled, booking, change, now); err != nil {
			return err
		}

		result = &BookingResult{Booking: booking, Balance: change.CurrentBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetBooking retrieves a booking by ID.
func (uc *BookingUseCase) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return uc.bookingRepo.GetByID(ctx, id)
}

// ListBookings lists bookings matching the filter with pagination.
func (uc *BookingUseCase) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.bookingRepo.List(ctx, filter)
}

// QuoteBooking returns the price CreateBooking would charge for the stay.
func (uc *BookingUseCase) QuoteBooking(ctx context.Context, listingID string, checkIn, checkOut time.Time) (int64, error) {
	if err := domain.ValidateStay(checkIn, checkOut); err != nil {
		return 0, err
	}

	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return 0, err
	}

	return domain.QuotePrice(listing, checkIn, checkOut)
}

func (uc *BookingUseCase) checkAvailability(ctx context.Context, listingID string, checkIn, checkOut time.Time) error {
	windows, err := uc.availabilityRepo.ListByListing(ctx, listingID)
	if err != nil {
		return err
	}
	if !domain.StayAvailable(windows, checkIn, checkOut) {
		return domain.ErrDatesUnavailable
	}
	return nil
}

// record writes the journal entry and outbox event for a balance change.
func (uc *BookingUseCase) record(
	ctx context.Context,
	tx Transaction,
	kind domain.EntryKind,
	eventType string,
	booking *domain.Booking,
	change *domain.BalanceChange,
	now time.Time,
) error {
	bookingID := booking.ID
	entry := domain.NewEntry(uc.idGen.Generate(), kind, &bookingID, change, now)
	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return err
	}

	event := domain.NewBookingEvent(uc.idGen.Generate(), eventType, booking, change.CurrentBalance, now)
	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *BookingUseCase) observe(operation string, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.BookingDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.BookingErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, domain.ErrPriceMismatch), errors.Is(err, domain.ErrPriceImmutable):
		return "invalid_price"
	case errors.Is(err, domain.ErrDatesUnavailable):
		return "dates_unavailable"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

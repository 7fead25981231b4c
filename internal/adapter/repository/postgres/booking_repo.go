package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres/generated"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// BookingRepository implements usecase.BookingRepository.
type BookingRepository struct {
	queries *generated.Queries
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db generated.DBTX) *BookingRepository {
	return &BookingRepository{queries: generated.New(db)}
}

// Create inserts a booking inside tx.
func (r *BookingRepository) Create(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateBooking(ctx, generated.CreateBookingParams{
		ID:         booking.ID,
		ListingID:  booking.ListingID,
		AccountID:  booking.AccountID,
		CheckIn:    timeToPgTimestamptz(booking.CheckIn),
		CheckOut:   timeToPgTimestamptz(booking.CheckOut),
		TotalPrice: booking.TotalPrice,
		CreatedAt:  timeToPgTimestamptz(booking.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(booking.UpdatedAt),
	})
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row, err := r.queries.GetBookingByID(ctx, id)
	return bookingOrNotFound(row, err)
}

// GetByIDForUpdate retrieves a booking and locks its row until tx ends.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Booking, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetBookingByIDForUpdate(ctx, id)
	return bookingOrNotFound(row, err)
}

// Delete removes a booking and returns the removed row. Of two concurrent
// deletes only one receives the row; the other gets ErrBookingNotFound.
func (r *BookingRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) (*domain.Booking, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.DeleteBooking(ctx, id)
	return bookingOrNotFound(row, err)
}

// UpdateSchedule rewrites dates and price of an existing booking.
func (r *BookingRepository) UpdateSchedule(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateBookingSchedule(ctx, generated.UpdateBookingScheduleParams{
		ID:         booking.ID,
		CheckIn:    timeToPgTimestamptz(booking.CheckIn),
		CheckOut:   timeToPgTimestamptz(booking.CheckOut),
		TotalPrice: booking.TotalPrice,
		UpdatedAt:  timeToPgTimestamptz(booking.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrBookingNotFound
	}

	return nil
}

// List lists bookings matching filter.
func (r *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	rows, err := r.queries.ListBookings(ctx, generated.ListBookingsParams{
		AccountID:   filter.AccountID,
		ListingID:   filter.ListingID,
		LimitCount:  int32(filter.Limit),
		OffsetCount: int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, rowToBooking(row))
	}

	return bookings, nil
}

func bookingOrNotFound(row generated.Booking, err error) (*domain.Booking, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	return rowToBooking(row), nil
}

func rowToBooking(row generated.Booking) *domain.Booking {
	return &domain.Booking{
		ID:         row.ID,
		ListingID:  row.ListingID,
		AccountID:  row.AccountID,
		CheckIn:    row.CheckIn.Time,
		CheckOut:   row.CheckOut.Time,
		TotalPrice: row.TotalPrice,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

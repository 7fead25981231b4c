package integration

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
	"github.com/nomadhomes/bookingledger/tests/testutil"
)

var june1 = time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(db)
	db.TruncateAll(ctx)

	guest := app.CreateAccount(ctx, 100)
	listing := app.CreateListing(ctx, 30)
	checkIn, checkOut := testutil.Stay(june1, 2)

	t.Run("create debits the quoted price", func(t *testing.T) {
		result, err := app.Bookings.CreateBooking(ctx, usecase.CreateBookingInput{
			AccountID: guest.ID,
			ListingID: listing.ID,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(60), result.Booking.TotalPrice)
		assert.Equal(t, int64(40), result.Balance)
		assert.Equal(t, int64(40), app.Balance(ctx, guest.ID))

		t.Run("reschedule settles the difference", func(t *testing.T) {
			shorter := checkIn.AddDate(0, 0, 1)
			updated, err := app.Bookings.UpdateBooking(ctx, result.Booking.ID, usecase.UpdateBookingInput{CheckOut: &shorter})
			require.NoError(t, err)
			assert.Equal(t, int64(30), updated.Booking.TotalPrice)
			assert.Equal(t, int64(70), updated.Balance)

			longer := checkIn.AddDate(0, 0, 4)
			_, err = app.Bookings.UpdateBooking(ctx, result.Booking.ID, usecase.UpdateBookingInput{CheckOut: &longer})
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			assert.Equal(t, int64(70), app.Balance(ctx, guest.ID))
		})

		t.Run("price cannot be edited", func(t *testing.T) {
			price := int64(1)
			_, err := app.Bookings.UpdateBooking(ctx, result.Booking.ID, usecase.UpdateBookingInput{TotalPrice: &price})
			assert.ErrorIs(t, err, domain.ErrPriceImmutable)
		})

		t.Run("delete refunds exactly once", func(t *testing.T) {
			deleted, err := app.Bookings.DeleteBooking(ctx, result.Booking.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(100), deleted.Balance)

			_, err = app.Bookings.DeleteBooking(ctx, result.Booking.ID)
			assert.ErrorIs(t, err, domain.ErrBookingNotFound)
			assert.Equal(t, int64(100), app.Balance(ctx, guest.ID))
		})
	})

	t.Run("rejected bookings leave the balance untouched", func(t *testing.T) {
		poor := app.CreateAccount(ctx, 50)
		wrong := int64(59)

		tests := []struct {
			name  string
			input usecase.CreateBookingInput
			want  error
		}{
			{
				name:  "insufficient points",
				input: usecase.CreateBookingInput{AccountID: poor.ID, ListingID: listing.ID, CheckIn: checkIn, CheckOut: checkOut},
				want:  domain.ErrInsufficientFunds,
			},
			{
				name:  "price mismatch",
				input: usecase.CreateBookingInput{AccountID: poor.ID, ListingID: listing.ID, CheckIn: checkIn, CheckOut: checkOut, TotalPrice: &wrong},
				want:  domain.ErrPriceMismatch,
			},
			{
				name:  "reversed range",
				input: usecase.CreateBookingInput{AccountID: poor.ID, ListingID: listing.ID, CheckIn: checkOut, CheckOut: checkIn},
				want:  domain.ErrInvalidRange,
			},
			{
				name:  "unknown account",
				input: usecase.CreateBookingInput{AccountID: "missing", ListingID: listing.ID, CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1)},
				want:  domain.ErrAccountNotFound,
			},
			{
				name:  "unknown listing",
				input: usecase.CreateBookingInput{AccountID: poor.ID, ListingID: "missing", CheckIn: checkIn, CheckOut: checkOut},
				want:  domain.ErrListingNotFound,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := app.Bookings.CreateBooking(ctx, tt.input)
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
				assert.Equal(t, int64(50), app.Balance(ctx, poor.ID))
			})
		}
	})

	t.Run("availability windows restrict dates", func(t *testing.T) {
		windowed := app.CreateListing(ctx, 10)
		_, err := app.Listings.AddAvailability(ctx, windowed.ID, june1, june1.AddDate(0, 0, 7))
		require.NoError(t, err)

		_, err = app.Bookings.CreateBooking(ctx, usecase.CreateBookingInput{
			AccountID: guest.ID,
			ListingID: windowed.ID,
			CheckIn:   june1.AddDate(0, 0, 5),
			CheckOut:  june1.AddDate(0, 0, 9),
		})
		assert.ErrorIs(t, err, domain.ErrDatesUnavailable)

		result, err := app.Bookings.CreateBooking(ctx, usecase.CreateBookingInput{
			AccountID: guest.ID,
			ListingID: windowed.ID,
			CheckIn:   june1,
			CheckOut:  june1.AddDate(0, 0, 7),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(70), result.Booking.TotalPrice)
	})
}

func TestEntriesChainPerAccount(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(db)
	db.TruncateAll(ctx)

	guest := app.CreateAccount(ctx, 100)
	listing := app.CreateListing(ctx, 20)

	result, err := app.Bookings.CreateBooking(ctx, usecase.CreateBookingInput{
		AccountID: guest.ID,
		ListingID: listing.ID,
		CheckIn:   june1,
		CheckOut:  june1.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	_, err = app.Accounts.GrantPoints(ctx, guest.ID, 5)
	require.NoError(t, err)
	_, err = app.Bookings.DeleteBooking(ctx, result.Booking.ID)
	require.NoError(t, err)

	entries, err := app.Accounts.ListEntries(ctx, guest.ID, 100, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var sum int64
	for _, e := range entries {
		assert.Equal(t, e.PreviousBalance+e.Amount, e.CurrentBalance)
		sum += e.Amount
	}
	assert.Equal(t, int64(105), sum)
	assert.Equal(t, int64(105), app.Balance(ctx, guest.ID))
}

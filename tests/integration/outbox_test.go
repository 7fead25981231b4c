package integration

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/eventpublisher"
	"github.com/nomadhomes/bookingledger/internal/usecase"
	"github.com/nomadhomes/bookingledger/tests/testutil"
)

func TestOutboxRecordsBookingEvents(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	app := testutil.NewApp(db)
	db.TruncateAll(ctx)

	guest := app.CreateAccount(ctx, 100)
	listing := app.CreateListing(ctx, 30)
	checkIn, checkOut := testutil.Stay(june1, 2)

	result, err := app.Bookings.CreateBooking(ctx, usecase.CreateBookingInput{
		AccountID: guest.ID,
		ListingID: listing.ID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	require.NoError(t, err)
	_, err = app.Bookings.DeleteBooking(ctx, result.Booking.ID)
	require.NoError(t, err)

	// A rejected booking must not leave an event behind.
	_, err = app.Bookings.CreateBooking(ctx, usecase.CreateBookingInput{
		AccountID: guest.ID,
		ListingID: listing.ID,
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, 10),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	events, err := app.OutboxRepo.GetUnpublished(ctx, 100)
	require.NoError(t, err)

	var bookingEvents []string
	for _, e := range events {
		if e.AggregateType == domain.AggregateTypeBooking {
			assert.Equal(t, result.Booking.ID, e.AggregateID)
			bookingEvents = append(bookingEvents, e.EventType)
		}
	}
	assert.Equal(t, []string{domain.EventTypeBookingCreated, domain.EventTypeBookingDeleted}, bookingEvents)

	t.Run("publisher drains the outbox into a redis stream", func(t *testing.T) {
		s := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: s.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		ep := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: app.OutboxRepo,
			Publisher:  eventpublisher.NewRedisStreamPublisher(client, "bookings:events", 0),
			Logger:     zerolog.Nop(),
			BatchSize:  100,
			Interval:   50 * time.Millisecond,
		})

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- ep.Start(runCtx) }()

		require.Eventually(t, func() bool {
			pending, err := app.OutboxRepo.GetUnpublished(ctx, 100)
			return err == nil && len(pending) == 0
		}, 5*time.Second, 50*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)

		entries, err := s.Stream("bookings:events")
		require.NoError(t, err)
		assert.Len(t, entries, len(events))
	})
}

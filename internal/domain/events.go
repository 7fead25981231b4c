package domain

import "time"

// Event types
const (
	EventTypeBookingCreated     = "booking.created"
	EventTypeBookingDeleted     = "booking.deleted"
	EventTypeBookingRescheduled = "booking.rescheduled"
	EventTypePointsGranted      = "points.granted"
	EventTypeAccountCreated     = "account.created"
	EventTypeListingCreated     = "listing.created"
)

// Aggregate types
const (
	AggregateTypeBooking = "booking"
	AggregateTypeAccount = "account"
	AggregateTypeListing = "listing"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewBookingEvent builds the outbox event for a booking mutation.
func NewBookingEvent(id, eventType string, booking *Booking, balance int64, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   booking.ID,
		AggregateType: AggregateTypeBooking,
		EventType:     eventType,
		Payload: map[string]any{
			"booking_id":  booking.ID,
			"account_id":  booking.AccountID,
			"listing_id":  booking.ListingID,
			"check_in":    booking.CheckIn.Format(time.RFC3339),
			"check_out":   booking.CheckOut.Format(time.RFC3339),
			"total_price": booking.TotalPrice,
			"balance":     balance,
		},
		CreatedAt: at,
	}
}

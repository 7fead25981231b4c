package domain

import (
	"math"
	"time"
)

// Booking is a reservation of a listing by an account at a committed price.
type Booking struct {
	ID         string
	ListingID  string
	AccountID  string
	CheckIn    time.Time
	CheckOut   time.Time
	TotalPrice int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Nights returns the whole days between check-in and check-out.
func (b *Booking) Nights() int64 {
	return Nights(b.CheckIn, b.CheckOut)
}

// Nights returns the number of whole 24h days in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int64 {
	if !checkOut.After(checkIn) {
		return 0
	}
	return int64(checkOut.Sub(checkIn) / (24 * time.Hour))
}

// ValidateStay checks the stay range.
func ValidateStay(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return ErrInvalidRange
	}
	if !checkOut.After(checkIn) {
		return ErrInvalidRange
	}
	return nil
}

// QuotePrice returns nights x nightly price for the listing.
// The product must fit in int64.
func QuotePrice(listing *Listing, checkIn, checkOut time.Time) (int64, error) {
	nights := Nights(checkIn, checkOut)
	if nights != 0 && listing.NightlyPrice > math.MaxInt64/nights {
		return 0, ErrPriceOverflow
	}
	return nights * listing.NightlyPrice, nil
}

// BookingFilter narrows ListBookings. Empty fields match everything.
type BookingFilter struct {
	AccountID string
	ListingID string
	Limit     int
	Offset    int
}

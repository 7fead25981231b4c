package domain

import "time"

// Listing is a rentable home owned by an account.
type Listing struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	NightlyPrice int64     `json:"nightly_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate validates listing fields.
func (l *Listing) Validate() error {
	if l.NightlyPrice <= 0 {
		return ErrInvalidNightlyPrice
	}
	return nil
}

// AvailabilityWindow is a date range during which a listing may be booked.
type AvailabilityWindow struct {
	ID        string
	ListingID string
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
}

// Contains reports whether [checkIn, checkOut) lies inside the window.
func (w *AvailabilityWindow) Contains(checkIn, checkOut time.Time) bool {
	return !checkIn.Before(w.StartsAt) && !checkOut.After(w.EndsAt)
}

// StayAvailable reports whether a stay is bookable given the listing's windows.
// A listing without windows has no date restriction.
func StayAvailable(windows []*AvailabilityWindow, checkIn, checkOut time.Time) bool {
	if len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if w.Contains(checkIn, checkOut) {
			return true
		}
	}
	return false
}

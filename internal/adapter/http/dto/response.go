package dto

import (
	"time"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Plan          string    `json:"plan"`
	PointsBalance int64     `json:"points_balance"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          string(a.Role),
		Plan:          string(a.Plan),
		PointsBalance: a.PointsBalance,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListingResponse represents a listing in API responses.
type ListingResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	NightlyPrice int64     `json:"nightly_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListingFromDomain converts domain listing to response.
func ListingFromDomain(l *domain.Listing) *ListingResponse {
	return &ListingResponse{
		ID:           l.ID,
		OwnerID:      l.OwnerID,
		Title:        l.Title,
		NightlyPrice: l.NightlyPrice,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// ListingsFromDomain converts domain listings to responses.
func ListingsFromDomain(listings []*domain.Listing) []*ListingResponse {
	result := make([]*ListingResponse, len(listings))
	for i, l := range listings {
		result[i] = ListingFromDomain(l)
	}
	return result
}

// WindowResponse is an availability window.
type WindowResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	CreatedAt time.Time `json:"created_at"`
}

// WindowsFromDomain converts availability windows to responses.
func WindowsFromDomain(windows []*domain.AvailabilityWindow) []*WindowResponse {
	result := make([]*WindowResponse, len(windows))
	for i, w := range windows {
		result[i] = WindowFromDomain(w)
	}
	return result
}

// WindowFromDomain converts one availability window to response.
func WindowFromDomain(w *domain.AvailabilityWindow) *WindowResponse {
	return &WindowResponse{
		ID:        w.ID,
		ListingID: w.ListingID,
		StartsAt:  w.StartsAt,
		EndsAt:    w.EndsAt,
		CreatedAt: w.CreatedAt,
	}
}

// QuoteResponse is the price of a stay.
type QuoteResponse struct {
	ListingID  string    `json:"listing_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Nights     int64     `json:"nights"`
	TotalPrice int64     `json:"total_price"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	AccountID  string    `json:"account_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Nights     int64     `json:"nights"`
	TotalPrice int64     `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookingFromDomain converts domain booking to response.
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:         b.ID,
		ListingID:  b.ListingID,
		AccountID:  b.AccountID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		Nights:     b.Nights(),
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// BookingsFromDomain converts domain bookings to responses.
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	result := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = BookingFromDomain(b)
	}
	return result
}

// BookingResultResponse is a booking with the account balance after the operation.
type BookingResultResponse struct {
	Booking *BookingResponse `json:"booking"`
	Balance int64            `json:"balance"`
}

// BookingResultFromUseCase converts a ledger result to response.
func BookingResultFromUseCase(r *usecase.BookingResult) *BookingResultResponse {
	return &BookingResultResponse{
		Booking: BookingFromDomain(r.Booking),
		Balance: r.Balance,
	}
}

// EntryResponse represents a points entry in API responses.
type EntryResponse struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	BookingID       *string   `json:"booking_id,omitempty"`
	Kind            string    `json:"kind"`
	Amount          int64     `json:"amount"`
	PreviousBalance int64     `json:"previous_balance"`
	CurrentBalance  int64     `json:"current_balance"`
	AccountVersion  int64     `json:"account_version"`
	CreatedAt       time.Time `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		BookingID:       e.BookingID,
		Kind:            string(e.Kind),
		Amount:          e.Amount,
		PreviousBalance: e.PreviousBalance,
		CurrentBalance:  e.CurrentBalance,
		AccountVersion:  e.AccountVersion,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// DiscrepancyResponse describes one inconsistent account.
type DiscrepancyResponse struct {
	AccountID          string `json:"account_id"`
	RecordedBalance    int64  `json:"recorded_balance"`
	JournalBalance     int64  `json:"journal_balance"`
	BookingEntriesNet  int64  `json:"booking_entries_net"`
	ActiveBookingTotal int64  `json:"active_booking_total"`
}

// ConsistencyResponse is the result of a ledger consistency check.
type ConsistencyResponse struct {
	Status          string                 `json:"status"`
	Consistent      bool                   `json:"consistent"`
	CheckedAt       time.Time              `json:"checked_at"`
	AccountsChecked int64                  `json:"accounts_checked"`
	Discrepancies   []*DiscrepancyResponse `json:"discrepancies"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	resp := &ConsistencyResponse{
		Status:          "consistent",
		Consistent:      r.Consistent,
		CheckedAt:       r.CheckedAt,
		AccountsChecked: r.AccountsChecked,
		Discrepancies:   make([]*DiscrepancyResponse, len(r.Discrepancies)),
	}
	if !r.Consistent {
		resp.Status = "inconsistent"
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = &DiscrepancyResponse{
			AccountID:          d.AccountID,
			RecordedBalance:    d.RecordedBalance,
			JournalBalance:     d.JournalBalance,
			BookingEntriesNet:  d.BookingEntriesNet,
			ActiveBookingTotal: d.ActiveBookingTotal,
		}
	}
	return resp
}

// ListAccountsResponse is a page of accounts. Count is the page size.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Count    int64              `json:"count"`
}

// ListListingsResponse is a page of listings. Count is the page size.
type ListListingsResponse struct {
	Listings []*ListingResponse `json:"listings"`
	Count    int64              `json:"count"`
}

// ListWindowsResponse lists the availability windows of a listing.
type ListWindowsResponse struct {
	Windows []*WindowResponse `json:"windows"`
}

// ListBookingsResponse is a page of bookings. Count is the page size.
type ListBookingsResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
	Count    int64              `json:"count"`
}

// ListEntriesResponse is a page of points entries. Count is the page size.
type ListEntriesResponse struct {
	Entries []*EntryResponse `json:"entries"`
	Count   int64            `json:"count"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

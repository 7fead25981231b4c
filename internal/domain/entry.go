package domain

import (
	"time"
)

// EntryKind classifies a points entry.
type EntryKind string

const (
	EntryKindGrant             EntryKind = "grant"
	EntryKindBookingDebit      EntryKind = "booking_debit"
	EntryKindBookingCredit     EntryKind = "booking_credit"
	EntryKindBookingAdjustment EntryKind = "booking_adjustment"
)

// Entry represents a single points balance mutation.
type Entry struct {
	CreatedAt       time.Time
	ID              string
	AccountID       string
	BookingID       *string
	Kind            EntryKind
	Amount          int64
	PreviousBalance int64
	CurrentBalance  int64
	AccountVersion  int64
}

// NewEntry builds the journal row for a committed balance change.
func NewEntry(id string, kind EntryKind, bookingID *string, change *BalanceChange, at time.Time) *Entry {
	return &Entry{
		ID:              id,
		AccountID:       change.AccountID,
		BookingID:       bookingID,
		Kind:            kind,
		Amount:          change.Delta(),
		PreviousBalance: change.PreviousBalance,
		CurrentBalance:  change.CurrentBalance,
		AccountVersion:  change.Version,
		CreatedAt:       at,
	}
}

// Discrepancy is an account whose balance disagrees with its journal.
type Discrepancy struct {
	AccountID          string
	RecordedBalance    int64
	JournalBalance     int64
	BookingEntriesNet  int64
	ActiveBookingTotal int64
}

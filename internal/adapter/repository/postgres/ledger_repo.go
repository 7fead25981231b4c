package postgres

import (
	"context"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// FindDiscrepancies returns every account whose stored balance disagrees with
// its journal, or whose booking entries disagree with its active bookings.
func (r *LedgerRepository) FindDiscrepancies(ctx context.Context) ([]domain.Discrepancy, error) {
	rows, err := r.queries.FindLedgerDiscrepancies(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Discrepancy, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Discrepancy{
			AccountID:          row.AccountID,
			RecordedBalance:    row.RecordedBalance,
			JournalBalance:     row.JournalBalance,
			BookingEntriesNet:  row.BookingEntriesNet,
			ActiveBookingTotal: row.ActiveBookingTotal,
		})
	}

	return out, nil
}

// CountAccounts returns how many accounts a consistency check covers.
func (r *LedgerRepository) CountAccounts(ctx context.Context) (int64, error) {
	return r.queries.CountAccounts(ctx)
}

package postgres

import (
	"context"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres/generated"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create appends an entry to the points journal.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreatePointsEntry(ctx, generated.CreatePointsEntryParams{
		ID:              entry.ID,
		AccountID:       entry.AccountID,
		BookingID:       stringPtrToPgText(entry.BookingID),
		Kind:            string(entry.Kind),
		Amount:          entry.Amount,
		PreviousBalance: entry.PreviousBalance,
		CurrentBalance:  entry.CurrentBalance,
		AccountVersion:  entry.AccountVersion,
		CreatedAt:       timeToPgTimestamptz(entry.CreatedAt),
	})
}

// ListByAccount returns an account's entries in version order.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

func rowToEntry(row generated.PointsEntry) *domain.Entry {
	return &domain.Entry{
		ID:              row.ID,
		AccountID:       row.AccountID,
		BookingID:       pgTextToStringPtr(row.BookingID),
		Kind:            domain.EntryKind(row.Kind),
		Amount:          row.Amount,
		PreviousBalance: row.PreviousBalance,
		CurrentBalance:  row.CurrentBalance,
		AccountVersion:  row.AccountVersion,
		CreatedAt:       row.CreatedAt.Time,
	}
}

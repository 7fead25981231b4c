package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres/generated"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// ListingRepository implements usecase.ListingRepository.
type ListingRepository struct {
	queries *generated.Queries
}

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(db generated.DBTX) *ListingRepository {
	return &ListingRepository{queries: generated.New(db)}
}

// Create inserts a listing inside tx.
func (r *ListingRepository) Create(ctx context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	_, err = queries.CreateListing(ctx, generated.CreateListingParams{
		ID:           listing.ID,
		OwnerID:      listing.OwnerID,
		Title:        listing.Title,
		NightlyPrice: listing.NightlyPrice,
		CreatedAt:    timeToPgTimestamptz(listing.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(listing.UpdatedAt),
	})

	return err
}

// GetByID retrieves a listing by ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row, err := r.queries.GetListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}

		return nil, err
	}

	return rowToListing(row), nil
}

// List lists listings, optionally restricted to one owner.
func (r *ListingRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Listing, error) {
	rows, err := r.queries.ListListings(ctx, generated.ListListingsParams{
		OwnerID:     ownerID,
		LimitCount:  int32(limit),
		OffsetCount: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	listings := make([]*domain.Listing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, rowToListing(row))
	}

	return listings, nil
}

func rowToListing(row generated.Listing) *domain.Listing {
	return &domain.Listing{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		Title:        row.Title,
		NightlyPrice: row.NightlyPrice,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

// AvailabilityRepository implements usecase.AvailabilityRepository.
type AvailabilityRepository struct {
	queries *generated.Queries
}

// NewAvailabilityRepository creates a new AvailabilityRepository.
func NewAvailabilityRepository(db generated.DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{queries: generated.New(db)}
}

// Create stores an availability window.
func (r *AvailabilityRepository) Create(ctx context.Context, window *domain.AvailabilityWindow) error {
	return r.queries.CreateAvailabilityWindow(ctx, generated.CreateAvailabilityWindowParams{
		ID:        window.ID,
		ListingID: window.ListingID,
		StartsAt:  timeToPgTimestamptz(window.StartsAt),
		EndsAt:    timeToPgTimestamptz(window.EndsAt),
		CreatedAt: timeToPgTimestamptz(window.CreatedAt),
	})
}

// ListByListing returns the windows of a listing ordered by start.
func (r *AvailabilityRepository) ListByListing(ctx context.Context, listingID string) ([]*domain.AvailabilityWindow, error) {
	rows, err := r.queries.ListAvailabilityByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	windows := make([]*domain.AvailabilityWindow, 0, len(rows))
	for _, row := range rows {
		windows = append(windows, &domain.AvailabilityWindow{
			ID:        row.ID,
			ListingID: row.ListingID,
			StartsAt:  row.StartsAt.Time,
			EndsAt:    row.EndsAt.Time,
			CreatedAt: row.CreatedAt.Time,
		})
	}

	return windows, nil
}

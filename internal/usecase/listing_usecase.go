package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// ListingUseCase manages listings and their availability.
type ListingUseCase struct {
	tx               txRunner
	accountRepo      AccountRepository
	listingRepo      ListingRepository
	availabilityRepo AvailabilityRepository
	outboxRepo       OutboxRepository
	idGen            IDGenerator
	cache            Cache
	cacheTTL         time.Duration
	metrics          *metrics.Metrics
}

// NewListingUseCase creates a new ListingUseCase. cache may be nil.
func NewListingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	listingRepo ListingRepository,
	availabilityRepo AvailabilityRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *ListingUseCase {
	return &ListingUseCase{
		tx:               newTxRunner(txManager),
		accountRepo:      accountRepo,
		listingRepo:      listingRepo,
		availabilityRepo: availabilityRepo,
		outboxRepo:       outboxRepo,
		idGen:            idGen,
		cache:            cache,
		cacheTTL:         DefaultListingCacheTTL,
		metrics:          metrics,
	}
}

// WithCacheTTL overrides how long listings stay cached.
func (uc *ListingUseCase) WithCacheTTL(ttl time.Duration) *ListingUseCase {
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// CreateListingInput represents input for creating a listing.
type CreateListingInput struct {
	OwnerID      string
	Title        string
	NightlyPrice int64
}

// CreateListing creates a listing owned by an existing account.
func (uc *ListingUseCase) CreateListing(ctx context.Context, input CreateListingInput) (*domain.Listing, error) {
	if err := domain.ValidateListingTitle(input.Title); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		ID:           uc.idGen.Generate(),
		OwnerID:      input.OwnerID,
		Title:        strings.TrimSpace(input.Title),
		NightlyPrice: input.NightlyPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.GetByID(ctx, input.OwnerID); err != nil {
		return nil, err
	}

	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		if err := uc.listingRepo.Create(ctx, tx, listing); err != nil {
			return err
		}

		return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   listing.ID,
			AggregateType: domain.AggregateTypeListing,
			EventType:     domain.EventTypeListingCreated,
			Payload: map[string]any{
				"listing_id":    listing.ID,
				"owner_id":      listing.OwnerID,
				"nightly_price": listing.NightlyPrice,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ListingsCreated.Inc()
	}

	return listing, nil
}

// GetListing retrieves a listing, reading through the cache when configured.
func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	key := listingCacheKey(id)

	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, key); err == nil {
			var listing domain.Listing
			if err := json.Unmarshal(data, &listing); err == nil {
				uc.countCache("hit")
				return &listing, nil
			}
		}
		uc.countCache("miss")
	}

	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		// Listings never change after creation, so a stale entry cannot exist.
		if data, err := json.Marshal(listing); err == nil {
			_ = uc.cache.Set(ctx, key, data, uc.cacheTTL)
		}
	}

	return listing, nil
}

// ListListings lists listings, optionally only those of one owner.
func (uc *ListingUseCase) ListListings(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Listing, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.listingRepo.List(ctx, ownerID, limit, offset)
}

// AddAvailability opens [startsAt, endsAt) for booking on a listing.
func (uc *ListingUseCase) AddAvailability(ctx context.Context, listingID string, startsAt, endsAt time.Time) (*domain.AvailabilityWindow, error) {
	if err := domain.ValidateStay(startsAt, endsAt); err != nil {
		return nil, err
	}

	if _, err := uc.GetListing(ctx, listingID); err != nil {
		return nil, err
	}

	window := &domain.AvailabilityWindow{
		ID:        uc.idGen.Generate(),
		ListingID: listingID,
		StartsAt:  startsAt.UTC(),
		EndsAt:    endsAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.availabilityRepo.Create(ctx, window); err != nil {
		return nil, err
	}

	return window, nil
}

// ListAvailability returns the availability windows of a listing.
func (uc *ListingUseCase) ListAvailability(ctx context.Context, listingID string) ([]*domain.AvailabilityWindow, error) {
	if _, err := uc.GetListing(ctx, listingID); err != nil {
		return nil, err
	}
	return uc.availabilityRepo.ListByListing(ctx, listingID)
}

func (uc *ListingUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheHits.WithLabelValues("listing", result).Inc()
	}
}

func listingCacheKey(id string) string {
	return "listing:" + id
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// ListingService defines the behavior needed by ListingHandler.
type ListingService interface {
	CreateListing(ctx context.Context, input usecase.CreateListingInput) (*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Listing, error)
	AddAvailability(ctx context.Context, listingID string, startsAt, endsAt time.Time) (*domain.AvailabilityWindow, error)
	ListAvailability(ctx context.Context, listingID string) ([]*domain.AvailabilityWindow, error)
}

// ListingHandler handles listing and availability requests.
type ListingHandler struct {
	listingUC ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingUC ListingService) *ListingHandler {
	return &ListingHandler{listingUC: listingUC}
}

// Create creates a listing owned by the caller (or any account for admins).
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateListingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !requireActFor(w, r, req.OwnerID) {
		return
	}

	listing, err := h.listingUC.CreateListing(r.Context(), req.ToUseCaseInput())
	if err != nil {
		handleError(w, r, err, "failed to create listing")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ListingFromDomain(listing))
}

// Get retrieves a listing by ID.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingUC.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "failed to get listing")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListingFromDomain(listing))
}

// List lists listings, optionally of one owner.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingUC.ListListings(r.Context(), r.URL.Query().Get("owner_id"),
		parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		handleError(w, r, err, "failed to list listings")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListListingsResponse{
		Listings: dto.ListingsFromDomain(listings),
		Count:    int64(len(listings)),
	})
}

// AddAvailability opens a window on the listing. Owner or admin only.
func (h *ListingHandler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	var req dto.AddAvailabilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if user, ok := actingUser(r); ok {
		listing, err := h.listingUC.GetListing(r.Context(), listingID)
		if err != nil {
			handleError(w, r, err, "failed to get listing")
			return
		}
		if !user.CanManageListing(listing) {
			forbidden(w)
			return
		}
	}

	window, err := h.listingUC.AddAvailability(r.Context(), listingID, req.StartsAt, req.EndsAt)
	if err != nil {
		handleError(w, r, err, "failed to add availability")
		return
	}

	writeJSON(w, http.StatusCreated, dto.WindowFromDomain(window))
}

// ListAvailability lists the availability windows of a listing.
func (h *ListingHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	windows, err := h.listingUC.ListAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "failed to list availability")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListWindowsResponse{Windows: dto.WindowsFromDomain(windows)})
}

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

// BookingService defines the behavior needed by BookingHandler.
type BookingService interface {
	CreateBooking(ctx context.Context, input usecase.CreateBookingInput) (*usecase.BookingResult, error)
	DeleteBooking(ctx context.Context, id string) (*usecase.BookingResult, error)
	UpdateBooking(ctx context.Context, id string, input usecase.UpdateBookingInput) (*usecase.BookingResult, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
	QuoteBooking(ctx context.Context, listingID string, checkIn, checkOut time.Time) (int64, error)
}

// ListingReader resolves listing owners for booking capability checks.
type ListingReader interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
}

// BookingHandler handles booking ledger requests.
type BookingHandler struct {
	bookingUC BookingService
	listings  ListingReader
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingUC BookingService, listings ListingReader) *BookingHandler {
	return &BookingHandler{bookingUC: bookingUC, listings: listings}
}

// Create books a listing for an account, debiting its points.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !requireActFor(w, r, req.AccountID) {
		return
	}

	result, err := h.bookingUC.CreateBooking(r.Context(), req.ToUseCaseInput())
	if err != nil {
		handleError(w, r, err, "failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, dto.BookingResultFromUseCase(result))
}

// Get retrieves a booking by ID.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.authorizedBooking(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingFromDomain(booking))
}

// Update reschedules a booking and settles the price difference.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, ok := h.authorizedBooking(w, r)
	if !ok {
		return
	}

	result, err := h.bookingUC.UpdateBooking(r.Context(), booking.ID, req.ToUseCaseInput())
	if err != nil {
		handleError(w, r, err, "failed to update booking")
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingResultFromUseCase(result))
}

// Delete cancels a booking and refunds its price.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	booking, ok := h.authorizedBooking(w, r)
	if !ok {
		return
	}

	result, err := h.bookingUC.DeleteBooking(r.Context(), booking.ID)
	if err != nil {
		handleError(w, r, err, "failed to delete booking")
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingResultFromUseCase(result))
}

// List lists bookings filtered by account_id and listing_id. Non-admin callers
// see their own bookings unless they manage the filtered listing.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.BookingFilter{
		AccountID: r.URL.Query().Get("account_id"),
		ListingID: r.URL.Query().Get("listing_id"),
	}
	h.list(w, r, filter)
}

// ListByAccount lists the bookings made by an account.
func (h *BookingHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.BookingFilter{AccountID: chi.URLParam(r, "id")})
}

// ListByListing lists the bookings of a listing.
func (h *BookingHandler) ListByListing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.BookingFilter{ListingID: chi.URLParam(r, "id")})
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, filter domain.BookingFilter) {
	if user, ok := actingUser(r); ok && !user.IsAdmin() {
		switch {
		case filter.AccountID != "":
			if !user.CanActFor(filter.AccountID) {
				forbidden(w)
				return
			}
		case filter.ListingID != "":
			listing, err := h.listings.GetListing(r.Context(), filter.ListingID)
			if err != nil {
				handleError(w, r, err, "failed to get listing")
				return
			}
			if !user.CanManageListing(listing) {
				forbidden(w)
				return
			}
		default:
			filter.AccountID = user.ID
		}
	}

	filter.Limit = parseIntQuery(r, "limit", 20)
	filter.Offset = parseIntQuery(r, "offset", 0)

	bookings, err := h.bookingUC.ListBookings(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBookingsResponse{
		Bookings: dto.BookingsFromDomain(bookings),
		Count:    int64(len(bookings)),
	})
}

// Quote prices a stay at a listing without booking it.
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	checkIn, err := parseTimeQuery(r, "check_in")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_in", err.Error())
		return
	}
	checkOut, err := parseTimeQuery(r, "check_out")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_out", err.Error())
		return
	}

	price, err := h.bookingUC.QuoteBooking(r.Context(), listingID, checkIn, checkOut)
	if err != nil {
		handleError(w, r, err, "failed to quote booking")
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteResponse{
		ListingID:  listingID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     domain.Nights(checkIn, checkOut),
		TotalPrice: price,
	})
}

// authorizedBooking loads the booking named in the path and checks that the
// caller is its guest, the home owner or an admin.
func (h *BookingHandler) authorizedBooking(w http.ResponseWriter, r *http.Request) (*domain.Booking, bool) {
	booking, err := h.bookingUC.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "failed to get booking")
		return nil, false
	}

	user, ok := actingUser(r)
	if !ok || user.CanActFor(booking.AccountID) {
		return booking, true
	}

	listing, err := h.listings.GetListing(r.Context(), booking.ListingID)
	if err != nil {
		handleError(w, r, err, "failed to get listing")
		return nil, false
	}
	if !user.CanManageBooking(booking, listing) {
		forbidden(w)
		return nil, false
	}
	return booking, true
}

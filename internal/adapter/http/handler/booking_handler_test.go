package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

type bookingServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateBookingInput) (*usecase.BookingResult, error)
	deleteFn func(ctx context.Context, id string) (*usecase.BookingResult, error)
	updateFn func(ctx context.Context, id string, input usecase.UpdateBookingInput) (*usecase.BookingResult, error)
	getFn    func(ctx context.Context, id string) (*domain.Booking, error)
	listFn   func(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
	quoteFn  func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (int64, error)
}

func (s *bookingServiceStub) CreateBooking(ctx context.Context, input usecase.CreateBookingInput) (*usecase.BookingResult, error) {
	return s.createFn(ctx, input)
}

func (s *bookingServiceStub) DeleteBooking(ctx context.Context, id string) (*usecase.BookingResult, error) {
	return s.deleteFn(ctx, id)
}

func (s *bookingServiceStub) UpdateBooking(ctx context.Context, id string, input usecase.UpdateBookingInput) (*usecase.BookingResult, error) {
	return s.updateFn(ctx, id, input)
}

func (s *bookingServiceStub) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.getFn(ctx, id)
}

func (s *bookingServiceStub) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	return s.listFn(ctx, filter)
}

func (s *bookingServiceStub) QuoteBooking(ctx context.Context, listingID string, checkIn, checkOut time.Time) (int64, error) {
	return s.quoteFn(ctx, listingID, checkIn, checkOut)
}

type listingReaderStub map[string]*domain.Listing

func (s listingReaderStub) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	if l, ok := s[id]; ok {
		return l, nil
	}
	return nil, domain.ErrListingNotFound
}

var (
	testCheckIn  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	testCheckOut = testCheckIn.AddDate(0, 0, 2)
	testListings = listingReaderStub{
		"lst-1": {ID: "lst-1", OwnerID: "host-1", NightlyPrice: 30},
	}
)

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:         "bkg-1",
		ListingID:  "lst-1",
		AccountID:  "guest-1",
		CheckIn:    testCheckIn,
		CheckOut:   testCheckOut,
		TotalPrice: 60,
	}
}

func TestBookingHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userID     string
		err        error
		wantStatus int
		retryAfter bool
	}{
		{
			name:       "booked",
			body:       `{"account_id":"guest-1","listing_id":"lst-1","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z","total_price":60}`,
			userID:     "guest-1",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing listing id",
			body:       `{"account_id":"guest-1","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z"}`,
			userID:     "guest-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "booking for someone else",
			body:       `{"account_id":"guest-1","listing_id":"lst-1","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z"}`,
			userID:     "guest-2",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "insufficient funds",
			body:       `{"account_id":"guest-1","listing_id":"lst-1","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z"}`,
			userID:     "guest-1",
			err:        domain.ErrInsufficientFunds,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "dates unavailable",
			body:       `{"account_id":"guest-1","listing_id":"lst-1","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z"}`,
			userID:     "guest-1",
			err:        domain.ErrDatesUnavailable,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "storage unavailable",
			body:       `{"account_id":"guest-1","listing_id":"lst-1","check_in":"2024-06-01T00:00:00Z","check_out":"2024-06-03T00:00:00Z"}`,
			userID:     "guest-1",
			err:        errors.Mark(errors.New("dial tcp: refused"), domain.ErrUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			retryAfter: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewBookingHandler(&bookingServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateBookingInput) (*usecase.BookingResult, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					if input.TotalPrice == nil || *input.TotalPrice != 60 || !input.CheckIn.Equal(testCheckIn) {
						t.Fatalf("unexpected input %+v", input)
					}
					return &usecase.BookingResult{Booking: testBooking(), Balance: 40}, nil
				},
			}, testListings)

			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tt.body))
			req = asUser(req, tt.userID, domain.RoleUser)
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Fatalf("expected Retry-After present=%v, got %v", tt.retryAfter, got)
			}
			if tt.wantStatus == http.StatusCreated {
				var resp dto.BookingResultResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Balance != 40 || resp.Booking.ID != "bkg-1" || resp.Booking.Nights != 2 {
					t.Fatalf("unexpected response %+v", resp)
				}
			}
		})
	}
}

func TestBookingHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       domain.Role
		wantStatus int
		wantCalled bool
	}{
		{name: "guest cancels", userID: "guest-1", role: domain.RoleUser, wantStatus: http.StatusOK, wantCalled: true},
		{name: "host cancels", userID: "host-1", role: domain.RoleUser, wantStatus: http.StatusOK, wantCalled: true},
		{name: "admin cancels", userID: "ops", role: domain.RoleAdmin, wantStatus: http.StatusOK, wantCalled: true},
		{name: "stranger forbidden", userID: "guest-2", role: domain.RoleUser, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := NewBookingHandler(&bookingServiceStub{
				getFn: func(ctx context.Context, id string) (*domain.Booking, error) { return testBooking(), nil },
				deleteFn: func(ctx context.Context, id string) (*usecase.BookingResult, error) {
					called = true
					return &usecase.BookingResult{Booking: testBooking(), Balance: 100}, nil
				},
			}, testListings)

			req := httptest.NewRequest(http.MethodDelete, "/bookings/bkg-1", nil)
			req = setChiURLParam(asUser(req, tt.userID, tt.role), "id", "bkg-1")
			rec := httptest.NewRecorder()

			handler.Delete(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if called != tt.wantCalled {
				t.Fatalf("expected delete called=%v, got %v", tt.wantCalled, called)
			}
		})
	}
}

func TestBookingHandler_Delete_Twice(t *testing.T) {
	handler := NewBookingHandler(&bookingServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Booking, error) {
			return nil, domain.ErrBookingNotFound
		},
	}, testListings)

	req := setChiURLParam(httptest.NewRequest(http.MethodDelete, "/bookings/bkg-1", nil), "id", "bkg-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBookingHandler_Update(t *testing.T) {
	t.Run("reschedules", func(t *testing.T) {
		newCheckOut := testCheckOut.AddDate(0, 0, 1)
		handler := NewBookingHandler(&bookingServiceStub{
			getFn: func(ctx context.Context, id string) (*domain.Booking, error) { return testBooking(), nil },
			updateFn: func(ctx context.Context, id string, input usecase.UpdateBookingInput) (*usecase.BookingResult, error) {
				if input.CheckOut == nil || !input.CheckOut.Equal(newCheckOut) || input.CheckIn != nil {
					t.Fatalf("unexpected input %+v", input)
				}
				b := testBooking()
				b.CheckOut = newCheckOut
				b.TotalPrice = 90
				return &usecase.BookingResult{Booking: b, Balance: 10}, nil
			},
		}, testListings)

		req := httptest.NewRequest(http.MethodPatch, "/bookings/bkg-1", bytes.NewBufferString(`{"check_out":"2024-06-04T00:00:00Z"}`))
		req = setChiURLParam(req, "id", "bkg-1")
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp dto.BookingResultResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Booking.TotalPrice != 90 || resp.Balance != 10 {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("price is immutable", func(t *testing.T) {
		handler := NewBookingHandler(&bookingServiceStub{
			getFn: func(ctx context.Context, id string) (*domain.Booking, error) { return testBooking(), nil },
			updateFn: func(ctx context.Context, id string, input usecase.UpdateBookingInput) (*usecase.BookingResult, error) {
				return nil, domain.ErrPriceImmutable
			},
		}, testListings)

		req := httptest.NewRequest(http.MethodPatch, "/bookings/bkg-1", bytes.NewBufferString(`{"total_price":1}`))
		req = setChiURLParam(req, "id", "bkg-1")
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBookingHandler_ListScopesToCaller(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		userID     string
		wantFilter domain.BookingFilter
		wantStatus int
	}{
		{
			name:       "defaults to own bookings",
			query:      "",
			userID:     "guest-1",
			wantFilter: domain.BookingFilter{AccountID: "guest-1", Limit: 20},
			wantStatus: http.StatusOK,
		},
		{
			name:       "host lists listing",
			query:      "?listing_id=lst-1&limit=5",
			userID:     "host-1",
			wantFilter: domain.BookingFilter{ListingID: "lst-1", Limit: 5},
			wantStatus: http.StatusOK,
		},
		{
			name:       "guest cannot list listing",
			query:      "?listing_id=lst-1",
			userID:     "guest-1",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "other account forbidden",
			query:      "?account_id=guest-2",
			userID:     "guest-1",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewBookingHandler(&bookingServiceStub{
				listFn: func(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
					if filter != tt.wantFilter {
						t.Fatalf("expected filter %+v, got %+v", tt.wantFilter, filter)
					}
					return []*domain.Booking{testBooking()}, nil
				},
			}, testListings)

			req := asUser(httptest.NewRequest(http.MethodGet, "/bookings"+tt.query, nil), tt.userID, domain.RoleUser)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBookingHandler_ListByAccount(t *testing.T) {
	handler := NewBookingHandler(&bookingServiceStub{
		listFn: func(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
			if filter.AccountID != "guest-1" || filter.ListingID != "" {
				t.Fatalf("unexpected filter %+v", filter)
			}
			return []*domain.Booking{testBooking()}, nil
		},
	}, testListings)

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/accounts/guest-1/bookings", nil), "id", "guest-1")
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	var resp dto.ListBookingsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Code != http.StatusOK || resp.Count != 1 {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestBookingHandler_ListCountIsPageSize(t *testing.T) {
	handler := NewBookingHandler(&bookingServiceStub{
		listFn: func(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
			if filter.Limit != 2 || filter.Offset != 4 {
				t.Fatalf("unexpected page %+v", filter)
			}
			return []*domain.Booking{testBooking(), testBooking()}, nil
		},
	}, testListings)

	req := asUser(httptest.NewRequest(http.MethodGet, "/bookings?limit=2&offset=4", nil), "guest-1", domain.RoleUser)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if rec.Code != http.StatusOK || body["count"] != float64(2) {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	if _, ok := body["total"]; ok {
		t.Fatalf("page response must not claim a total: %v", body)
	}
}

func TestBookingHandler_Quote(t *testing.T) {
	handler := NewBookingHandler(&bookingServiceStub{
		quoteFn: func(ctx context.Context, listingID string, checkIn, checkOut time.Time) (int64, error) {
			if listingID != "lst-1" || !checkIn.Equal(testCheckIn) || !checkOut.Equal(testCheckOut) {
				t.Fatalf("unexpected quote arguments %s %v %v", listingID, checkIn, checkOut)
			}
			return 60, nil
		},
	}, testListings)

	req := httptest.NewRequest(http.MethodGet, "/listings/lst-1/quote?check_in=2024-06-01&check_out=2024-06-03", nil)
	req = setChiURLParam(req, "id", "lst-1")
	rec := httptest.NewRecorder()

	handler.Quote(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalPrice != 60 || resp.Nights != 2 {
		t.Fatalf("unexpected quote %+v", resp)
	}

	bad := setChiURLParam(httptest.NewRequest(http.MethodGet, "/listings/lst-1/quote?check_in=2024-06-01", nil), "id", "lst-1")
	rec = httptest.NewRecorder()
	handler.Quote(rec, bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without check_out, got %d", rec.Code)
	}
}

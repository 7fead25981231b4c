package dto

import (
	"time"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email"`
	Role          string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
	Plan          string `json:"plan,omitempty" validate:"omitempty,oneof=free nomad explorer"`
	InitialPoints int64  `json:"initial_points" validate:"gte=0"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:          r.Name,
		Email:         r.Email,
		Role:          domain.Role(r.Role),
		Plan:          domain.Plan(r.Plan),
		InitialPoints: r.InitialPoints,
	}
}

// GrantPointsRequest tops up an account balance.
type GrantPointsRequest struct {
	Points int64 `json:"points" validate:"required,gt=0"`
}

// CreateListingRequest represents a request to create a listing.
type CreateListingRequest struct {
	OwnerID      string `json:"owner_id" validate:"required"`
	Title        string `json:"title" validate:"required,max=255"`
	NightlyPrice int64  `json:"nightly_price" validate:"required,gt=0,lte=1000000000"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateListingRequest) ToUseCaseInput() usecase.CreateListingInput {
	return usecase.CreateListingInput{
		OwnerID:      r.OwnerID,
		Title:        r.Title,
		NightlyPrice: r.NightlyPrice,
	}
}

// AddAvailabilityRequest opens a date range for booking.
type AddAvailabilityRequest struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

// CreateBookingRequest represents a request to book a listing.
// TotalPrice may be omitted to book at the quoted price.
type CreateBookingRequest struct {
	AccountID  string    `json:"account_id" validate:"required"`
	ListingID  string    `json:"listing_id" validate:"required"`
	CheckIn    time.Time `json:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" validate:"required"`
	TotalPrice *int64    `json:"total_price,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBookingRequest) ToUseCaseInput() usecase.CreateBookingInput {
	return usecase.CreateBookingInput{
		AccountID:  r.AccountID,
		ListingID:  r.ListingID,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		TotalPrice: r.TotalPrice,
	}
}

// UpdateBookingRequest is a partial update of a booking.
type UpdateBookingRequest struct {
	CheckIn    *time.Time `json:"check_in,omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	TotalPrice *int64     `json:"total_price,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateBookingRequest) ToUseCaseInput() usecase.UpdateBookingInput {
	return usecase.UpdateBookingInput{
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		TotalPrice: r.TotalPrice,
	}
}


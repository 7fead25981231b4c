package dto

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		Name:          "Ada",
		Email:         "ada@example.com",
		Role:          "admin",
		Plan:          "nomad",
		InitialPoints: 300,
	}

	got := req.ToUseCaseInput()
	want := usecase.CreateAccountInput{
		Name:          "Ada",
		Email:         "ada@example.com",
		Role:          domain.RoleAdmin,
		Plan:          domain.PlanNomad,
		InitialPoints: 300,
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCreateListingRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateListingRequest{OwnerID: "acc-1", Title: "Cabin", NightlyPrice: 30}

	got := req.ToUseCaseInput()
	want := usecase.CreateListingInput{OwnerID: "acc-1", Title: "Cabin", NightlyPrice: 30}
	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCreateBookingRequest_ToUseCaseInput(t *testing.T) {
	checkIn := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)
	price := int64(60)

	tests := []struct {
		name    string
		request *CreateBookingRequest
		want    usecase.CreateBookingInput
	}{
		{
			name: "explicit price",
			request: &CreateBookingRequest{
				AccountID:  "acc-1",
				ListingID:  "lst-1",
				CheckIn:    checkIn,
				CheckOut:   checkOut,
				TotalPrice: &price,
			},
			want: usecase.CreateBookingInput{
				AccountID:  "acc-1",
				ListingID:  "lst-1",
				CheckIn:    checkIn,
				CheckOut:   checkOut,
				TotalPrice: &price,
			},
		},
		{
			name: "quoted price",
			request: &CreateBookingRequest{
				AccountID: "acc-1",
				ListingID: "lst-1",
				CheckIn:   checkIn,
				CheckOut:  checkOut,
			},
			want: usecase.CreateBookingInput{
				AccountID: "acc-1",
				ListingID: "lst-1",
				CheckIn:   checkIn,
				CheckOut:  checkOut,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.request.ToUseCaseInput()); diff != "" {
				t.Fatalf("ToUseCaseInput() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateBookingRequest_ToUseCaseInput(t *testing.T) {
	checkOut := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	req := &UpdateBookingRequest{CheckOut: &checkOut}

	got := req.ToUseCaseInput()
	if got.CheckIn != nil || got.TotalPrice != nil {
		t.Fatalf("expected only check_out to be set, got %+v", got)
	}
	if got.CheckOut == nil || !got.CheckOut.Equal(checkOut) {
		t.Fatalf("expected check_out %v, got %v", checkOut, got.CheckOut)
	}
}

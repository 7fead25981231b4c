package domain

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestListing_Validate(t *testing.T) {
	if err := (&Listing{NightlyPrice: 1}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, price := range []int64{0, -5} {
		if err := (&Listing{NightlyPrice: price}).Validate(); !errors.Is(err, ErrInvalidNightlyPrice) {
			t.Fatalf("price %d: expected ErrInvalidNightlyPrice, got %v", price, err)
		}
	}
}

func TestStayAvailable(t *testing.T) {
	windows := []*AvailabilityWindow{
		{StartsAt: day(1), EndsAt: day(10)},
		{StartsAt: day(20), EndsAt: day(25)},
	}

	tests := []struct {
		name    string
		windows []*AvailabilityWindow
		in, out int
		want    bool
	}{
		{"no windows means open", nil, 1, 3, true},
		{"inside first window", windows, 2, 5, true},
		{"exactly the window", windows, 1, 10, true},
		{"inside second window", windows, 21, 25, true},
		{"spans the gap", windows, 8, 21, false},
		{"before every window", windows, 11, 12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StayAvailable(tt.windows, day(tt.in), day(tt.out)); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

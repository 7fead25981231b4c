package domain

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Ada Lovelace"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateListingTitle(t *testing.T) {
	t.Parallel()

	if err := ValidateListingTitle("Cabin by the lake"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := ValidateListingTitle(""); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("Nomad@Example.com"); err != nil {
		t.Fatalf("expected valid email, got %v", err)
	}
	if err := ValidateEmail("not-an-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidatePoints(t *testing.T) {
	t.Parallel()

	if err := ValidatePoints(500); err != nil {
		t.Fatalf("expected valid points, got %v", err)
	}
	for _, p := range []int64{0, -1, MaxPointsAmount + 1} {
		if err := ValidatePoints(p); !errors.Is(err, ErrInvalidPoints) {
			t.Fatalf("points %d: expected ErrInvalidPoints, got %v", p, err)
		}
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 20, 0},
		{-1, -5, 20, 0},
		{50, 10, 50, 10},
		{500, 0, 100, 0},
	}

	for _, tt := range tests {
		limit, offset := ValidatePagination(tt.limit, tt.offset)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Fatalf("ValidatePagination(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

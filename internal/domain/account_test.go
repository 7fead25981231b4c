package domain

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		debitAmount int64
		expectErr   error
	}{
		{
			name:        "debit more than balance",
			balance:     100,
			debitAmount: 150,
			expectErr:   ErrInsufficientFunds,
		},
		{
			name:        "debit exact balance",
			balance:     100,
			debitAmount: 100,
		},
		{
			name:        "debit less than balance",
			balance:     100,
			debitAmount: 50,
		},
		{
			name:        "zero priced stay",
			balance:     0,
			debitAmount: 0,
		},
		{
			name:        "negative amount",
			balance:     100,
			debitAmount: -1,
			expectErr:   ErrNegativePrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{PointsBalance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectErr != nil && !errors.Is(err, tt.expectErr) {
				t.Fatalf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestNegativePriceIsInvalidRange(t *testing.T) {
	if !errors.Is(ErrNegativePrice, ErrInvalidRange) {
		t.Fatal("ErrNegativePrice must wrap ErrInvalidRange")
	}
	for _, err := range []error{ErrAccountNotFound, ErrListingNotFound, ErrBookingNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("%v must wrap ErrNotFound", err)
		}
	}
}

func TestBalanceChange_Delta(t *testing.T) {
	change := BalanceChange{PreviousBalance: 300, CurrentBalance: 240}
	if got := change.Delta(); got != -60 {
		t.Fatalf("expected -60, got %d", got)
	}

	acc := &Account{PointsBalance: 240}
	if got := acc.ApplyDelta(60); got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
}

func TestPlan_IsValid(t *testing.T) {
	for _, p := range []Plan{PlanFree, PlanNomad, PlanExplorer} {
		if !p.IsValid() {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	if Plan("premium").IsValid() {
		t.Fatal("expected unknown plan to be invalid")
	}
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("40001: could not serialize access")

	if !IsRetryable(errors.Mark(cause, ErrConflict)) {
		t.Fatal("marked conflict should be retryable")
	}
	if !IsRetryable(errors.Wrap(errors.Mark(cause, ErrUnavailable), "create booking")) {
		t.Fatal("wrapped unavailable should be retryable")
	}
	if IsRetryable(ErrInsufficientFunds) {
		t.Fatal("insufficient funds is final")
	}
}

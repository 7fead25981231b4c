package domain

import (
	"time"
)

// MinPointsBalance is the floor no ledger operation may push a balance below.
const MinPointsBalance int64 = 0

// Plan is the subscription tier of an account. It only affects how points are
// granted outside the ledger.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanNomad    Plan = "nomad"
	PlanExplorer Plan = "explorer"
)

var validPlans = map[Plan]bool{
	PlanFree:     true,
	PlanNomad:    true,
	PlanExplorer: true,
}

// IsValid checks if the plan is known.
func (p Plan) IsValid() bool {
	return validPlans[p]
}

// Account is a marketplace user holding a points balance.
type Account struct {
	ID            string
	Name          string
	Email         string
	Role          Role
	Plan          Plan
	PointsBalance int64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateDebit checks if the account can pay amount points.
func (a *Account) ValidateDebit(amount int64) error {
	if amount < 0 {
		return ErrNegativePrice
	}
	if a.PointsBalance-amount < MinPointsBalance {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDelta returns the balance after applying a signed delta.
func (a *Account) ApplyDelta(delta int64) int64 {
	return a.PointsBalance + delta
}

// BalanceChange describes one committed balance mutation.
type BalanceChange struct {
	AccountID       string
	PreviousBalance int64
	CurrentBalance  int64
	Version         int64
}

// Delta returns the signed amount applied by the change.
func (c BalanceChange) Delta() int64 {
	return c.CurrentBalance - c.PreviousBalance
}

package usecase

import (
	"context"
	"time"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// ConsistencyReport is the outcome of a ledger consistency check.
type ConsistencyReport struct {
	CheckedAt       time.Time
	AccountsChecked int64
	Discrepancies   []domain.Discrepancy
	Consistent      bool
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository, metrics *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
		metrics:    metrics,
	}
}

// CheckConsistency verifies, for every account, that the balance equals the sum
// of its entries and that booking entries net to the active bookings' total.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	discrepancies, err := uc.ledgerRepo.FindDiscrepancies(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.ledgerRepo.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		CheckedAt:       time.Now().UTC(),
		AccountsChecked: accounts,
		Discrepancies:   discrepancies,
		Consistent:      len(discrepancies) == 0,
	}
	if report.Discrepancies == nil {
		report.Discrepancies = []domain.Discrepancy{}
	}

	if uc.metrics != nil {
		uc.metrics.LedgerDiscrepancy.Set(float64(len(discrepancies)))
		if report.Consistent {
			uc.metrics.LedgerConsistent.Set(1)
		} else {
			uc.metrics.LedgerConsistent.Set(0)
		}
	}

	return report, nil
}

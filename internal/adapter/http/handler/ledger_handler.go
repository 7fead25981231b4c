package handler

import (
	"context"
	"net/http"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency checks if balances agree with the points journal and the
// active bookings. An inconsistent ledger answers 409 with the discrepancies.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		handleError(w, r, err, "failed to check consistency")
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ConsistencyFromUseCase(report))
}

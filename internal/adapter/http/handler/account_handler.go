package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	GrantPoints(ctx context.Context, accountID string, points int64) (*domain.Entry, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account. Admin only.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		handleError(w, r, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}
	if !requireActFor(w, r, id) {
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts. Admin only.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleError(w, r, err, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Count:    int64(len(accounts)),
	})
}

// ListEntries lists the points entries of an account.
func (h *AccountHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !requireActFor(w, r, id) {
		return
	}

	entries, err := h.accountUC.ListEntries(r.Context(), id,
		parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))
	if err != nil {
		handleError(w, r, err, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Count:   int64(len(entries)),
	})
}

// GrantPoints credits points bought outside the ledger. Admin only.
func (h *AccountHandler) GrantPoints(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req dto.GrantPointsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	entry, err := h.accountUC.GrantPoints(r.Context(), chi.URLParam(r, "id"), req.Points)
	if err != nil {
		handleError(w, r, err, "failed to grant points")
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

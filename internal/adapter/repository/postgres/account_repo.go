package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres/generated"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository. db is usually a
// *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Create inserts a new account inside tx.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	_, err = queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:            account.ID,
		Name:          account.Name,
		Email:         account.Email,
		Role:          string(account.Role),
		Plan:          string(account.Plan),
		PointsBalance: account.PointsBalance,
		Version:       account.Version,
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account and locks its row until tx ends.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// AdjustBalance applies delta with one guarded UPDATE so concurrent debits
// can never take the balance below zero. When the guard rejects the row a
// second lookup tells a missing account apart from a short balance.
func (r *AccountRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, id string, delta int64, at time.Time) (*domain.BalanceChange, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.AdjustAccountBalance(ctx, generated.AdjustAccountBalanceParams{
		Delta:     delta,
		UpdatedAt: timeToPgTimestamptz(at),
		ID:        id,
	})
	if err == nil {
		return &domain.BalanceChange{
			AccountID:       row.ID,
			PreviousBalance: row.PreviousBalance,
			CurrentBalance:  row.CurrentBalance,
			Version:         row.Version,
		}, nil
	}

	if isCheckViolation(err) {
		return nil, domain.ErrInsufficientFunds
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	exists, err := queries.AccountExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrAccountNotFound
	}

	return nil, domain.ErrInsufficientFunds
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Role:          domain.Role(row.Role),
		Plan:          domain.Plan(row.Plan),
		PointsBalance: row.PointsBalance,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

// Type conversion helpers.
func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

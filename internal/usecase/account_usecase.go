package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	tx          txRunner
	accountRepo AccountRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		tx:          newTxRunner(txManager),
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// WithRetrier sets the retrier wrapping account transactions.
func (uc *AccountUseCase) WithRetrier(retrier Retrier) *AccountUseCase {
	if retrier != nil {
		uc.tx.retrier = retrier
	}
	return uc
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name          string
	Email         string
	Role          domain.Role
	Plan          domain.Plan
	InitialPoints int64
}

// CreateAccount creates a new account, granting InitialPoints through the ledger.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	if !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	if input.Plan == "" {
		input.Plan = domain.PlanFree
	}
	if !input.Plan.IsValid() {
		return nil, domain.ErrInvalidPlan
	}
	if input.InitialPoints < 0 {
		return nil, domain.ErrInvalidPoints
	}

	var account *domain.Account
	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		account = &domain.Account{
			ID:        uc.idGen.Generate(),
			Name:      strings.TrimSpace(input.Name),
			Email:     strings.ToLower(strings.TrimSpace(input.Email)),
			Role:      input.Role,
			Plan:      input.Plan,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		if input.InitialPoints > 0 {
			grant, err := uc.grant(ctx, tx, account.ID, input.InitialPoints, now)
			if err != nil {
				return err
			}
			account.PointsBalance = grant.CurrentBalance
			account.Version = grant.AccountVersion
		}

		return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   account.ID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountCreated,
			Payload: map[string]any{
				"account_id": account.ID,
				"role":       string(account.Role),
				"plan":       string(account.Plan),
				"balance":    account.PointsBalance,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GrantPoints credits an account with externally purchased points.
func (uc *AccountUseCase) GrantPoints(ctx context.Context, accountID string, points int64) (*domain.Entry, error) {
	if err := domain.ValidatePoints(points); err != nil {
		return nil, err
	}

	var entry *domain.Entry
	err := uc.tx.run(ctx, func(ctx context.Context, tx Transaction) error {
		now := time.Now().UTC()

		var err error
		entry, err = uc.grant(ctx, tx, accountID, points, now)
		if err != nil {
			return err
		}

		return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypePointsGranted,
			Payload: map[string]any{
				"account_id": accountID,
				"points":     points,
				"balance":    entry.CurrentBalance,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PointsGranted.Add(float64(points))
	}

	return entry, nil
}

func (uc *AccountUseCase) grant(ctx context.Context, tx Transaction, accountID string, points int64, now time.Time) (*domain.Entry, error) {
	change, err := uc.accountRepo.AdjustBalance(ctx, tx, accountID, points, now)
	if err != nil {
		return nil, err
	}

	entry := domain.NewEntry(uc.idGen.Generate(), domain.EntryKindGrant, nil, change, now)
	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// ListEntries lists the points entries of an account, newest first.
func (uc *AccountUseCase) ListEntries(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.entryRepo.ListByAccount(ctx, accountID, limit, offset)
}

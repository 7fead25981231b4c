package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	postgresRepo "github.com/nomadhomes/bookingledger/internal/adapter/repository/postgres"
	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

const (
	containerUser     = "bookings"
	containerPassword = "bookings"
	containerDB       = "bookings"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	URL  string
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL, or to a throwaway postgres container
// when it is unset, and applies the migrations.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		containerOnce.Do(func() {
			containerURL, containerErr = startPostgres()
		})
		if containerErr != nil {
			t.Skipf("no DATABASE_URL and postgres container unavailable: %v", containerErr)
		}
		dbURL = containerURL
	}

	if err := postgres.RunMigrations(dbURL, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 20})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{Pool: pool, URL: dbURL, t: t}
	t.Cleanup(db.Cleanup)
	return db
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     containerUser,
				"POSTGRES_PASSWORD": containerPassword,
				"POSTGRES_DB":       containerDB,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", err
	}

	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		containerUser, containerPassword, host, port.Port(), containerDB), nil
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events, points_entries, bookings,
			availability_windows, listings, accounts CASCADE
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// App is the ledger wired against the test database.
type App struct {
	Accounts *usecase.AccountUseCase
	Listings *usecase.ListingUseCase
	Bookings *usecase.BookingUseCase
	Ledger   *usecase.LedgerUseCase

	AccountRepo *postgresRepo.AccountRepository
	EntryRepo   *postgresRepo.EntryRepository
	OutboxRepo  *postgresRepo.OutboxRepository

	t *testing.T
}

// NewApp builds the use cases the server runs, without cache or metrics.
func NewApp(db *TestDB) *App {
	pool := db.Pool
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	listingRepo := postgresRepo.NewListingRepository(pool)
	availabilityRepo := postgresRepo.NewAvailabilityRepository(pool)
	bookingRepo := postgresRepo.NewBookingRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(zerolog.Nop(), postgresRepo.WithMaxRetries(10))

	return &App{
		Accounts: usecase.NewAccountUseCase(txManager, accountRepo, entryRepo, outboxRepo, idGen, nil).
			WithRetrier(retrier),
		Listings: usecase.NewListingUseCase(txManager, accountRepo, listingRepo, availabilityRepo, outboxRepo, idGen, nil, nil),
		Bookings: usecase.NewBookingUseCase(txManager, accountRepo, listingRepo, availabilityRepo, bookingRepo, entryRepo, outboxRepo, idGen, nil).
			WithRetrier(retrier),
		Ledger:      usecase.NewLedgerUseCase(postgresRepo.NewLedgerRepository(pool), nil),
		AccountRepo: accountRepo,
		EntryRepo:   entryRepo,
		OutboxRepo:  outboxRepo,
		t:           db.t,
	}
}

// CreateAccount creates a user account holding points.
func (a *App) CreateAccount(ctx context.Context, points int64) *domain.Account {
	a.t.Helper()

	id := ulid.Make().String()
	account, err := a.Accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		Name:          "guest " + id,
		Email:         id + "@example.com",
		InitialPoints: points,
	})
	if err != nil {
		a.t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateListing creates a listing owned by a fresh account.
func (a *App) CreateListing(ctx context.Context, nightlyPrice int64) *domain.Listing {
	a.t.Helper()

	owner := a.CreateAccount(ctx, 0)
	listing, err := a.Listings.CreateListing(ctx, usecase.CreateListingInput{
		OwnerID:      owner.ID,
		Title:        "Cabin by the lake",
		NightlyPrice: nightlyPrice,
	})
	if err != nil {
		a.t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

// Balance reads an account's current points balance.
func (a *App) Balance(ctx context.Context, accountID string) int64 {
	a.t.Helper()

	account, err := a.AccountRepo.GetByID(ctx, accountID)
	if err != nil {
		a.t.Fatalf("failed to load account: %v", err)
	}
	return account.PointsBalance
}

// Stay returns a check-in/check-out pair of the given length starting on day.
func Stay(day time.Time, nights int) (time.Time, time.Time) {
	return day, day.AddDate(0, 0, nights)
}

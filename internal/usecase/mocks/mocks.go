package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
)

// Store is an in-memory stand-in for the PostgreSQL repositories. Transactions
// are serialized by a single lock, and rollback replays an undo log, so tests get
// the all-or-nothing and lost-update guarantees of the real database.
type Store struct {
	sem chan struct{}

	mu       sync.RWMutex
	accounts map[string]*domain.Account
	listings map[string]*domain.Listing
	windows  map[string][]*domain.AvailabilityWindow
	bookings map[string]*domain.Booking
	entries  []*domain.Entry
	events   []*domain.OutboxEvent

	TxManager    *TxManager
	Accounts     *AccountRepo
	Listings     *ListingRepo
	Availability *AvailabilityRepo
	Bookings     *BookingRepo
	Entries      *EntryRepo
	Outbox       *OutboxRepo
	Ledger       *LedgerRepo
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		sem:      make(chan struct{}, 1),
		accounts: make(map[string]*domain.Account),
		listings: make(map[string]*domain.Listing),
		windows:  make(map[string][]*domain.AvailabilityWindow),
		bookings: make(map[string]*domain.Booking),
	}
	s.TxManager = &TxManager{store: s}
	s.Accounts = &AccountRepo{store: s}
	s.Listings = &ListingRepo{store: s}
	s.Availability = &AvailabilityRepo{store: s}
	s.Bookings = &BookingRepo{store: s}
	s.Entries = &EntryRepo{store: s}
	s.Outbox = &OutboxRepo{store: s}
	s.Ledger = &LedgerRepo{store: s}
	return s
}

// SeedAccount adds an account whose balance is backed by a grant entry.
func (s *Store) SeedAccount(id string, balance int64) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	acc := &domain.Account{
		ID:            id,
		Name:          "account " + id,
		Email:         id + "@example.com",
		Role:          domain.RoleUser,
		Plan:          domain.PlanFree,
		PointsBalance: balance,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.accounts[id] = acc
	if balance != 0 {
		s.entries = append(s.entries, &domain.Entry{
			ID:             "seed-" + id,
			AccountID:      id,
			Kind:           domain.EntryKindGrant,
			Amount:         balance,
			CurrentBalance: balance,
			AccountVersion: 1,
			CreatedAt:      now,
		})
	}
	return acc
}

// SeedListing adds a listing.
func (s *Store) SeedListing(id, ownerID string, nightlyPrice int64) *domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	l := &domain.Listing{
		ID:           id,
		OwnerID:      ownerID,
		Title:        "listing " + id,
		NightlyPrice: nightlyPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.listings[id] = l
	return l
}

// Balance returns the stored balance of an account, or -1 when it is missing.
func (s *Store) Balance(id string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[id]; ok {
		return acc.PointsBalance
	}
	return -1
}

// ActiveBookings returns the stored bookings of an account.
func (s *Store) ActiveBookings(accountID string) []*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Booking
	for _, b := range s.bookings {
		if b.AccountID == accountID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

// EntriesOf returns the entries of an account in insertion order.
func (s *Store) EntriesOf(accountID string) []*domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

// Events returns every outbox event written so far.
func (s *Store) Events() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.OutboxEvent(nil), s.events...)
}

// mutate applies fn under the write lock and records undo on tx when present.
func (s *Store) mutate(tx usecase.Transaction, fn func() (undo func(), err error)) error {
	s.mu.Lock()
	undo, err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if t, ok := tx.(*Tx); ok && undo != nil {
		t.undo = append(t.undo, undo)
	}
	return nil
}

// TxManager implements usecase.TransactionManager over the store.
type TxManager struct {
	store *Store

	// BeginFunc overrides Begin when set.
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
	// CommitErr makes every commit fail and roll back.
	CommitErr error

	commits   atomic.Int64
	rollbacks atomic.Int64
}

// Begin waits for the store's transaction slot.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case m.store.sem <- struct{}{}:
		return &Tx{manager: m, commitErr: m.CommitErr}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Commits returns the number of committed transactions.
func (m *TxManager) Commits() int64 { return m.commits.Load() }

// Rollbacks returns the number of transactions rolled back before commit.
func (m *TxManager) Rollbacks() int64 { return m.rollbacks.Load() }

// Tx is an in-memory transaction.
type Tx struct {
	manager *TxManager
	undo    []func()
	done    bool

	commitErr error
}

// Commit keeps the changes and releases the transaction slot.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already closed")
	}
	if t.commitErr != nil {
		_ = t.Rollback(ctx)
		return t.commitErr
	}
	t.done = true
	t.undo = nil
	t.manager.commits.Add(1)
	<-t.manager.store.sem
	return nil
}

// Rollback undoes every change made in the transaction. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true

	t.manager.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.manager.store.mu.Unlock()

	t.undo = nil
	t.manager.rollbacks.Add(1)
	<-t.manager.store.sem
	return nil
}

// AccountRepo implements usecase.AccountRepository.
type AccountRepo struct {
	store *Store

	AdjustBalanceFunc func(ctx context.Context, tx usecase.Transaction, id string, delta int64, at time.Time) (*domain.BalanceChange, error)
}

func (r *AccountRepo) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	return r.store.mutate(tx, func() (func(), error) {
		if _, ok := r.store.accounts[account.ID]; ok {
			return nil, fmt.Errorf("account %s already exists", account.ID)
		}
		cp := *account
		r.store.accounts[account.ID] = &cp
		return func() { delete(r.store.accounts, account.ID) }, nil
	})
}

func (r *AccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if acc, ok := r.store.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *AccountRepo) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, acc := range r.store.accounts {
		cp := *acc
		accounts = append(accounts, &cp)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return page(accounts, limit, offset), nil
}

// AdjustBalance mirrors the guarded UPDATE of the PostgreSQL repository.
func (r *AccountRepo) AdjustBalance(ctx context.Context, tx usecase.Transaction, id string, delta int64, at time.Time) (*domain.BalanceChange, error) {
	if r.AdjustBalanceFunc != nil {
		return r.AdjustBalanceFunc(ctx, tx, id, delta, at)
	}

	var change *domain.BalanceChange
	err := r.store.mutate(tx, func() (func(), error) {
		acc, ok := r.store.accounts[id]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		if delta < 0 {
			if err := acc.ValidateDebit(-delta); err != nil {
				return nil, err
			}
		}

		before := *acc
		acc.PointsBalance = acc.ApplyDelta(delta)
		acc.Version++
		acc.UpdatedAt = at
		change = &domain.BalanceChange{
			AccountID:       id,
			PreviousBalance: before.PointsBalance,
			CurrentBalance:  acc.PointsBalance,
			Version:         acc.Version,
		}
		return func() { *acc = before }, nil
	})
	return change, err
}

// ListingRepo implements usecase.ListingRepository.
type ListingRepo struct {
	store *Store

	GetByIDFunc func(ctx context.Context, id string) (*domain.Listing, error)
	calls       atomic.Int64
}

func (r *ListingRepo) Create(_ context.Context, tx usecase.Transaction, listing *domain.Listing) error {
	return r.store.mutate(tx, func() (func(), error) {
		cp := *listing
		r.store.listings[listing.ID] = &cp
		return func() { delete(r.store.listings, listing.ID) }, nil
	})
}

func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.calls.Add(1)
	if r.GetByIDFunc != nil {
		return r.GetByIDFunc(ctx, id)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if l, ok := r.store.listings[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrListingNotFound
}

// GetByIDCalls returns how many times GetByID was called.
func (r *ListingRepo) GetByIDCalls() int64 { return r.calls.Load() }

func (r *ListingRepo) List(_ context.Context, ownerID string, limit, offset int) ([]*domain.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var listings []*domain.Listing
	for _, l := range r.store.listings {
		if ownerID != "" && l.OwnerID != ownerID {
			continue
		}
		cp := *l
		listings = append(listings, &cp)
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })
	return page(listings, limit, offset), nil
}

// AvailabilityRepo implements usecase.AvailabilityRepository.
type AvailabilityRepo struct {
	store *Store
}

func (r *AvailabilityRepo) Create(_ context.Context, window *domain.AvailabilityWindow) error {
	return r.store.mutate(nil, func() (func(), error) {
		cp := *window
		r.store.windows[window.ListingID] = append(r.store.windows[window.ListingID], &cp)
		return nil, nil
	})
}

func (r *AvailabilityRepo) ListByListing(_ context.Context, listingID string) ([]*domain.AvailabilityWindow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]*domain.AvailabilityWindow(nil), r.store.windows[listingID]...), nil
}

// BookingRepo implements usecase.BookingRepository.
type BookingRepo struct {
	store *Store

	// CreateHook runs before the insert; an error aborts it.
	CreateHook func(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error
}

func (r *BookingRepo) Create(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	if r.CreateHook != nil {
		if err := r.CreateHook(ctx, tx, booking); err != nil {
			return err
		}
	}
	return r.store.mutate(tx, func() (func(), error) {
		cp := *booking
		r.store.bookings[booking.ID] = &cp
		return func() { delete(r.store.bookings, booking.ID) }, nil
	})
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if b, ok := r.store.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBookingNotFound
}

func (r *BookingRepo) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *BookingRepo) Delete(_ context.Context, tx usecase.Transaction, id string) (*domain.Booking, error) {
	var deleted *domain.Booking
	err := r.store.mutate(tx, func() (func(), error) {
		b, ok := r.store.bookings[id]
		if !ok {
			return nil, domain.ErrBookingNotFound
		}
		delete(r.store.bookings, id)
		cp := *b
		deleted = &cp
		return func() { r.store.bookings[id] = b }, nil
	})
	return deleted, err
}

func (r *BookingRepo) UpdateSchedule(_ context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	return r.store.mutate(tx, func() (func(), error) {
		b, ok := r.store.bookings[booking.ID]
		if !ok {
			return nil, domain.ErrBookingNotFound
		}
		before := *b
		b.CheckIn = booking.CheckIn
		b.CheckOut = booking.CheckOut
		b.TotalPrice = booking.TotalPrice
		b.UpdatedAt = booking.UpdatedAt
		return func() { *b = before }, nil
	})
}

func (r *BookingRepo) List(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var bookings []*domain.Booking
	for _, b := range r.store.bookings {
		if filter.AccountID != "" && b.AccountID != filter.AccountID {
			continue
		}
		if filter.ListingID != "" && b.ListingID != filter.ListingID {
			continue
		}
		cp := *b
		bookings = append(bookings, &cp)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return page(bookings, filter.Limit, filter.Offset), nil
}

// EntryRepo implements usecase.EntryRepository.
type EntryRepo struct {
	store *Store

	// CreateHook runs before the insert; an error aborts it.
	CreateHook func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
}

func (r *EntryRepo) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if r.CreateHook != nil {
		if err := r.CreateHook(ctx, tx, entry); err != nil {
			return err
		}
	}
	return r.store.mutate(tx, func() (func(), error) {
		n := len(r.store.entries)
		r.store.entries = append(r.store.entries, entry)
		return func() { r.store.entries = r.store.entries[:n] }, nil
	})
}

func (r *EntryRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var entries []*domain.Entry
	for i := len(r.store.entries) - 1; i >= 0; i-- {
		if e := r.store.entries[i]; e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	return page(entries, limit, offset), nil
}

// OutboxRepo implements usecase.OutboxRepository.
type OutboxRepo struct {
	store *Store

	// CreateHook runs before the insert; an error aborts it.
	CreateHook func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func (r *OutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if r.CreateHook != nil {
		if err := r.CreateHook(ctx, tx, event); err != nil {
			return err
		}
	}
	return r.store.mutate(tx, func() (func(), error) {
		n := len(r.store.events)
		r.store.events = append(r.store.events, event)
		return func() { r.store.events = r.store.events[:n] }, nil
	})
}

func (r *OutboxRepo) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range r.store.events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (r *OutboxRepo) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range r.store.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (r *OutboxRepo) DeletePublished(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.events[:0]
	var deleted int64
	for _, e := range r.store.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.store.events = kept
	return deleted, nil
}

// LedgerRepo implements usecase.LedgerRepository.
type LedgerRepo struct {
	store *Store
}

// FindDiscrepancies applies the same checks as the SQL consistency query.
func (r *LedgerRepo) FindDiscrepancies(_ context.Context) ([]domain.Discrepancy, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	journal := make(map[string]int64)
	bookingNet := make(map[string]int64)
	for _, e := range r.store.entries {
		journal[e.AccountID] += e.Amount
		if e.BookingID != nil {
			bookingNet[e.AccountID] += e.Amount
		}
	}
	active := make(map[string]int64)
	for _, b := range r.store.bookings {
		active[b.AccountID] += b.TotalPrice
	}

	var out []domain.Discrepancy
	for id, acc := range r.store.accounts {
		if acc.PointsBalance != journal[id] || -bookingNet[id] != active[id] {
			out = append(out, domain.Discrepancy{
				AccountID:          id,
				RecordedBalance:    acc.PointsBalance,
				JournalBalance:     journal[id],
				BookingEntriesNet:  bookingNet[id],
				ActiveBookingTotal: active[id],
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (r *LedgerRepo) CountAccounts(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.accounts)), nil
}

// SequentialIDGenerator implements usecase.IDGenerator with predictable IDs.
type SequentialIDGenerator struct {
	prefix string
	n      atomic.Int64
}

func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) Generate() string {
	return fmt.Sprintf("%s%06d", g.prefix, g.n.Add(1))
}

// MemoryCache implements usecase.Cache with a map. TTLs are ignored.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte)}
}

// ErrCacheMiss is returned by MemoryCache.Get for unknown keys.
var ErrCacheMiss = errors.New("cache miss")

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

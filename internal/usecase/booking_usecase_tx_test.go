package usecase_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"go.uber.org/mock/gomock"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/usecase"
	"github.com/nomadhomes/bookingledger/internal/usecase/mocks"
)

type bookingMocks struct {
	txMgr        *mocks.MockTransactionManager
	accounts     *mocks.MockAccountRepository
	listings     *mocks.MockListingRepository
	availability *mocks.MockAvailabilityRepository
	bookings     *mocks.MockBookingRepository
	entries      *mocks.MockEntryRepository
	outbox       *mocks.MockOutboxRepository
	idGen        *mocks.MockIDGenerator
}

func newBookingMocks(ctrl *gomock.Controller) *bookingMocks {
	m := &bookingMocks{
		txMgr:        mocks.NewMockTransactionManager(ctrl),
		accounts:     mocks.NewMockAccountRepository(ctrl),
		listings:     mocks.NewMockListingRepository(ctrl),
		availability: mocks.NewMockAvailabilityRepository(ctrl),
		bookings:     mocks.NewMockBookingRepository(ctrl),
		entries:      mocks.NewMockEntryRepository(ctrl),
		outbox:       mocks.NewMockOutboxRepository(ctrl),
		idGen:        mocks.NewMockIDGenerator(ctrl),
	}
	m.idGen.EXPECT().Generate().Return("id-1").AnyTimes()
	return m
}

func (m *bookingMocks) useCase() *usecase.BookingUseCase {
	return usecase.NewBookingUseCase(m.txMgr, m.accounts, m.listings, m.availability, m.bookings, m.entries, m.outbox, m.idGen, nil)
}

func (m *bookingMocks) expectQuote() {
	m.listings.EXPECT().GetByID(gomock.Any(), "lst").Return(&domain.Listing{ID: "lst", OwnerID: "host", NightlyPrice: 50}, nil)
	m.availability.EXPECT().ListByListing(gomock.Any(), "lst").Return(nil, nil)
}

func (m *bookingMocks) expectWrites(tx usecase.Transaction) {
	m.accounts.EXPECT().AdjustBalance(gomock.Any(), tx, "acc", int64(-100), gomock.Any()).
		Return(&domain.BalanceChange{AccountID: "acc", PreviousBalance: 300, CurrentBalance: 200, Version: 2}, nil)
	m.bookings.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	m.entries.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	m.outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
}

func twoNights() usecase.CreateBookingInput {
	return usecase.CreateBookingInput{AccountID: "acc", ListingID: "lst", CheckIn: checkIn, CheckOut: nights(2)}
}

func TestBookingUseCase_CommitsOneTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBookingMocks(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	m.expectQuote()
	m.txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.expectWrites(tx)
	gomock.InOrder(
		tx.EXPECT().Commit(gomock.Any()).Return(nil),
		tx.EXPECT().Rollback(gomock.Any()).Return(nil),
	)

	result, err := m.useCase().CreateBooking(context.Background(), twoNights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Balance != 200 || result.Booking.TotalPrice != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBookingUseCase_InsufficientFundsSkipsWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBookingMocks(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	m.expectQuote()
	m.txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.accounts.EXPECT().AdjustBalance(gomock.Any(), tx, "acc", int64(-100), gomock.Any()).
		Return(nil, domain.ErrInsufficientFunds)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	// No Create calls on bookings, entries or outbox, and no Commit.

	_, err := m.useCase().CreateBooking(context.Background(), twoNights())
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestBookingUseCase_RetriesConflictWithFreshTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBookingMocks(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)
	first := mocks.NewMockTransaction(ctrl)
	second := mocks.NewMockTransaction(ctrl)

	conflict := errors.Mark(errors.New("could not serialize access"), domain.ErrConflict)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, op func() error) error {
			if err := op(); !errors.Is(err, domain.ErrConflict) {
				t.Fatalf("expected conflict on first attempt, got %v", err)
			}
			return op()
		})

	m.expectQuote()
	gomock.InOrder(
		m.txMgr.EXPECT().Begin(gomock.Any()).Return(first, nil),
		m.txMgr.EXPECT().Begin(gomock.Any()).Return(second, nil),
	)
	m.expectWrites(first)
	first.EXPECT().Commit(gomock.Any()).Return(conflict)
	first.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.expectWrites(second)
	second.EXPECT().Commit(gomock.Any()).Return(nil)
	second.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := m.useCase().WithRetrier(retrier)
	if _, err := uc.CreateBooking(context.Background(), twoNights()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBookingUseCase_SurfacesExhaustedConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBookingMocks(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	m.expectQuote()
	m.txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.accounts.EXPECT().AdjustBalance(gomock.Any(), tx, "acc", int64(-100), gomock.Any()).
		Return(nil, errors.Mark(errors.New("deadlock detected"), domain.ErrConflict))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	_, err := m.useCase().CreateBooking(context.Background(), twoNights())
	if !errors.Is(err, domain.ErrConflict) || !domain.IsRetryable(err) {
		t.Fatalf("expected retryable conflict, got %v", err)
	}
}

func TestBookingUseCase_DeleteLocksBookingBeforeAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBookingMocks(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	booking := &domain.Booking{ID: "bk", AccountID: "acc", ListingID: "lst", CheckIn: checkIn, CheckOut: nights(2), TotalPrice: 100}

	m.txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	gomock.InOrder(
		m.bookings.EXPECT().Delete(gomock.Any(), tx, "bk").Return(booking, nil),
		m.accounts.EXPECT().AdjustBalance(gomock.Any(), tx, "acc", int64(100), gomock.Any()).
			Return(&domain.BalanceChange{AccountID: "acc", PreviousBalance: 200, CurrentBalance: 300, Version: 3}, nil),
		m.entries.EXPECT().Create(gomock.Any(), tx, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ usecase.Transaction, e *domain.Entry) error {
				if e.Kind != domain.EntryKindBookingCredit || e.Amount != 100 {
					t.Fatalf("unexpected entry: %+v", e)
				}
				return nil
			}),
		m.outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil),
		tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	result, err := m.useCase().DeleteBooking(context.Background(), "bk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Balance != 300 {
		t.Fatalf("expected balance 300, got %d", result.Balance)
	}
}

func TestBookingUseCase_SameLengthRescheduleReadsBalanceUnderLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newBookingMocks(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	booking := &domain.Booking{ID: "bk", AccountID: "acc", ListingID: "lst", CheckIn: checkIn, CheckOut: nights(2), TotalPrice: 100}
	in, out := nights(5), nights(7)

	m.txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	m.expectQuote()
	gomock.InOrder(
		m.bookings.EXPECT().GetByIDForUpdate(gomock.Any(), tx, "bk").Return(booking, nil),
		m.bookings.EXPECT().UpdateSchedule(gomock.Any(), tx, gomock.Any()).Return(nil),
		m.accounts.EXPECT().GetByIDForUpdate(gomock.Any(), tx, "acc").
			Return(&domain.Account{ID: "acc", PointsBalance: 200}, nil),
		tx.EXPECT().Commit(gomock.Any()).Return(nil),
	)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	// No AdjustBalance, no entry, no event and no pool read of the account.

	result, err := m.useCase().UpdateBooking(context.Background(), "bk", usecase.UpdateBookingInput{CheckIn: &in, CheckOut: &out})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Balance != 200 || !result.Booking.CheckIn.Equal(in) || result.Booking.TotalPrice != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

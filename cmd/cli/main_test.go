package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestBookingsCreate_SendsRequest(t *testing.T) {
	var got dto.CreateBookingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bookings/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.BookingResultResponse{
			Booking: &dto.BookingResponse{ID: "bkg-1", TotalPrice: 60},
			Balance: 40,
		})
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--token", "tok",
		"bookings", "create", "acc-1", "lst-1", "2024-06-01", "2024-06-03", "--price", "60")
	require.NoError(t, err)

	assert.Equal(t, "acc-1", got.AccountID)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), got.CheckOut)
	require.NotNil(t, got.TotalPrice)
	assert.Equal(t, int64(60), *got.TotalPrice)
	assert.Contains(t, out, `"balance": 40`)
}

func TestBookingsCreate_OmitsPriceWhenNotGiven(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"booking":{"id":"bkg-1"},"balance":0}`))
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "bookings", "create", "acc-1", "lst-1", "2024-06-01", "2024-06-03")
	require.NoError(t, err)
	assert.NotContains(t, raw, "total_price")
}

func TestBookingsCreate_RejectsBadDate(t *testing.T) {
	_, err := execute(t, "--url", "http://127.0.0.1:1", "bookings", "create", "acc-1", "lst-1", "June 1st", "2024-06-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestBookingsCancel_ReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"booking not found"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "bookings", "cancel", "bkg-404")
	require.Error(t, err)
	assert.Equal(t, "booking not found (status 404)", err.Error())
}

func TestBookingsList_BuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acc-1", r.URL.Query().Get("account_id"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"bookings":[],"count":0}`))
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "bookings", "list", "--account", "acc-1", "--limit", "5")
	require.NoError(t, err)
}

func TestAccountsGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/accounts/acc-1/points", r.URL.Path)
		var req dto.GrantPointsRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(250), req.Points)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ent-1","account_id":"acc-1","amount":250,"kind":"grant"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "accounts", "grant", "acc-1", "250")
	require.NoError(t, err)
	assert.Contains(t, out, `"amount": 250`)

	_, err = execute(t, "--url", srv.URL, "accounts", "grant", "acc-1", "lots")
	assert.Error(t, err)
}

func TestLedgerConsistency(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"consistent","consistent":true,"checked_at":"2024-06-01T00:00:00Z","accounts_checked":3,"discrepancies":[]}`))
		}))
		defer srv.Close()

		out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
		require.NoError(t, err)
		assert.Contains(t, out, "PASSED (3 accounts)")
	})

	t.Run("inconsistent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"status":"inconsistent","consistent":false,"checked_at":"2024-06-01T00:00:00Z","discrepancies":[{"account_id":"acc-1","recorded_balance":10,"journal_balance":40}]}`))
		}))
		defer srv.Close()

		out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
		require.Error(t, err)
		assert.Contains(t, out, "acc-1: recorded=10 journal=40")
	})
}

func TestTokenIssue(t *testing.T) {
	out, err := execute(t, "token", "issue", "acc-1", "--secret", "s3cret", "--role", "admin")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("s3cret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.User().ID)
	assert.True(t, claims.User().IsAdmin())

	_, err = execute(t, "token", "issue", "acc-1", "--secret", "s3cret", "--role", "root")
	assert.Error(t, err)
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("2024-06-01T15:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Hour())
}

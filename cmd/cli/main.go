package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/auth"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/logger"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres"
)

const dateLayout = "2006-01-02"

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bookingledger",
		Short:         "Booking ledger CLI tool",
		Long:          `A command line interface for the booking ledger API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("BOOKINGLEDGER_URL", "http://localhost:8080"), "Base URL of the booking ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("BOOKINGLEDGER_TOKEN"), "Bearer token sent with API requests")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountsCmd(opts),
		bookingsCmd(opts),
		ledgerCmd(opts),
		tokenCmd(),
		migrateCmd(),
	)

	return rootCmd
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Account operations"}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an account and its points balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountResponse
			if err := newAPIClient(opts).do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListAccountsResponse
			path := fmt.Sprintf("/api/v1/accounts/?limit=%d&offset=%d", limit, offset)
			if err := newAPIClient(opts).do(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	grant := &cobra.Command{
		Use:   "grant <id> <points>",
		Short: "Grant points to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return errors.Newf("invalid points %q", args[1])
			}
			var resp dto.EntryResponse
			body := dto.GrantPointsRequest{Points: points}
			if err := newAPIClient(opts).do(http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/points", body, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.AddCommand(get, list, grant)
	return cmd
}

func bookingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "bookings", Short: "Booking operations"}

	var price int64
	create := &cobra.Command{
		Use:   "create <account-id> <listing-id> <check-in> <check-out>",
		Short: "Book a listing, paying with points",
		Long:  "Book a listing. Dates are YYYY-MM-DD or RFC3339. Without --price the quoted price is charged.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkIn, checkOut, err := parseStay(args[2], args[3])
			if err != nil {
				return err
			}
			req := dto.CreateBookingRequest{
				AccountID: args[0],
				ListingID: args[1],
				CheckIn:   checkIn,
				CheckOut:  checkOut,
			}
			if cmd.Flags().Changed("price") {
				req.TotalPrice = &price
			}
			var resp dto.BookingResultResponse
			if err := newAPIClient(opts).do(http.MethodPost, "/api/v1/bookings/", req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	create.Flags().Int64Var(&price, "price", 0, "Total price the guest agrees to pay")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BookingResponse
			if err := newAPIClient(opts).do(http.MethodGet, "/api/v1/bookings/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	var accountID, listingID string
	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if accountID != "" {
				q.Set("account_id", accountID)
			}
			if listingID != "" {
				q.Set("listing_id", listingID)
			}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			var resp dto.ListBookingsResponse
			if err := newAPIClient(opts).do(http.MethodGet, "/api/v1/bookings/?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	list.Flags().StringVar(&accountID, "account", "", "Only bookings made by this account")
	list.Flags().StringVar(&listingID, "listing", "", "Only bookings of this listing")
	list.Flags().IntVar(&limit, "limit", 20, "Page size")
	list.Flags().IntVar(&offset, "offset", 0, "Page offset")

	var newPrice int64
	reschedule := &cobra.Command{
		Use:   "reschedule <id> <check-in> <check-out>",
		Short: "Move a booking to new dates, settling the price difference",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			checkIn, checkOut, err := parseStay(args[1], args[2])
			if err != nil {
				return err
			}
			req := dto.UpdateBookingRequest{CheckIn: &checkIn, CheckOut: &checkOut}
			if cmd.Flags().Changed("price") {
				req.TotalPrice = &newPrice
			}
			var resp dto.BookingResultResponse
			if err := newAPIClient(opts).do(http.MethodPatch, "/api/v1/bookings/"+url.PathEscape(args[0]), req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	reschedule.Flags().Int64Var(&newPrice, "price", 0, "New total price")

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Delete a booking and refund its price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BookingResultResponse
			if err := newAPIClient(opts).do(http.MethodDelete, "/api/v1/bookings/"+url.PathEscape(args[0]), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.AddCommand(create, get, list, reschedule, cancel)
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{Use: "ledger", Short: "Ledger operations"}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			err := newAPIClient(opts).do(http.MethodGet, "/api/v1/ledger/consistency", nil, &resp)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				if err := json.Unmarshal(apiErr.Body, &resp); err != nil {
					return errors.Wrap(err, "parse response")
				}
			} else if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !resp.Consistent {
				fmt.Fprintf(out, "Consistency check FAILED (%d discrepancies)\n", len(resp.Discrepancies))
				for _, d := range resp.Discrepancies {
					fmt.Fprintf(out, "  %s: recorded=%d journal=%d\n", d.AccountID, d.RecordedBalance, d.JournalBalance)
				}
				return errors.New("ledger is inconsistent")
			}

			fmt.Fprintf(out, "Consistency check PASSED (%d accounts)\n", resp.AccountsChecked)
			fmt.Fprintf(out, "Checked at: %s\n", resp.CheckedAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.AddCommand(consistency)
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Token operations"}

	var (
		secret   string
		role     string
		email    string
		duration time.Duration
	)
	issue := &cobra.Command{
		Use:   "issue <account-id>",
		Short: "Sign a bearer token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			user := &domain.User{ID: args[0], Email: email, Role: domain.Role(role)}
			token, err := auth.NewJWTManager(secret, duration).Generate(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	issue.Flags().StringVar(&role, "role", string(domain.RoleUser), "Role claim (user or admin)")
	issue.Flags().StringVar(&email, "email", "", "Email claim")
	issue.Flags().DurationVar(&duration, "ttl", 24*time.Hour, "Token lifetime")

	cmd.AddCommand(issue)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{Use: "migrate", Short: "Database migrations"}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")

	log := logger.New(logger.Config{Level: "info", Format: "console"})

	requireURL := func() error {
		if databaseURL == "" {
			return errors.New("--database-url or DATABASE_URL is required")
		}
		return nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireURL(); err != nil {
				return err
			}
			return postgres.RunMigrations(databaseURL, log)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireURL(); err != nil {
				return err
			}
			return postgres.RunMigrationsDown(databaseURL, log)
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireURL(); err != nil {
				return err
			}
			v, dirty, err := postgres.MigrationVersion(databaseURL, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

// apiError is a non-2xx API response.
type apiError struct {
	Status int
	Body   []byte
}

func (e *apiError) Error() string {
	var resp dto.ErrorResponse
	if err := json.Unmarshal(e.Body, &resp); err == nil && resp.Error != "" {
		if resp.Message != "" {
			return fmt.Sprintf("%s (status %d): %s", resp.Error, e.Status, resp.Message)
		}
		return fmt.Sprintf("%s (status %d)", resp.Error, e.Status)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		baseURL: opts.baseURL,
		token:   opts.token,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Body: data}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "parse response")
	}
	return nil
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := parseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := parseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.Newf("invalid date %q: want YYYY-MM-DD or RFC3339", value)
	}
	return t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nomadhomes/bookingledger/internal/adapter/http/dto"
	"github.com/nomadhomes/bookingledger/internal/domain"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// On failure the error response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "validation failed", err.Error())
			return false
		}
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = "failed on '" + fe.Tag() + "'"
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation failed",
			Details: details,
		})
		return false
	}
	return true
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrPriceMismatch),
		errors.Is(err, domain.ErrPriceImmutable),
		errors.Is(err, domain.ErrInvalidNightlyPrice),
		errors.Is(err, domain.ErrInvalidPoints),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidPlan),
		errors.Is(err, domain.ErrInvalidTitle):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDatesUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the mapped status for err. Server errors are logged
// and their cause is not echoed to the client.
func handleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := mapDomainError(err)

	if domain.IsRetryable(err) {
		w.Header().Set("Retry-After", "1")
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg(message)

		if status == http.StatusInternalServerError {
			writeError(w, status, message, "")
			return
		}
	}

	writeError(w, status, message, err.Error())
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseTimeQuery parses an RFC 3339 timestamp or a plain date (midnight UTC).
func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, errors.Newf("%s is required", key)
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, val)
	if err != nil {
		return time.Time{}, errors.Newf("%s must be a date or RFC 3339 timestamp", key)
	}
	return t, nil
}

// forbidden writes a 403 response.
func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "forbidden", domain.ErrForbidden.Error())
}

// actingUser returns the authenticated principal. Without one (auth disabled)
// every capability check passes.
func actingUser(r *http.Request) (*domain.User, bool) {
	return domain.UserFromContext(r.Context())
}

// requireAdmin reports whether the request may run an admin-only operation.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if user, ok := actingUser(r); ok && !user.IsAdmin() {
		forbidden(w)
		return false
	}
	return true
}

// requireActFor reports whether the request may act for accountID.
func requireActFor(w http.ResponseWriter, r *http.Request, accountID string) bool {
	if user, ok := actingUser(r); ok && !user.CanActFor(accountID) {
		forbidden(w)
		return false
	}
	return true
}

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/auth"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/metrics"
)

// TokenVerifier validates bearer tokens. *auth.JWTManager satisfies it.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware creates an authentication middleware. The verified principal
// is stored with domain.ContextWithUser for the handlers' capability checks.
func AuthMiddleware(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	fail := func(w http.ResponseWriter, reason, message string) {
		if m != nil {
			m.AuthFailures.WithLabelValues(reason).Inc()
		}
		writeJSONError(w, http.StatusUnauthorized, message)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				fail(w, "missing", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail(w, "malformed", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					fail(w, "expired", "token has expired")
					return
				}
				fail(w, "invalid", "invalid token")
				return
			}

			ctx := domain.ContextWithUser(r.Context(), claims.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

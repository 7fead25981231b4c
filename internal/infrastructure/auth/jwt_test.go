package auth_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nomadhomes/bookingledger/internal/domain"
	"github.com/nomadhomes/bookingledger/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:    "acc-123",
		Email: "guest@example.com",
		Role:  domain.RoleAdmin,
	}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	got := claims.User()
	if got.ID != user.ID || got.Email != user.Email || got.Role != user.Role {
		t.Fatalf("expected claims to match user, got %+v", got)
	}
	if claims.Issuer != auth.Issuer {
		t.Fatalf("expected issuer %q, got %q", auth.Issuer, claims.Issuer)
	}
}

func TestJWTManagerGenerateRejectsBadUsers(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	if _, err := manager.Generate(&domain.User{Role: domain.RoleUser}); err == nil {
		t.Fatalf("expected error for empty subject")
	}
	if _, err := manager.Generate(&domain.User{ID: "acc-1", Role: "root"}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected invalid role, got %v", err)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	sign := func(t *testing.T, secret string, method jwt.SigningMethod, claims auth.Claims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	valid := func() auth.Claims {
		return auth.Claims{
			Role: domain.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    auth.Issuer,
				Subject:   "acc-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	badRole := valid()
	badRole.Role = "root"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "expired", token: sign(t, "secret", jwt.SigningMethodHS256, expired), want: domain.ErrExpiredToken},
		{name: "wrong secret", token: sign(t, "other", jwt.SigningMethodHS256, valid()), want: domain.ErrInvalidToken},
		{name: "wrong algorithm", token: sign(t, "secret", jwt.SigningMethodHS512, valid()), want: domain.ErrInvalidToken},
		{name: "wrong issuer", token: sign(t, "secret", jwt.SigningMethodHS256, wrongIssuer), want: domain.ErrInvalidToken},
		{name: "missing expiry", token: sign(t, "secret", jwt.SigningMethodHS256, noExpiry), want: domain.ErrInvalidToken},
		{name: "unknown role", token: sign(t, "secret", jwt.SigningMethodHS256, badRole), want: domain.ErrInvalidToken},
		{name: "garbage", token: "not-a-token", want: domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

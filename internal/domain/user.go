package domain

import (
	"context"

	"github.com/cockroachdb/errors"
)

// User is the authenticated principal calling the API. Its ID is an account ID.
type User struct {
	ID    string
	Email string
	Role  Role
}

// Role represents a user's access level
type Role string

const (
	// RoleUser books homes and manages its own listings and bookings
	RoleUser Role = "user"

	// RoleAdmin may act for any account
	RoleAdmin Role = "admin"
)

var validRoles = map[Role]bool{
	RoleUser:  true,
	RoleAdmin: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanActFor checks if the user may spend or read on behalf of accountID.
func (u *User) CanActFor(accountID string) bool {
	return u.IsAdmin() || (u != nil && u.ID == accountID)
}

// CanManageListing checks if the user owns the listing or is an admin.
func (u *User) CanManageListing(listing *Listing) bool {
	return u.IsAdmin() || (u != nil && listing != nil && u.ID == listing.OwnerID)
}

// CanManageBooking allows the guest, the home owner and admins.
func (u *User) CanManageBooking(booking *Booking, listing *Listing) bool {
	if u.CanActFor(booking.AccountID) {
		return true
	}
	return u.CanManageListing(listing)
}

type userContextKey struct{}

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from ctx.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrForbidden    = errors.New("operation not permitted for this user")
)

package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrInvalidTitle       = errors.New("invalid listing title")
)

// Validation constants
const (
	MaxNameLength   = 255
	MinNameLength   = 1
	MaxPointsAmount = int64(1_000_000_000)
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	return validateName(name, ErrInvalidAccountName)
}

// ValidateListingTitle validates listing title
func ValidateListingTitle(title string) error {
	return validateName(title, ErrInvalidTitle)
}

func validateName(name string, sentinel error) error {
	name = strings.TrimSpace(name)

	if len(name) < MinNameLength {
		return fmt.Errorf("%w: cannot be empty", sentinel)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: exceeds %d characters", sentinel, MaxNameLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePoints validates a points grant.
func ValidatePoints(points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	if points > MaxPointsAmount {
		return fmt.Errorf("%w: maximum is %d", ErrInvalidPoints, MaxPointsAmount)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

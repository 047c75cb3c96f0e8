// Package domain holds the error taxonomy shared by the marketplace layers.
package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrAccountLocked       = errors.New("account temporarily locked")
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrSessionExpired      = errors.New("session expired")
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrUserNotFound        = errors.New("user not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrProjectLimitReached = errors.New("project view limit reached")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidCategory     = errors.New("invalid listing category")
)

// AccountLockedError is returned while an email is locked out after repeated
// failed logins. It matches ErrAccountLocked with errors.Is.
type AccountLockedError struct {
	Email      string
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *AccountLockedError) Is(target error) bool { return target == ErrAccountLocked }

// Unavailable wraps a transport or storage failure as a retryable provider error.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrProviderUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

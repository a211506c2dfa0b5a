package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrRateLimited        = errors.New("too many failed attempts")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthorized       = errors.New("authentication required")
	ErrRememberMeNotFound = errors.New("remember-me token not found")

	ErrTokenInvalid          = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")

	ErrConfiguration = errors.New("invalid configuration")
)

// RateLimitError is returned while a source is locked out. It matches
// ErrRateLimited with errors.Is.
type RateLimitError struct {
	RemainingMinutes int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry in %d minutes", ErrRateLimited, e.RemainingMinutes)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrDuplicateUser is returned when signing up with an email that is already registered.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both cases share this error so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingToken is returned when refresh is called without a token.
	ErrMissingToken = errors.New("refresh token required")

	// ErrInvalidToken is returned when a refresh token fails signature, expiry or rotation checks.
	ErrInvalidToken = errors.New("invalid refresh token")

	// ErrValidation is returned when signup input is malformed. It is wrapped with the detail.
	ErrValidation = errors.New("validation failed")

	// ErrTooManyAttempts is returned when login attempts for a client exceed the configured window.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrUserNotFound is returned by repositories when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrRefreshTokenMismatch is returned by repositories when a compare-and-swap
	// of the stored refresh token finds a different value than expected.
	ErrRefreshTokenMismatch = errors.New("stored refresh token does not match")
)

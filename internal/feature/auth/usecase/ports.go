package usecase

import (
	"context"

	"todo_backend/internal/feature/auth/domain/entity"
)

// UserRepository abstracts the credential store.
type UserRepository interface {
	// Create persists a new user. It returns ErrDuplicateUser when the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns the user with the given email, including the password hash.
	// It returns ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns the user with the given ID.
	// It returns ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// SetRefreshToken unconditionally overwrites the stored refresh token.
	SetRefreshToken(ctx context.Context, id, token string) error

	// RotateRefreshToken replaces the stored refresh token with next only if it
	// currently equals current. It returns ErrRefreshTokenMismatch otherwise.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
}

// TokenPair is a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer creates and verifies signed tokens bound to a user ID.
type TokenIssuer interface {
	// IssuePair creates a new access token and refresh token for the user.
	IssuePair(userID string) (TokenPair, error)

	// VerifyRefreshToken validates signature and expiry and returns the user ID.
	VerifyRefreshToken(token string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)

	// Verify reports whether password matches hash. A mismatch is (false, nil);
	// an error means the stored hash is malformed.
	Verify(ctx context.Context, password, hash string) (bool, error)

	// DummyHash returns a valid hash that matches no real password.
	DummyHash() string
}

// LoginThrottle limits repeated login attempts per client key.
type LoginThrottle interface {
	// Allow records an attempt and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)

	// Reset clears the attempt counter after a successful login.
	Reset(ctx context.Context, key string) error
}

// Package jwtmw issues and verifies the service's JWTs and provides the gin
// middleware that guards routes with an access token.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"todo_backend/internal/config"
	"todo_backend/internal/feature/auth/usecase"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// ErrInvalidToken is returned for any signature, expiry, type or format failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer creates and verifies access and refresh tokens.
// Access and refresh tokens are signed with distinct secrets.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

var _ usecase.TokenIssuer = (*Issuer)(nil)

// NewIssuer creates an Issuer from the token configuration.
func NewIssuer(cfg config.TokenConfig) (*Issuer, error) {
	switch {
	case cfg.AccessSecret == "" || cfg.RefreshSecret == "":
		return nil, errors.New("token secrets must not be empty")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh secrets must differ")
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

func (i *Issuer) sign(userID, typ string, secret []byte, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueAccessToken creates a short-lived access token for the user.
func (i *Issuer) IssueAccessToken(userID string) (string, error) {
	return i.sign(userID, typeAccess, i.accessSecret, i.accessTTL)
}

// IssueRefreshToken creates a long-lived refresh token for the user.
func (i *Issuer) IssueRefreshToken(userID string) (string, error) {
	return i.sign(userID, typeRefresh, i.refreshSecret, i.refreshTTL)
}

// IssuePair creates an access token and a refresh token for the user.
func (i *Issuer) IssuePair(userID string) (usecase.TokenPair, error) {
	access, err := i.IssueAccessToken(userID)
	if err != nil {
		return usecase.TokenPair{}, err
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return usecase.TokenPair{}, err
	}
	return usecase.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) verify(tokenStr, typ string, secret []byte) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return "", fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// VerifyAccessToken validates an access token and returns its user ID.
func (i *Issuer) VerifyAccessToken(token string) (string, error) {
	return i.verify(token, typeAccess, i.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its user ID.
func (i *Issuer) VerifyRefreshToken(token string) (string, error) {
	return i.verify(token, typeRefresh, i.refreshSecret)
}

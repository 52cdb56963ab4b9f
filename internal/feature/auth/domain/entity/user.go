// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account of the to-do application.
// It is the only persistent record owned by the auth feature.
type User struct {
	// ID is an opaque identifier assigned once at signup.
	ID string

	// Username is the display name. It is not unique.
	Username string

	// Email is used for authentication and is unique across all users.
	Email string

	// PasswordHash is the bcrypt hash of the password, never the plaintext.
	PasswordHash string `json:"-"`

	// Avatar is either an image URL or inline image data. Empty by default.
	Avatar string

	// RefreshToken holds the most recently issued refresh token.
	// Issuing a new one revokes the previous one.
	RefreshToken string `json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the subset of User that may be returned to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// Public returns the client-facing view of the user.
// Credentials and the stored refresh token are never part of it.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

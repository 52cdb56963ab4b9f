package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public(t *testing.T) {
	u := &User{
		ID:           "u-1",
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$hash",
		Avatar:       "https://example.com/a.png",
		RefreshToken: "refresh",
	}

	pub := u.Public()

	assert.Equal(t, PublicUser{
		ID:       "u-1",
		Username: "alice",
		Email:    "alice@x.com",
		Avatar:   "https://example.com/a.png",
	}, pub)
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	u := &User{ID: "u-1", PasswordHash: "$2a$10$hash", RefreshToken: "refresh"}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.NotContains(t, string(b), "refresh")
}

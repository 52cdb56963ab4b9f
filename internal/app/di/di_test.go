package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_backend/internal/config"
	"todo_backend/internal/feature/auth/usecase"
)

func testConfig() config.Config {
	return config.Config{
		BcryptCost: 4,
		Token: config.TokenConfig{
			AccessSecret:  "access-secret",
			AccessTTL:     15 * time.Minute,
			RefreshSecret: "refresh-secret",
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Throttle: config.ThrottleConfig{MaxAttempts: 2, Window: time.Minute},
	}
}

func TestNewUserStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := NewUserStore(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "todo.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	assert.Equal(t, "db", store.Check.Name)
	assert.NoError(t, store.Check.Ping(ctx))

	_, err = store.Repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestNewUserStore_UnsupportedDriver(t *testing.T) {
	_, err := NewUserStore(context.Background(), config.DatabaseConfig{Driver: "oracle"})

	assert.Error(t, err)
}

func TestNewLoginThrottle(t *testing.T) {
	assert.Nil(t, NewLoginThrottle(nil, config.ThrottleConfig{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	assert.NotNil(t, NewLoginThrottle(rdb, config.ThrottleConfig{MaxAttempts: 1, Window: time.Minute}))
}

func TestNewAuthUsecase(t *testing.T) {
	t.Run("equal secrets are rejected", func(t *testing.T) {
		cfg := testConfig()
		cfg.Token.RefreshSecret = cfg.Token.AccessSecret

		_, _, err := NewAuthUsecase(cfg, nil, nil)

		assert.Error(t, err)
	})

	t.Run("wires throttle when redis is available", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewUserStore(ctx, config.DatabaseConfig{
			Driver: config.DriverSQLite,
			DSN:    filepath.Join(t.TempDir(), "todo.db"),
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close(ctx) })

		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		auth, issuer, err := NewAuthUsecase(testConfig(), store.Repo, rdb)
		require.NoError(t, err)
		require.NotNil(t, issuer)

		for i := 0; i < 2; i++ {
			_, err := auth.Login(ctx, "a@x.io", "wrong", "127.0.0.1")
			assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
		}
		_, err = auth.Login(ctx, "a@x.io", "wrong", "127.0.0.1")
		assert.ErrorIs(t, err, usecase.ErrTooManyAttempts)
	})
}

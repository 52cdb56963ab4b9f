// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"todo_backend/internal/config"
	authadapters "todo_backend/internal/feature/auth/adapters"
	"todo_backend/internal/feature/auth/usecase"
	"todo_backend/internal/platform/db"
	healthhandler "todo_backend/internal/platform/http/handler"
	"todo_backend/internal/platform/mongodb"
)

// UserStore bundles the selected credential store with its health check and cleanup.
type UserStore struct {
	Repo  usecase.UserRepository
	Check healthhandler.Check
	Close func(ctx context.Context) error
}

// NewUserStore opens the credential store selected by cfg.Driver.
// MongoDB gets its unique email index; SQL drivers are migrated by db.Open.
func NewUserStore(ctx context.Context, cfg config.DatabaseConfig) (*UserStore, error) {
	if cfg.Driver == config.DriverMongo {
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		repo := authadapters.NewUserMongo(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &UserStore{
			Repo:  repo,
			Check: healthhandler.Check{Name: "mongo", Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
			Close: client.Disconnect,
		}, nil
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &UserStore{
		Repo:  authadapters.NewUserGorm(gdb),
		Check: healthhandler.Check{Name: "db", Ping: sqlPinger(gdb)},
		Close: func(context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

func sqlPinger(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("db handle: %w", err)
		}
		return sqlDB.PingContext(ctx)
	}
}

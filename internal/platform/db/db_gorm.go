// Package db はSQL版クレデンシャルストアが使うGORM接続を開きます。
package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"todo_backend/internal/config"
	"todo_backend/internal/feature/auth/adapters"
)

const (
	// connectTimeout は起動時にネットワーク越しのDBへ再接続を試みる上限時間です。
	connectTimeout = 60 * time.Second
	retryInterval  = 2 * time.Second
)

// Opener はDSNからGORM接続を開きます。
type Opener func(dsn string) (*gorm.DB, error)

// gormConfig はユニーク制約違反をgorm.ErrDuplicatedKeyに変換する設定を返します。
// GORMのログはslogに流し、未検出エラーは記録せず、SQLはプレースホルダーのまま出力します。
func gormConfig(l *slog.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.NewSlogLogger(l, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
	}
}

// MySQLDSN はDATETIME列をtime.Timeで読めるようparseTimeを強制します。
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// NewOpener は指定されたSQLドライバー用のOpenerを返します。
func NewOpener(driver string) (Opener, error) {
	switch driver {
	case config.DriverMySQL:
		return func(dsn string) (*gorm.DB, error) {
			normalized, err := MySQLDSN(dsn)
			if err != nil {
				return nil, err
			}
			return gorm.Open(gmysql.Open(normalized), gormConfig(slog.Default()))
		}, nil
	case config.DriverPostgres:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig(slog.Default()))
		}, nil
	case config.DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gormConfig(slog.Default()))
		}, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// ConnectWithRetry は成功するかtimeoutを過ぎるまでopenerを呼び出します。
// timeoutが0の場合は1回だけ試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if !time.Now().Add(retryInterval).Before(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// Open は設定されたSQLデータベースに接続し、usersテーブルをマイグレーションします。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	opener, err := NewOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}

	timeout := connectTimeout
	if cfg.Driver == config.DriverSQLite {
		timeout = 0
	}

	db, err := ConnectWithRetry(cfg.DSN, timeout, opener)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLiteは書き込みが1本のみ。同時登録時のSQLITE_BUSYを避けるため接続を1つに制限
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&adapters.UserModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

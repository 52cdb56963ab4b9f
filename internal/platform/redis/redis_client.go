// Package redis はログイン試行回数制限に使うRedisへ接続します。
package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"todo_backend/internal/config"
)

// NewRedisClient はcfgからクライアントを生成し、接続確認を行います。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr)
	return rdb, nil
}

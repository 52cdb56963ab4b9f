package di

import (
	"github.com/redis/go-redis/v9"

	"todo_backend/internal/config"
	authhandler "todo_backend/internal/feature/auth/transport/handler"
	"todo_backend/internal/feature/auth/usecase"
	jwtmw "todo_backend/internal/platform/jwt"
	"todo_backend/internal/platform/password"
	"todo_backend/internal/platform/throttle"
)

// NewLoginThrottle returns a Redis-backed throttle, or nil when Redis is unavailable.
func NewLoginThrottle(rdb *redis.Client, cfg config.ThrottleConfig) usecase.LoginThrottle {
	if rdb == nil {
		return nil
	}
	return throttle.NewLoginThrottleRedis(rdb, "login_attempts", cfg.MaxAttempts, cfg.Window)
}

// NewAuthUsecase wires the auth usecase with its issuer, hasher and optional throttle.
// The issuer is returned too so the router can verify access tokens.
func NewAuthUsecase(cfg config.Config, users usecase.UserRepository, rdb *redis.Client) (authhandler.AuthUsecase, *jwtmw.Issuer, error) {
	issuer, err := jwtmw.NewIssuer(cfg.Token)
	if err != nil {
		return nil, nil, err
	}
	hasher := password.NewBcryptHasher(cfg.BcryptCost, 0)

	var opts []usecase.Option
	if t := NewLoginThrottle(rdb, cfg.Throttle); t != nil {
		opts = append(opts, usecase.WithLoginThrottle(t))
	}
	return usecase.NewAuthUsecase(users, issuer, hasher, opts...), issuer, nil
}

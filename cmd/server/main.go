package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"todo_backend/internal/app/di"
	"todo_backend/internal/app/router"
	"todo_backend/internal/config"
	authhandler "todo_backend/internal/feature/auth/transport/handler"
	"todo_backend/internal/logging"
	healthhandler "todo_backend/internal/platform/http/handler"
	"todo_backend/internal/platform/metrics"
	infraredis "todo_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.IsProduction(), cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Credential store
	store, err := di.NewUserStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("failed to close credential store", "error", err)
		}
	}()
	checks := []healthhandler.Check{store.Check}

	// Redis is optional: without it logins are not throttled.
	var rdb *redisv9.Client
	if cfg.Redis.Addr != "" {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			logger.Warn("Redis unavailable. Running without login throttling.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					logger.Error("failed to close Redis client", "error", err)
				}
			}()
			checks = append(checks, healthhandler.Check{
				Name:  "redis",
				Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			})
		}
	}

	authUC, issuer, err := di.NewAuthUsecase(cfg, store.Repo, rdb)
	if err != nil {
		return err
	}

	engine := router.NewRouter(router.Deps{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Auth:           authhandler.NewAuthHandler(authUC),
		Verifier:       issuer,
		Health:         healthhandler.NewHealthHandler(checks...),
		Metrics:        metrics.NewHTTPMetrics(),
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      engine,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

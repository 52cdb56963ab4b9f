// Package router はginエンジンとルーティングを組み立てます。
package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "todo_backend/internal/feature/auth/transport/handler"
	"todo_backend/internal/logging"
	healthhandler "todo_backend/internal/platform/http/handler"
	jwtmw "todo_backend/internal/platform/jwt"
	"todo_backend/internal/platform/metrics"
)

// authPrefixes は認証ルートのマウント先です。
// モバイルクライアントは /auth を、ドキュメント上のAPIは /api/auth を使います。
var authPrefixes = []string{"/auth", "/api/auth"}

// Deps はルーターが必要とする依存関係をまとめたものです。
type Deps struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Auth           *authhandler.AuthHandler
	Verifier       jwtmw.AccessVerifier
	Health         *healthhandler.HealthHandler
	Metrics        *metrics.HTTPMetrics
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
		ExposeHeaders: []string{logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter はginエンジンを生成します。
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(d.Metrics.Middleware())
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	// 認証不要
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)
	r.OPTIONS("/healthz", d.Health.Health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	for _, prefix := range authPrefixes {
		g := r.Group(prefix)
		g.POST("/signup", d.Auth.Signup)
		g.POST("/login", d.Auth.Login)
		g.POST("/refresh-token", d.Auth.Refresh)

		// 有効なアクセストークンが必要
		g.GET("/me", jwtmw.AuthRequired(d.Verifier), d.Auth.Me)
	}

	return r
}

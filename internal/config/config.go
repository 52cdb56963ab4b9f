// Package config loads the service configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by DB_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// TokenConfig holds signing secrets and lifetimes for issued tokens.
type TokenConfig struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// DatabaseConfig selects and configures the credential store.
type DatabaseConfig struct {
	Driver   string // mongo, postgres, mysql or sqlite
	DSN      string // GORM DSN for the SQL drivers
	MongoURI string
	MongoDB  string
}

// RedisConfig configures the optional Redis connection. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
}

// ThrottleConfig limits login attempts per email and client.
type ThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Config is the immutable process-wide configuration.
type Config struct {
	Env                string
	Port               string
	LogLevel           string
	BcryptCost         int
	CORSAllowedOrigins []string
	Token              TokenConfig
	Database           DatabaseConfig
	Redis              RedisConfig
	Throttle           ThrottleConfig
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment. Missing values use defaults;
// missing or identical token secrets are an error.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("JWT_EXPIRE", "15m")
	v.SetDefault("REFRESH_TOKEN_EXPIRE", "7d")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "./todo.db")
	v.SetDefault("MONGO_DB", "todo")
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_WINDOW", "15m")

	accessTTL, err := ParseLifetime(v.GetString("JWT_EXPIRE"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRE: %w", err)
	}
	refreshTTL, err := ParseLifetime(v.GetString("REFRESH_TOKEN_EXPIRE"))
	if err != nil {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_EXPIRE: %w", err)
	}
	window, err := ParseLifetime(v.GetString("LOGIN_WINDOW"))
	if err != nil {
		return Config{}, fmt.Errorf("LOGIN_WINDOW: %w", err)
	}

	cfg := Config{
		Env:                v.GetString("APP_ENV"),
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Token: TokenConfig{
			AccessSecret:  v.GetString("JWT_SECRET"),
			AccessTTL:     accessTTL,
			RefreshSecret: v.GetString("REFRESH_TOKEN_SECRET"),
			RefreshTTL:    refreshTTL,
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:      v.GetString("DATABASE_DSN"),
			MongoURI: v.GetString("MONGO_URI"),
			MongoDB:  v.GetString("MONGO_DB"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Throttle: ThrottleConfig{
			MaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
			Window:      window,
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Token.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Token.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.Token.AccessSecret != "" && c.Token.AccessSecret == c.Token.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when DB_DRIVER=mongo"))
		}
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// ParseLifetime parses a duration such as "15m" or "12h", and additionally
// accepts a whole number of days such as "7d".
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var (
		d   time.Duration
		err error
	)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		var n int
		n, err = strconv.Atoi(days)
		d = time.Duration(n) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

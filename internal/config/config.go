package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingConfig marks startup configuration that is absent or unusable.
var ErrMissingConfig = errors.New("missing required configuration")

const (
	// DefaultTokenTTL is used when JWT_EXPIRES_IN is not set.
	DefaultTokenTTL = time.Hour
	// MinTokenTTL is the shortest accepted token lifetime.
	MinTokenTTL = time.Second
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values for the audit trail.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	// ApplicationName is reported to Postgres unless the DSN sets one.
	ApplicationName string
}

// RedisConfig holds Redis connection values for the login throttle.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dial, read and write so a slow Redis cannot stall logins.
	Timeout time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// Format is "json" (default) or "console".
	Format string
}

// AdminConfig is the single reference identity all logins are checked against.
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	Admin             AdminConfig
	JWTSecret         string
	JWTIssuer         string
	JWTAlgorithm      string
	TokenTTL          time.Duration
	MaxFailedAttempts int
	LockoutMinutes    int
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins string
}

// Load reads configuration from environment variables, applying defaults where possible.
// Missing admin credentials or signing key produce an error wrapping ErrMissingConfig.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ttl, err := ParseTTL(os.Getenv("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "worksphere-admin-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", getEnv("APP_PORT", "4000")),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Timeout:  time.Duration(getEnvAsInt("REDIS_TIMEOUT_MS", 500)) * time.Millisecond,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			Admin: AdminConfig{
				Email:        os.Getenv("ADMIN_EMAIL"),
				PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			},
			JWTSecret:         os.Getenv("JWT_SECRET"),
			JWTIssuer:         getEnv("JWT_ISSUER", "worksphere"),
			JWTAlgorithm:      getEnv("JWT_ALGORITHM", "HS256"),
			TokenTTL:          ttl,
			MaxFailedAttempts: getEnvAsInt("AUTH_MAX_FAILED_ATTEMPTS", 5),
			LockoutMinutes:    getEnvAsInt("AUTH_LOCKOUT_MINUTES", 15),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
	}

	cfg.Postgres.ApplicationName = cfg.App.Name

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every required auth setting that is empty.
func (a AuthConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Admin.Email) == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if strings.TrimSpace(a.Admin.PasswordHash) == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH")
	}
	if a.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// LockoutWindow returns how long failed attempts are remembered.
func (a AuthConfig) LockoutWindow() time.Duration {
	if a.LockoutMinutes <= 0 {
		return 0
	}
	return time.Duration(a.LockoutMinutes) * time.Minute
}

// ParseTTL accepts a Go duration ("90m", "1h"), bare seconds ("3600") or days ("7d").
// An empty value yields DefaultTokenTTL.
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTokenTTL, nil
	}

	var (
		ttl time.Duration
		err error
	)
	switch {
	case strings.HasSuffix(raw, "d"):
		var days int64
		days, err = strconv.ParseInt(strings.TrimSuffix(raw, "d"), 10, 64)
		ttl, err = scaleTTL(days, 24*time.Hour, raw, err)
	default:
		if secs, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
			ttl, err = scaleTTL(secs, time.Second, raw, nil)
		} else {
			ttl, err = time.ParseDuration(raw)
		}
	}
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	// exp is encoded in whole seconds.
	if ttl < MinTokenTTL {
		return 0, fmt.Errorf("duration must be at least %s, got %q", MinTokenTTL, raw)
	}
	return ttl, nil
}

func scaleTTL(n int64, unit time.Duration, raw string, err error) (time.Duration, error) {
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("duration out of range: %q", raw)
	}
	return time.Duration(n) * unit, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

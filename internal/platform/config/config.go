// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20

	// DefaultRetryMaxAttempts bounds storage retries on transient failures.
	DefaultRetryMaxAttempts = 5

	// DefaultRetryMaxDelay caps a single storage backoff.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultMaxOpenConns is the default database pool size.
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns is the default number of idle pooled connections.
	DefaultMaxIdleConns = 5

	// DefaultBreakerFailures opens the cache circuit after this many consecutive failures.
	DefaultBreakerFailures = 5

	// DefaultTokenExpireDays is the default bearer token lifetime.
	DefaultTokenExpireDays = 7

	// DefaultBcryptCost is the default password hashing cost.
	DefaultBcryptCost = 10

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// debugEnvironments expose fault details in error responses.
var debugEnvironments = []string{"local", "dev"}

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Database  DatabaseConfig  `koanf:"database"  validate:"required"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
	CORS      CORSConfig      `koanf:"cors"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// Debug reports whether error responses may carry fault details.
func (a AppConfig) Debug() bool {
	return slices.Contains(debugEnvironments, a.Environment)
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// DatabaseConfig selects and tunes the quote and user store.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"             validate:"required,oneof=postgres memory"`
	DSN             string        `koanf:"dsn"                validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `koanf:"max_open_conns"     validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"     validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	Retry           RetryConfig   `koanf:"retry"`
}

// RetryConfig bounds retries of transient storage failures.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxDelay        time.Duration `koanf:"max_delay"        validate:"required,gtefield=InitialInterval"`
}

// CacheConfig contains the Redis quote cache settings.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"     validate:"required_if=Enabled true,omitempty,hostname_port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"       validate:"min=0,max=15"`
	TTL      time.Duration `koanf:"ttl"      validate:"required_if=Enabled true"`

	// BreakerFailures consecutive Redis failures stop cache calls for BreakerCooldown.
	BreakerFailures int           `koanf:"breaker_failures" validate:"omitempty,min=1,max=100"`
	BreakerCooldown time.Duration `koanf:"breaker_cooldown"`
}

// AuthConfig contains bearer token settings.
type AuthConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Key        string `koanf:"key"         validate:"required_if=Enabled true,omitempty,min=32"`
	Issuer     string `koanf:"issuer"      validate:"required_if=Enabled true"`
	Audience   string `koanf:"audience"    validate:"required_if=Enabled true"`
	ExpireDays int    `koanf:"expire_days" validate:"min=1,max=365"`
	BcryptCost int    `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// TokenLifetime returns how long issued tokens stay valid.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.ExpireDays) * 24 * time.Hour
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotes-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotes.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotes-service",
		"telemetry.sampling_rate": 1.0,

		"database.driver":                 DriverMemory,
		"database.dsn":                    "",
		"database.max_open_conns":         DefaultMaxOpenConns,
		"database.max_idle_conns":         DefaultMaxIdleConns,
		"database.conn_max_lifetime":      "30m",
		"database.auto_migrate":           true,
		"database.retry.max_attempts":     DefaultRetryMaxAttempts,
		"database.retry.initial_interval": "200ms",
		"database.retry.max_delay":        DefaultRetryMaxDelay.String(),

		"cache.enabled":  false,
		"cache.addr":     "localhost:6379",
		"cache.password": "",
		"cache.db":       0,
		"cache.ttl":      "5m",

		"cache.breaker_failures": DefaultBreakerFailures,
		"cache.breaker_cooldown": "30s",

		"auth.enabled":     false,
		"auth.key":         "",
		"auth.issuer":      "quotes-service",
		"auth.audience":    "quotes-clients",
		"auth.expire_days": DefaultTokenExpireDays,
		"auth.bcrypt_cost": DefaultBcryptCost,

		"cors.allowed_origins": []string{},
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_ variables onto config keys.
// A double underscore separates levels so keys may keep single underscores:
// APP_DATABASE__RETRY__MAX_ATTEMPTS is database.retry.max_attempts, while
// APP_DATABASE_DSN is database.dsn.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
	if strings.Contains(key, "__") {
		return strings.ReplaceAll(key, "__", ".")
	}

	return strings.ReplaceAll(key, "_", ".")
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppTimezone       string        `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DeliveryAPIURL     string        `envconfig:"DELIVERY_API_URL" default:"http://localhost:3001/api"`
	DeliveryAPITimeout time.Duration `envconfig:"DELIVERY_API_TIMEOUT" default:"10s"`

	// PGDSN enables the audit trail when set.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	GotenbergURL     string        `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	GotenbergTimeout time.Duration `envconfig:"GOTENBERG_TIMEOUT" default:"30s"`
	CompanyName      string        `envconfig:"COMPANY_NAME" default:"SGRM Transportes"`

	ManifestArchiveCron string        `envconfig:"MANIFEST_ARCHIVE_CRON" default:"0 18 * * *"`
	ManifestArchiveTTL  time.Duration `envconfig:"MANIFEST_ARCHIVE_TTL" default:"168h"`
}

// LoadConfig reads configuration from environment variables, after
// loading a .env file from the working directory when one exists.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Location resolves AppTimezone.
func (c *Config) Location() (*time.Location, error) {
	return loadLocation(c.AppTimezone)
}

// CLIConfig is the subset of settings the command line tool needs. It has
// no session or CSRF secrets.
type CLIConfig struct {
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"pretty"`

	DeliveryAPIURL     string        `envconfig:"DELIVERY_API_URL" default:"http://localhost:3001/api"`
	DeliveryAPITimeout time.Duration `envconfig:"DELIVERY_API_TIMEOUT" default:"10s"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	GotenbergURL     string        `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	GotenbergTimeout time.Duration `envconfig:"GOTENBERG_TIMEOUT" default:"30s"`
	CompanyName      string        `envconfig:"COMPANY_NAME" default:"SGRM Transportes"`

	ManifestArchiveTTL time.Duration `envconfig:"MANIFEST_ARCHIVE_TTL" default:"168h"`
}

// LoadCLIConfig reads the command line configuration the same way
// LoadConfig does.
func LoadCLIConfig() (*CLIConfig, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	var cfg CLIConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves AppTimezone.
func (c *CLIConfig) Location() (*time.Location, error) {
	return loadLocation(c.AppTimezone)
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// AuditEnabled reports whether a database was configured for the audit trail.
func (c *Config) AuditEnabled() bool {
	return c != nil && c.PGDSN != ""
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

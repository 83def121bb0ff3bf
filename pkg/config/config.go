package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by the client.
const EnvPrefix = "DURIANOSTICS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Storage backend identifiers.
const (
	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DURIANOSTICS_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"DURIANOSTICS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DURIANOSTICS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig locates the Durianostics backend. BaseURL is resolved once
// here and threaded through the single request client; screens never
// carry their own copy.
type APIConfig struct {
	BaseURL        string        `envconfig:"DURIANOSTICS_API_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"DURIANOSTICS_API_TIMEOUT" default:"30s"`
	UserAgent      string        `envconfig:"DURIANOSTICS_API_USER_AGENT" default:"durianostics-client"`
}

// StorageConfig selects the persistent key-value backend. Mobile and
// desktop builds use the sqlite file; the hosted web deployment points
// at redis; memory is for tests and ephemeral runs.
type StorageConfig struct {
	Driver     string `envconfig:"DURIANOSTICS_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"DURIANOSTICS_STORAGE_SQLITE_PATH" default:"durianostics.db"`

	RedisURL          string        `envconfig:"DURIANOSTICS_STORAGE_REDIS_URL"`
	RedisDialTimeout  time.Duration `envconfig:"DURIANOSTICS_STORAGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	RedisReadTimeout  time.Duration `envconfig:"DURIANOSTICS_STORAGE_REDIS_READ_TIMEOUT" default:"5s"`
	RedisWriteTimeout time.Duration `envconfig:"DURIANOSTICS_STORAGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (s StorageConfig) validate() error {
	switch s.NormalizedDriver() {
	case StorageDriverSQLite:
		if s.SQLitePath == "" {
			return fmt.Errorf("sqlite storage requires %s_STORAGE_SQLITE_PATH", EnvPrefix)
		}
	case StorageDriverRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("redis storage requires %s_STORAGE_REDIS_URL", EnvPrefix)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
	return nil
}

// NormalizedDriver returns the lower-cased driver name.
func (s StorageConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

type MetricsConfig struct {
	Enabled bool `envconfig:"DURIANOSTICS_METRICS_ENABLED" default:"false"`
}

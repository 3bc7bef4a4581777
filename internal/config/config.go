package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Environment names recognized in configuration.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults applied when the config file leaves values unset.
const (
	defaultAddr       = ":8080"
	defaultDSN        = "data/inkpress.db"
	defaultSessionTTL = 7 * 24 * time.Hour
	defaultBcryptCost = 12
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address, e.g. ":8080".
}

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // SQLite path or PostgreSQL DSN.
}

// AuthConfig holds session authentication settings.
type AuthConfig struct {
	Secret     string        `yaml:"secret"`      // JWT signing secret.
	SessionTTL time.Duration `yaml:"session_ttl"` // Session token validity window.
	BcryptCost int           `yaml:"bcrypt_cost"` // bcrypt work factor.
}

// RedisConfig holds optional Redis settings for session revocation.
type RedisConfig struct {
	Addr     string `yaml:"addr"` // Empty disables the revocation denylist.
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`        // logrus level name.
	File       string `yaml:"file"`         // Empty logs to stderr only.
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this size.
	MaxBackups int    `yaml:"max_backups"`  // Rotated files to keep.
	MaxAgeDays int    `yaml:"max_age_days"` // Days to keep rotated files.
}

// Config is the root application configuration.
type Config struct {
	Environment string         `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Redis       RedisConfig    `yaml:"redis"`
	Log         LogConfig      `yaml:"log"`
}

// IsProduction reports whether the production environment is configured.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvProduction)
}

// Load reads the YAML config file at path, applies environment variable
// overrides and defaults, and validates the result. A missing file is not an
// error; all values can come from the environment.
func Load(path string) (Config, error) {
	var cfg Config

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case os.IsNotExist(errRead):
			// Fall through to env and defaults.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if errValidate := cfg.validate(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("INKPRESS_ENV")); v != "" {
		cfg.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_DATABASE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_AUTH_SECRET")); v != "" {
		cfg.Auth.Secret = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("INKPRESS_SESSION_TTL")); v != "" {
		if ttl, errParse := time.ParseDuration(v); errParse == nil && ttl > 0 {
			cfg.Auth.SessionTTL = ttl
		}
	}
}

// applyDefaults fills in unset values.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = EnvDevelopment
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		cfg.Server.Addr = defaultAddr
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = defaultDSN
	}
	if cfg.Auth.SessionTTL <= 0 {
		cfg.Auth.SessionTTL = defaultSessionTTL
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost {
		cfg.Auth.BcryptCost = bcrypt.MinCost
	}
	if cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.MaxCost
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 28
	}
}

// validate rejects configurations that must not reach a running server.
// A missing signing secret outside development is a deployment error, never
// something to paper over with a built-in default.
func (c Config) validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" && c.IsProduction() {
		return fmt.Errorf("config: auth.secret must be set in the %s environment (INKPRESS_AUTH_SECRET)", EnvProduction)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/promptops/internal/prompts"
	"github.com/JaimeStill/promptops/pkg/auth"
	"github.com/JaimeStill/promptops/pkg/database"
	"github.com/JaimeStill/promptops/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvPromptOpsEnv     = "PROMPTOPS_ENV"
	EnvPromptOpsVersion = "PROMPTOPS_VERSION"
)

var databaseEnv = &database.Env{
	Driver:          "PROMPTOPS_DB_DRIVER",
	Path:            "PROMPTOPS_DB_PATH",
	Host:            "PROMPTOPS_DB_HOST",
	Port:            "PROMPTOPS_DB_PORT",
	Name:            "PROMPTOPS_DB_NAME",
	User:            "PROMPTOPS_DB_USER",
	Password:        "PROMPTOPS_DB_PASSWORD",
	SSLMode:         "PROMPTOPS_DB_SSL_MODE",
	MaxOpenConns:    "PROMPTOPS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROMPTOPS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROMPTOPS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROMPTOPS_DB_CONN_TIMEOUT",
	AutoMigrate:     "PROMPTOPS_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	Enabled:          "PROMPTOPS_STORAGE_ENABLED",
	ContainerName:    "PROMPTOPS_STORAGE_CONTAINER_NAME",
	ConnectionString: "PROMPTOPS_STORAGE_CONNECTION_STRING",
	AccountURL:       "PROMPTOPS_STORAGE_ACCOUNT_URL",
}

var authEnv = &auth.Env{
	Mode:     "PROMPTOPS_AUTH_MODE",
	Secret:   "PROMPTOPS_AUTH_SECRET",
	Issuer:   "PROMPTOPS_AUTH_ISSUER",
	ClientID: "PROMPTOPS_AUTH_CLIENT_ID",
	Header:   "PROMPTOPS_AUTH_HEADER",
}

var ledgerEnv = &prompts.Env{
	MaxAttempts: "PROMPTOPS_LEDGER_MAX_ATTEMPTS",
	RetryDelay:  "PROMPTOPS_LEDGER_RETRY_DELAY",
	MaxJitter:   "PROMPTOPS_LEDGER_MAX_JITTER",
}

// Config is the root configuration for the PromptOps service and CLI.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Database database.Config `toml:"database"`
	Storage  storage.Config  `toml:"storage"`
	API      APIConfig       `toml:"api"`
	Auth     auth.Config     `toml:"auth"`
	Ledger   prompts.Config  `toml:"ledger"`
	Version  string          `toml:"version"`
}

// Env returns the PROMPTOPS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPromptOpsEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads configuration from the working directory.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile loads a .env file next to path into the environment, reads the
// base config at path (if present), applies the config.<env>.toml overlay
// from the same directory, and finalizes all values. Without any files,
// defaults and environment variables provide all configuration.
func LoadFile(path string) (*Config, error) {
	dir := filepath.Dir(path)

	if err := loadDotEnv(filepath.Join(dir, DotEnvFile)); err != nil {
		return nil, err
	}

	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(dir); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Ledger.Merge(&overlay.Ledger)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Ledger.Finalize(ledgerEnv); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPromptOpsVersion); v != "" {
		c.Version = v
	}
}

// Variables already present in the environment take precedence over .env.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvPromptOpsEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

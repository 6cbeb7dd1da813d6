// Package config loads the classroom client configuration from defaults, an
// optional YAML file, a .env file and CLASSROOM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/me/classroom/internal/logging"
	"github.com/me/classroom/internal/router"
	"github.com/me/classroom/internal/store"
	"github.com/me/classroom/pkg/model"
)

// EnvPrefix prefixes every environment override, e.g. CLASSROOM_SERVER_URL.
const EnvPrefix = "CLASSROOM"

// StorageConfig selects where the session is persisted.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // memory, file, sqlite, redis
	Path          string `mapstructure:"path"`    // file or database path; empty means ~/.classroom/
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// RollbarConfig enables error reporting when Token is set.
type RollbarConfig struct {
	Token       string `mapstructure:"token"`
	Environment string `mapstructure:"environment"`
}

// ClientConfig holds configuration for the classroom CLI.
type ClientConfig struct {
	ServerURL string            `mapstructure:"server_url"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	LogLevel  string            `mapstructure:"log_level"` // debug, info, warn, error
	LogFormat string            `mapstructure:"log_format"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Rollbar   RollbarConfig     `mapstructure:"rollbar"`
	Landing   map[string]string `mapstructure:"landing"` // role -> landing path
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	roles := router.DefaultRoles()
	landing := make(map[string]string, len(roles.Paths))
	for role, path := range roles.Paths {
		landing[string(role)] = path
	}
	return ClientConfig{
		ServerURL: "http://localhost:8080",
		Timeout:   30 * time.Second,
		LogLevel:  "warn",
		LogFormat: "text",
		Storage: StorageConfig{
			Backend:     store.BackendFile,
			RedisAddr:   "localhost:6379",
			RedisPrefix: store.DefaultRedisPrefix,
		},
		Rollbar: RollbarConfig{Environment: "development"},
		Landing: landing,
	}
}

// LoadOptions names the files Load reads. Empty fields use the defaults.
type LoadOptions struct {
	// ConfigFile is a YAML file. When empty, ~/.classroom/config.yaml is read
	// if it exists.
	ConfigFile string
	// DotEnvFile is loaded into the environment if it exists. Variables that
	// are already set win. Defaults to ".env".
	DotEnvFile string
}

// DefaultConfigPath returns ~/.classroom/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".classroom", "config.yaml"), nil
}

// Load builds a ClientConfig. Precedence, highest first: environment
// (including .env), config file, defaults. Command-line flags are applied by
// the caller on top.
func Load(opts LoadOptions) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	dotenv := opts.DotEnvFile
	if dotenv == "" {
		dotenv = ".env"
	}
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return cfg, fmt.Errorf("load %s: %w", dotenv, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("stat %s: %w", dotenv, err)
	}

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := opts.ConfigFile
	if file == "" {
		if p, err := DefaultConfigPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				file = p
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg ClientConfig) {
	v.SetDefault("server_url", cfg.ServerURL)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.redis_addr", cfg.Storage.RedisAddr)
	v.SetDefault("storage.redis_password", cfg.Storage.RedisPassword)
	v.SetDefault("storage.redis_db", cfg.Storage.RedisDB)
	v.SetDefault("storage.redis_prefix", cfg.Storage.RedisPrefix)
	v.SetDefault("rollbar.token", cfg.Rollbar.Token)
	v.SetDefault("rollbar.environment", cfg.Rollbar.Environment)
	v.SetDefault("landing", cfg.Landing)
}

// Validate checks the configuration for values no command can work with.
func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL %q", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Storage.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendSQLite, store.BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if err := logging.ValidateFormat(c.LogFormat); err != nil {
		return err
	}
	for role, path := range c.Landing {
		if _, err := model.ParseRole(role); err != nil {
			return fmt.Errorf("landing: %w", err)
		}
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("landing path for %s must start with /, got %q", role, path)
		}
	}
	return nil
}

// Roles returns the role router described by Landing.
func (c ClientConfig) Roles() router.Roles {
	roles := router.DefaultRoles()
	for role, path := range c.Landing {
		roles.Paths[model.Role(role)] = path
	}
	return roles
}

// StoreOptions converts the storage section for store.Open.
func (c ClientConfig) StoreOptions() store.Options {
	return store.Options{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		Redis: store.RedisOptions{
			Addr:     c.Storage.RedisAddr,
			Password: c.Storage.RedisPassword,
			DB:       c.Storage.RedisDB,
			Prefix:   c.Storage.RedisPrefix,
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "EVENTFINDER"

// Storage drivers for the saved events slot.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	APIs    APIConfig     `mapstructure:"apis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Saved   SavedConfig   `mapstructure:"saved"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig for HTTP server settings
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type APIConfig struct {
	Ticketmaster TicketmasterConfig `mapstructure:"ticketmaster"`
}

// TicketmasterConfig for Ticketmaster Discovery API
type TicketmasterConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig for the catalog response cache
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Size     int           `mapstructure:"size"`
	FreshFor time.Duration `mapstructure:"fresh_for"`
	StaleFor time.Duration `mapstructure:"stale_for"`
}

type SavedConfig struct {
	MaxEvents      int           `mapstructure:"max_events"`
	Slot           string        `mapstructure:"slot"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
}

type StorageConfig struct {
	Driver     string      `mapstructure:"driver"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values using the pattern
// EVENTFINDER_SECTION_KEY. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("apis.ticketmaster.api_key", envPrefix+"_APIS_TICKETMASTER_API_KEY", "TICKETMASTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))

	return config, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("apis.ticketmaster.api_key", "")
	v.SetDefault("apis.ticketmaster.base_url", "https://app.ticketmaster.com/discovery/v2")
	v.SetDefault("apis.ticketmaster.timeout", 10*time.Second)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 512)
	v.SetDefault("cache.fresh_for", time.Hour)
	v.SetDefault("cache.stale_for", 24*time.Hour)

	v.SetDefault("saved.max_events", 20)
	v.SetDefault("saved.slot", "savedEvents")
	v.SetDefault("saved.persist_timeout", 5*time.Second)

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "eventfinder.db")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key_prefix", "eventfinder:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	problems := c.storageProblems()
	if c.APIs.Ticketmaster.APIKey == "" {
		problems = append(problems, "apis.ticketmaster.api_key is required")
	}
	if c.APIs.Ticketmaster.BaseURL == "" {
		problems = append(problems, "apis.ticketmaster.base_url is required")
	}
	if c.APIs.Ticketmaster.Timeout <= 0 {
		problems = append(problems, "apis.ticketmaster.timeout must be positive")
	}
	if c.Cache.Enabled {
		if c.Cache.Size <= 0 {
			problems = append(problems, "cache.size must be positive")
		}
		if c.Cache.FreshFor <= 0 {
			problems = append(problems, "cache.fresh_for must be positive")
		}
		if c.Cache.StaleFor < 0 {
			problems = append(problems, "cache.stale_for must not be negative")
		}
	}
	if c.Server.Port == "" {
		problems = append(problems, "server.port is required")
	}

	return joinProblems(problems)
}

// ValidateStorage checks only what the saved events store needs, for
// commands that never reach the upstream API.
func (c *Config) ValidateStorage() error {
	return joinProblems(c.storageProblems())
}

func (c *Config) storageProblems() []string {
	var problems []string

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			problems = append(problems, "storage.sqlite_path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			problems = append(problems, "storage.redis.addr is required for the redis driver")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver %q is not one of sqlite, redis, memory", c.Storage.Driver))
	}

	if c.Saved.MaxEvents <= 0 {
		problems = append(problems, "saved.max_events must be positive")
	}
	if c.Saved.Slot == "" {
		problems = append(problems, "saved.slot is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not a valid level", c.Log.Level))
	}

	return problems
}

func joinProblems(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Package config loads the journeys configuration from .journeys.yaml,
// JOURNEYS_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/journeys/internal/logging"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the complete application configuration.
type Config struct {
	Journeys JourneysConfig `mapstructure:"journeys"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// JourneysConfig locates journey documents.
type JourneysConfig struct {
	Dir string `mapstructure:"dir"`
	// Loader is "loam" (versioned repository) or "file" (plain directory).
	Loader string `mapstructure:"loader"`
	Watch  bool   `mapstructure:"watch"`
}

// StoreConfig selects where preview sessions are persisted.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	// EncryptionKey is a base64 encoded 32 byte AES key. Empty disables
	// at-rest encryption.
	EncryptionKey string `mapstructure:"encryption_key"`
	// PIIPatterns are regular expressions over question IDs whose answers
	// are masked before they are stored.
	PIIPatterns []string      `mapstructure:"pii_patterns"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type HTTPConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

type MCPConfig struct {
	// Transport is "stdio" or "sse".
	Transport string `mapstructure:"transport"`
	Addr      string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"dir":            "journeys.dir",
	"loader":         "journeys.loader",
	"watch":          "journeys.watch",
	"store":          "store.backend",
	"store-dir":      "store.dir",
	"redis-addr":     "redis.addr",
	"addr":           "http.addr",
	"metrics":        "http.metrics",
	"transport":      "mcp.transport",
	"log-level":      "logging.level",
	"log-format":     "logging.format",
	"lock-ttl":       "store.lock_ttl",
	"encryption-key": "store.encryption_key",
}

// Load reads the configuration. configPath may be empty, in which case
// .journeys.yaml is looked up in the working directory and the user's
// config directory. flags may be nil; flags the user set win over file
// and environment.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".journeys")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "journeys"))
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("JOURNEYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("journeys.dir", ".")
	v.SetDefault("journeys.loader", "loam")
	v.SetDefault("journeys.watch", false)

	v.SetDefault("store.backend", StoreMemory)
	v.SetDefault("store.dir", ".journeys/sessions")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.pii_patterns", []string{})
	v.SetDefault("store.lock_ttl", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "journeys:session:")
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.metrics", true)

	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.addr", ":8081")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", string(logging.FormatText))
}

// Validate checks the configuration for values the commands cannot use.
func (c *Config) Validate() error {
	switch c.Journeys.Loader {
	case "loam", "file":
	default:
		return fmt.Errorf("journeys.loader must be one of: loam, file")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	case StoreFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the file store")
		}
	default:
		return fmt.Errorf("store.backend must be one of: memory, file, redis")
	}
	if c.Store.LockTTL <= 0 {
		return fmt.Errorf("store.lock_ttl must be positive")
	}
	if _, err := c.EncryptionKey(); err != nil {
		return err
	}
	for _, p := range c.Store.PIIPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("store.pii_patterns: %w", err)
		}
	}

	if c.Store.Backend == StoreRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis store")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}

	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("mcp.transport must be one of: stdio, sse")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	switch logging.Format(c.Logging.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("logging.format must be one of: text, json")
	}
	return nil
}

// EncryptionKey decodes store.encryption_key. It returns nil when
// encryption is disabled.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Store.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.Store.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key must be base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("store.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Logger builds the application logger. Logs go to stderr.
func (c *Config) Logger() *slog.Logger {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return logging.NewWithWriter(os.Stderr, level, logging.Format(c.Logging.Format))
}

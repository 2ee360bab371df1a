package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/spf13/viper"
)

//go:embed default_config.yaml
var defaultConfig []byte

// EnvPrefix is the prefix of environment overrides (SIDEEYE_STORE_DRIVER, ...).
const EnvPrefix = "SIDEEYE"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the top-level configuration structure.
type Config struct {
	Analysis domain.BuildOptions `mapstructure:"analysis"`
	Items    ItemsConfig         `mapstructure:"items"`
	Measures MeasuresConfig      `mapstructure:"measures"`
	Store    StoreConfig         `mapstructure:"store"`
	Log      LogConfig           `mapstructure:"log"`
	Server   ServerConfig        `mapstructure:"server"`
}

// ItemsConfig locates the item catalogue.
type ItemsConfig struct {
	// Path is a Loam repository of item documents. Empty means items travel with the trials.
	Path string `mapstructure:"path"`
}

// MeasuresConfig points at the external measure commands applied to every built trial.
type MeasuresConfig struct {
	// Path is a YAML or JSON file listing measure commands. Empty disables external measures.
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects where built trials are persisted.
type StoreConfig struct {
	Driver     string           `mapstructure:"driver"`
	Path       string           `mapstructure:"path"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
}

// EncryptionConfig enables AES-256-GCM encryption of persisted trials.
// Keys are base64-encoded 32-byte values; an empty key disables encryption.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// LogConfig holds settings for the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Load reads the embedded defaults, merges the optional config file at path and
// applies SIDEEYE_ environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return nil, fmt.Errorf("error reading default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q (want memory, file or redis)", c.Store.Driver)
	}
	if c.Store.Driver == DriverFile && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the file driver")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config contains the definition of the jsonbind configuration and
// the logic required to load and write it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/jsonbind/pkg/fileutils"
)

// EnvPrefix prefixes the environment variables overriding the config file,
// e.g. JSONBIND_ADAPTER_TYPE.
const EnvPrefix = "JSONBIND"

// Adapter types.
const (
	AdapterMemory = "memory"
	AdapterSQLite = "sqlite"
	AdapterRedis  = "redis"
)

// DefaultRedisKeyPrefix namespaces the Redis keys written by jsonbind.
const DefaultRedisKeyPrefix = "jsonbind:"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the configuration of jsonbind.
type Config struct {
	Adapter AdapterConfig `yaml:"adapter" mapstructure:"adapter"`
	Log     LogConfig     `yaml:"log,omitempty" mapstructure:"log"`
}

// AdapterConfig selects and configures the storage behind the mappings.
type AdapterConfig struct {
	Type   string       `yaml:"type" mapstructure:"type"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty" mapstructure:"sqlite"`
	Redis  RedisConfig  `yaml:"redis,omitempty" mapstructure:"redis"`
}

// SQLiteConfig contains the settings of the SQLite adapter.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// RedisConfig contains the settings of the Redis adapter.
type RedisConfig struct {
	Addr         string        `yaml:"addr,omitempty" mapstructure:"addr"`
	Username     string        `yaml:"username,omitempty" mapstructure:"username"`
	Password     string        `yaml:"password,omitempty" mapstructure:"password"`
	DB           int           `yaml:"db,omitempty" mapstructure:"db"`
	KeyPrefix    string        `yaml:"key_prefix,omitempty" mapstructure:"key_prefix"`
	DialTimeout  time.Duration `yaml:"dial_timeout,omitempty" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" mapstructure:"write_timeout"`

	ConnectAttempts int `yaml:"connect_attempts,omitempty" mapstructure:"connect_attempts"`
}

// LogConfig contains the logging settings.
type LogConfig struct {
	Debug bool `yaml:"debug,omitempty" mapstructure:"debug"`
}

// envKeys lists every key that may be overridden from the environment.
var envKeys = []string{
	"adapter.type",
	"adapter.sqlite.path",
	"adapter.redis.addr",
	"adapter.redis.username",
	"adapter.redis.password",
	"adapter.redis.db",
	"adapter.redis.key_prefix",
	"adapter.redis.dial_timeout",
	"adapter.redis.read_timeout",
	"adapter.redis.write_timeout",
	"adapter.redis.connect_attempts",
	"log.debug",
}

// DefaultPath returns the default location of the config file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "jsonbind", "config.yaml")
}

// DefaultSQLitePath returns the default location of the SQLite database.
func DefaultSQLitePath() string {
	return filepath.Join(xdg.DataHome, "jsonbind", "objects.db")
}

// DefaultConfig returns a fully populated Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Adapter: AdapterConfig{
			Type:   AdapterMemory,
			SQLite: SQLiteConfig{Path: DefaultSQLitePath()},
			Redis:  RedisConfig{KeyPrefix: DefaultRedisKeyPrefix},
		},
	}
}

// ApplyDefaults fills zero fields with their default values, preserving
// every value that is set.
func (c *Config) ApplyDefaults() {
	if c == nil {
		return
	}
	_ = mergo.Merge(c, DefaultConfig())
}

// Validate checks that the selected adapter is fully configured.
func (c *Config) Validate() error {
	switch c.Adapter.Type {
	case AdapterMemory:
	case AdapterSQLite:
		if c.Adapter.SQLite.Path == "" {
			return fmt.Errorf("%w: adapter.sqlite.path is required", ErrInvalidConfig)
		}
	case AdapterRedis:
		if c.Adapter.Redis.Addr == "" {
			return fmt.Errorf("%w: adapter.redis.addr is required", ErrInvalidConfig)
		}
		if c.Adapter.Redis.DB < 0 {
			return fmt.Errorf("%w: adapter.redis.db must not be negative", ErrInvalidConfig)
		}
		if c.Adapter.Redis.ConnectAttempts < 0 {
			return fmt.Errorf("%w: adapter.redis.connect_attempts must not be negative", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown adapter type %q (valid types: %s, %s, %s)",
			ErrInvalidConfig, c.Adapter.Type, AdapterMemory, AdapterSQLite, AdapterRedis)
	}
	return nil
}

// Load reads the config file at path, applies JSONBIND_* environment
// overrides and defaults, and validates the result. A missing file is not an
// error. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write serializes c to path, creating parent directories.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := fileutils.AtomicWriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

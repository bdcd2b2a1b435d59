// Package config provides configuration loading for the bookshop.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/checkout"
	"gopkg.in/yaml.v3"
)

// Backends for the durable slot.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the complete bookshop configuration.
type Config struct {
	// DataDir holds the JSON slot files and the TUI log (empty = working directory)
	DataDir  string         `yaml:"data_dir"`
	Backend  string         `yaml:"backend"`
	Redis    RedisConfig    `yaml:"redis"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Log      LogConfig      `yaml:"log"`
	// Theme is classic, neon or mono
	Theme string `yaml:"theme"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// CheckoutConfig configures the mock checkout.
type CheckoutConfig struct {
	// Policy is "keep" (cart survives payment) or "clear"
	Policy string `yaml:"policy"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	// File is where the interactive shop logs (relative to DataDir)
	File string `yaml:"file"`
	// Source adds file:line to every record
	Source bool `yaml:"source"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "",
		Backend: BackendFile,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "bookshop",
		},
		Checkout: CheckoutConfig{Policy: string(checkout.PolicyKeep)},
		Log: LogConfig{
			Level: "warn",
			File:  "bookshop.log",
		},
		Theme: "classic",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("backend must be one of file, redis, memory (got %q)", c.Backend)
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis backend")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}
	if _, err := checkout.ParsePolicy(c.Checkout.Policy); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("theme must be classic, neon or mono (got %q)", c.Theme)
	}
	return nil
}

// Merge overlays the non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.Backend != "" {
		c.Backend = other.Backend
	}
	if other.Redis.Addr != "" {
		c.Redis.Addr = other.Redis.Addr
	}
	if other.Redis.Password != "" {
		c.Redis.Password = other.Redis.Password
	}
	if other.Redis.DB != 0 {
		c.Redis.DB = other.Redis.DB
	}
	if other.Redis.Prefix != "" {
		c.Redis.Prefix = other.Redis.Prefix
	}
	if other.Checkout.Policy != "" {
		c.Checkout.Policy = other.Checkout.Policy
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
	if other.Log.Source {
		c.Log.Source = true
	}
	if other.Theme != "" {
		c.Theme = other.Theme
	}
}

// ApplyEnv overlays BOOKSHOP_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	env := &Config{
		DataDir: getenv("BOOKSHOP_DATA_DIR"),
		Backend: getenv("BOOKSHOP_BACKEND"),
		Redis: RedisConfig{
			Addr:     getenv("BOOKSHOP_REDIS_ADDR"),
			Password: getenv("BOOKSHOP_REDIS_PASSWORD"),
			Prefix:   getenv("BOOKSHOP_REDIS_PREFIX"),
		},
		Checkout: CheckoutConfig{Policy: getenv("BOOKSHOP_CHECKOUT_POLICY")},
		Log:      LogConfig{Level: getenv("BOOKSHOP_LOG_LEVEL")},
		Theme:    getenv("BOOKSHOP_THEME"),
	}
	if v := getenv("BOOKSHOP_LOG_SOURCE"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BOOKSHOP_LOG_SOURCE: %w", err)
		}
		env.Log.Source = on
	}
	if v := getenv("BOOKSHOP_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKSHOP_REDIS_DB: %w", err)
		}
		env.Redis.DB = n
	}
	c.Merge(env)
	return nil
}

// LogPath is the absolute or DataDir-relative log file for the interactive shop.
func (c *Config) LogPath() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, c.Log.File)
}

// LoadFromFile reads a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveToFile writes the config as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Package config loads service configuration from defaults, an optional
// YAML file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kitchenos/pkg/logger"
	"kitchenos/pkg/recipe"
)

type Config struct {
	Server  Server  `yaml:"server"`
	API     API     `yaml:"api"`
	Store   Store   `yaml:"store"`
	Log     Log     `yaml:"log"`
	Redis   Redis   `yaml:"redis"`
	Tracing Tracing `yaml:"tracing"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type API struct {
	// DefaultTenant is used by search requests without a tenant header.
	// Zero makes the header mandatory.
	DefaultTenant  int           `yaml:"default_tenant"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type Store struct {
	Seed         bool     `yaml:"seed"`
	SearchFields []string `yaml:"search_fields"`
}

type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Redis struct {
	Addr string `yaml:"addr"`
}

type Tracing struct {
	Host        string  `yaml:"host"`
	Probability float64 `yaml:"probability"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		API: API{
			DefaultTenant:  1,
			IdempotencyTTL: 24 * time.Hour,
		},
		Store: Store{
			Seed:         true,
			SearchFields: []string{string(recipe.FieldTitle), string(recipe.FieldIngredients)},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Tracing: Tracing{Probability: 1.0},
	}
}

// Load builds a Config. path may be empty, in which case no YAML file is read.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("KITCHENOS_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("KITCHENOS_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("KITCHENOS_LOG_FILE"); ok {
		c.Log.File = v
	}
	if v, ok := lookup("KITCHENOS_DEFAULT_TENANT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KITCHENOS_DEFAULT_TENANT: %w", err)
		}
		c.API.DefaultTenant = n
	}
	if v, ok := lookup("KITCHENOS_SEED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("KITCHENOS_SEED: %w", err)
		}
		c.Store.Seed = b
	}
	if v, ok := lookup("KITCHENOS_SEARCH_FIELDS"); ok {
		c.Store.SearchFields = strings.Split(v, ",")
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := lookup("OTEL_HOST"); ok {
		c.Tracing.Host = v
	}
	return nil
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.API.DefaultTenant < 0 {
		return fmt.Errorf("default tenant must not be negative, got %d", c.API.DefaultTenant)
	}
	if c.API.IdempotencyTTL <= 0 {
		return errors.New("idempotency ttl must be positive")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if _, err := c.Fields(); err != nil {
		return err
	}
	if c.Tracing.Probability < 0 || c.Tracing.Probability > 1 {
		return fmt.Errorf("tracing probability must be within [0,1], got %v", c.Tracing.Probability)
	}
	return nil
}

// Fields returns the configured searchable fields.
func (c Config) Fields() ([]recipe.Field, error) {
	fields := make([]recipe.Field, 0, len(c.Store.SearchFields))
	for _, s := range c.Store.SearchFields {
		f, err := recipe.ParseField(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

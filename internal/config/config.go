// Package config loads the server configuration.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. a YAML file named by --config or SPLITSMART_CONFIG (optional)
//  3. environment variables
//  4. command-line flags that were explicitly set
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitsmart/pkg/logging"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// devJWTSecret signs tokens in development when no secret is configured.
const devJWTSecret = "splitsmart-development-secret"

// Config is the server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// DBBusyTimeout is how long a connection waits on a locked database.
	DBBusyTimeout time.Duration `yaml:"db_busy_timeout"`

	// JWTSecret signs session tokens. Required in production.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is how long a session token stays valid.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Environment Environment `yaml:"environment"`

	// BalanceConcurrency bounds the per-group/per-friend fan-out of balance listings.
	BalanceConcurrency int `yaml:"balance_concurrency"`

	// MetricsEnabled serves Prometheus metrics on /metrics.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string `yaml:"cors_origin"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Addr:               ":8080",
		DBPath:             "./data/splitsmart.db",
		DBBusyTimeout:      5 * time.Second,
		TokenTTL:           7 * 24 * time.Hour,
		LogLevel:           "info",
		Environment:        Development,
		BalanceConcurrency: 4,
		MetricsEnabled:     true,
		CORSOrigin:         "*",
	}
}

// Load builds the configuration from args (without the program name) and
// the process environment.
func Load(args []string) (*Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("splitsmart", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file (env SPLITSMART_CONFIG)")
	addr := fs.String("addr", cfg.Addr, "listen address")
	dbPath := fs.String("db-path", cfg.DBPath, "SQLite database path")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	env := fs.String("env", string(cfg.Environment), "environment: development or production")
	concurrency := fs.Int("balance-concurrency", cfg.BalanceConcurrency, "max concurrent balance computations per listing")
	metrics := fs.Bool("metrics", cfg.MetricsEnabled, "serve Prometheus metrics on /metrics")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := *configPath
	if path == "" {
		path = getenv("SPLITSMART_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if fs.Changed("addr") {
		cfg.Addr = *addr
	}
	if fs.Changed("db-path") {
		cfg.DBPath = *dbPath
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("env") {
		cfg.Environment = Environment(*env)
	}
	if fs.Changed("balance-concurrency") {
		cfg.BalanceConcurrency = *concurrency
	}
	if fs.Changed("metrics") {
		cfg.MetricsEnabled = *metrics
	}

	if cfg.JWTSecret == "" && cfg.Environment == Development {
		cfg.JWTSecret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
	strs := map[string]*string{
		"SPLITSMART_ADDR": &c.Addr,
		"DB_PATH":         &c.DBPath,
		"JWT_SECRET":      &c.JWTSecret,
		"LOG_LEVEL":       &c.LogLevel,
		"CORS_ORIGIN":     &c.CORSOrigin,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	if v := getenv("SPLITSMART_ENV"); v != "" {
		c.Environment = Environment(v)
	}

	durations := map[string]*time.Duration{
		"TOKEN_TTL":       &c.TokenTTL,
		"DB_BUSY_TIMEOUT": &c.DBBusyTimeout,
	}
	for key, dst := range durations {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if v := getenv("BALANCE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BALANCE_CONCURRENCY: %w", err)
		}
		c.BalanceConcurrency = n
	}
	if v := getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED: %w", err)
		}
		c.MetricsEnabled = b
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.DBBusyTimeout < 0 {
		errs = append(errs, errors.New("db_busy_timeout must not be negative"))
	}
	if c.BalanceConcurrency <= 0 {
		errs = append(errs, errors.New("balance_concurrency must be positive"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Environment {
	case Development:
	case Production:
		if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
			errs = append(errs, errors.New("jwt_secret is required in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Environment))
	}
	return errors.Join(errs...)
}

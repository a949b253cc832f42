package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"verdant/internal/logging"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// ConfigPathEnvVar overrides the YAML file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Timezone decides where "today" starts for the due-today views.
	Timezone string `koanf:"timezone"`
}

type DatabaseConfig struct {
	Driver       string        `koanf:"driver"`
	URI          string        `koanf:"uri"`
	Name         string        `koanf:"name"`
	Timeout      time.Duration `koanf:"timeout"`
	Transactions bool          `koanf:"transactions"`
}

type AuthConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	TokenTTL        time.Duration `koanf:"token_ttl"`
	AllowRoleSignup bool          `koanf:"allow_role_signup"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CasbinModelPath   string        `koanf:"casbin_model_path"`
	CasbinPolicyPath  string        `koanf:"casbin_policy_path"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig(app string, port int) *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            port,
			ShutdownTimeout: 10 * time.Second,
			Timezone:        "Local",
		},
		Database: DatabaseConfig{
			Driver:  DriverMongo,
			URI:     "",
			Name:    app,
			Timeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:       "",
			TokenTTL:        7 * 24 * time.Hour,
			AllowRoleSignup: true,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration for the named app. Sources, lowest priority
// first: built-in defaults, an optional YAML file, then environment variables
// (a .env file in the working directory is folded into the environment).
func Load(app string, port int) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Err(err).Msg(".env not loaded")
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(app, port), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}

	switch c.Database.Driver {
	case DriverMongo:
		if strings.TrimSpace(c.Database.URI) == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
		if strings.TrimSpace(c.Database.Name) == "" {
			errs = append(errs, errors.New("DB_NAME must not be empty"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Database.Driver))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	if _, err := c.Server.Location(); err != nil {
		errs = append(errs, err)
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitRequests < 1 || c.Security.RateLimitWindow <= 0) {
		errs = append(errs, errors.New("rate limit requires positive requests and window"))
	}

	return errors.Join(errs...)
}

// Location resolves Timezone; "" and "Local" mean the process zone.
func (s ServerConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || strings.EqualFold(s.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

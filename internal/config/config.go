package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is used by every component when API_URL_BASE is not set
const DefaultBaseURL = "http://localhost:3000/api"

// Config holds all configuration for the application
type Config struct {
	// Backend API configuration
	API APIConfig

	// Logging Configuration
	Logging LoggingConfig

	// Development backend configuration
	DevServer DevServerConfig
}

// APIConfig holds the remote backend settings used by the gateway
type APIConfig struct {
	BaseURL string        `env:"API_URL_BASE" envDefault:"http://localhost:3000/api" validate:"required,http_url"`
	Timeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error fatal panic disabled off"`
	Format string `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=json console"` // json, console
}

// LevelOr returns the configured level, or def when LOG_LEVEL is unset
func (l LoggingConfig) LevelOr(def string) string {
	if l.Level == "" {
		return def
	}
	return l.Level
}

// DevServerConfig configures the local development backend
type DevServerConfig struct {
	Addr          string        `env:"DEVSERVER_ADDR" envDefault:":3000" validate:"required"`
	BasePath      string        `env:"DEVSERVER_BASE_PATH" envDefault:"/api" validate:"required,startswith=/"`
	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"gametu-dev.sqlite" validate:"required"`
	SessionSecret string        `env:"SESSION_SECRET"` // random per process when empty
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h" validate:"gt=0"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	AdminEmail    string        `env:"DEVSERVER_ADMIN_EMAIL" validate:"omitempty,email"`
	AdminPassword string        `env:"DEVSERVER_ADMIN_PASSWORD" validate:"required_with=AdminEmail"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return Parse(environ())
}

// Parse builds and validates a Config from the given environment
func Parse(environment map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	API      APIConfig
	Identity IdentityConfig
	Client   ClientConfig
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL string        `envconfig:"BASE_URL"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

// IdentityConfig holds identity-provider configuration
type IdentityConfig struct {
	ProjectID    string        `envconfig:"PROJECT_ID"`
	APIKey       string        `envconfig:"API_KEY"`
	ClientID     string        `envconfig:"CLIENT_ID"`
	ClientSecret string        `envconfig:"CLIENT_SECRET"`
	RedirectURL  string        `envconfig:"REDIRECT_URL" default:"http://localhost:8910/callback"`
	TokenExpiry  time.Duration `envconfig:"TOKEN_EXPIRY" default:"24h"`
}

// ClientConfig holds client-side behavior configuration
type ClientConfig struct {
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	StateDir     string        `envconfig:"STATE_DIR"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("panda", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return &cfg, nil
}

// DemoMode reports whether the client should run against the built-in
// in-process backend. Missing connection parameters degrade to demo mode
// instead of crashing.
func (c *Config) DemoMode() bool {
	return c.API.BaseURL == "" || c.Identity.ProjectID == "" || c.Identity.APIKey == ""
}

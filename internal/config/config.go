package config

import (
	"fmt"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Gateway Gateway
	Secrets Secrets
	Logger  Logger
	Metrics Metrics
}

// Gateway holds Argus gateway configuration
type Gateway struct {
	Environment string // "test" or "live"
	SiteID      string
	Username    string
	Password    string
	Timeout     int // request timeout in seconds
}

// Secrets selects where gateway credentials come from.
// Backend "env" reads ARGUS_SITE_ID/ARGUS_REQ_USERNAME/ARGUS_REQ_PASSWORD
// directly; "local", "aws" and "vault" resolve Path against that backend.
type Secrets struct {
	Backend    string // env, local, aws, vault
	Path       string
	LocalDir   string
	AWSRegion  string
	VaultAddr  string
	VaultToken string
}

// Logger holds logging configuration
type Logger struct {
	Level       string // debug, info, warn, error
	Development bool
}

// Metrics holds the Prometheus metrics server configuration
type Metrics struct {
	Port string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Gateway: Gateway{
			Environment: getEnv("ARGUS_ENVIRONMENT", "test"),
			SiteID:      getEnv("ARGUS_SITE_ID", ""),
			Username:    getEnv("ARGUS_REQ_USERNAME", ""),
			Password:    getEnv("ARGUS_REQ_PASSWORD", ""),
			Timeout:     getEnvAsInt("ARGUS_TIMEOUT", 30),
		},
		Secrets: Secrets{
			Backend:    getEnv("SECRETS_BACKEND", "env"),
			Path:       getEnv("SECRETS_PATH", "argus-gateway/credentials"),
			LocalDir:   getEnv("SECRETS_LOCAL_DIR", ".secrets"),
			AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
			VaultAddr:  getEnv("VAULT_ADDR", ""),
			VaultToken: getEnv("VAULT_TOKEN", ""),
		},
		Logger: Logger{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Metrics: Metrics{
			Port: getEnv("METRICS_PORT", "9090"),
		},
	}

	if cfg.Gateway.Environment != "test" && cfg.Gateway.Environment != "live" {
		return nil, fmt.Errorf("ARGUS_ENVIRONMENT must be test or live, got %q", cfg.Gateway.Environment)
	}

	switch cfg.Secrets.Backend {
	case "env":
		if cfg.Gateway.SiteID == "" {
			return nil, fmt.Errorf("ARGUS_SITE_ID is required")
		}
		if cfg.Gateway.Username == "" {
			return nil, fmt.Errorf("ARGUS_REQ_USERNAME is required")
		}
		if cfg.Gateway.Password == "" {
			return nil, fmt.Errorf("ARGUS_REQ_PASSWORD is required")
		}
	case "local", "aws":
	case "vault":
		if cfg.Secrets.VaultAddr == "" {
			return nil, fmt.Errorf("VAULT_ADDR is required for the vault secrets backend")
		}
	default:
		return nil, fmt.Errorf("unsupported secrets backend %q", cfg.Secrets.Backend)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

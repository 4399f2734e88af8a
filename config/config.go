// Package config loads process-level configuration: the operating mode,
// the remote store backend, the secrets resolver and the admin API
// server. Values come from an optional config.json overridden by
// environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Mode          string        `json:"mode"` // backtest, paper or live
	ServerConfig  ServerConfig  `json:"server"`
	StoreConfig   StoreConfig   `json:"store"`
	VaultConfig   VaultConfig   `json:"vault"`
	LoggingConfig LoggingConfig `json:"logging"`
}

// ServerConfig holds admin API server configuration.
type ServerConfig struct {
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"` // CORS allowed origins
	ProductionMode  bool   `json:"production_mode"`
	ReadTimeout     int    `json:"read_timeout"`     // Seconds
	WriteTimeout    int    `json:"write_timeout"`    // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"` // Seconds
}

// StoreConfig holds remote document store configuration. The backend is
// optional: an empty backend name runs the framework on local defaults.
type StoreConfig struct {
	Backend         string `json:"backend"` // "postgres", "redis" or ""
	PostgresDSN     string `json:"postgres_dsn"`
	RedisAddress    string `json:"redis_address"`
	RedisPassword   string `json:"redis_password"`
	RedisDB         int    `json:"redis_db"`
	CredentialsFile string `json:"credentials_file"` // optional JSON credentials file
}

// VaultConfig holds HashiCorp Vault configuration for exchange credential
// resolution.
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`  // KV secrets engine mount path
	SecretPath string `json:"secret_path"` // path prefix for exchange credentials
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level      string `json:"level"`  // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"` // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"`
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Exchange API keys are NOT read from the environment; they live in the
// remote document or in Vault.
func applyEnvOverrides(cfg *Config) {
	cfg.Mode = getEnvOrDefault("AATF_MODE", defaultString(cfg.Mode, "backtest"))

	// Server config
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", defaultInt(cfg.ServerConfig.Port, 8080))
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", defaultString(cfg.ServerConfig.Host, "0.0.0.0"))
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", defaultString(cfg.ServerConfig.AllowedOrigins, "*"))
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("SERVER_PRODUCTION", "false") == "true"
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", defaultInt(cfg.ServerConfig.ReadTimeout, 30))
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", defaultInt(cfg.ServerConfig.WriteTimeout, 30))
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", defaultInt(cfg.ServerConfig.ShutdownTimeout, 10))

	// Store config
	cfg.StoreConfig.Backend = getEnvOrDefault("AATF_STORE_BACKEND", cfg.StoreConfig.Backend)
	cfg.StoreConfig.PostgresDSN = getEnvOrDefault("AATF_POSTGRES_DSN", cfg.StoreConfig.PostgresDSN)
	cfg.StoreConfig.RedisAddress = getEnvOrDefault("AATF_REDIS_ADDR", cfg.StoreConfig.RedisAddress)
	cfg.StoreConfig.RedisPassword = getEnvOrDefault("AATF_REDIS_PASSWORD", cfg.StoreConfig.RedisPassword)
	cfg.StoreConfig.RedisDB = getEnvIntOrDefault("AATF_REDIS_DB", cfg.StoreConfig.RedisDB)
	cfg.StoreConfig.CredentialsFile = getEnvOrDefault("AATF_CREDENTIALS_FILE", cfg.StoreConfig.CredentialsFile)

	// Vault config
	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", defaultString(cfg.VaultConfig.Address, "http://localhost:8200"))
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", defaultString(cfg.VaultConfig.MountPath, "secret"))
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", defaultString(cfg.VaultConfig.SecretPath, "aatf/exchanges"))

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultString(cfg.LoggingConfig.Level, "INFO"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultString(cfg.LoggingConfig.Output, "stdout"))
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func defaultString(current, fallback string) string {
	if current != "" {
		return current
	}
	return fallback
}

func defaultInt(current, fallback int) int {
	if current != 0 {
		return current
	}
	return fallback
}

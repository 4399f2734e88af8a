package config

import "testing"

func TestApplyEnvOverridesDefaults(t *testing.T) {
	cfg := &Config{}
	applyEnvOverrides(cfg)

	if cfg.Mode != "backtest" {
		t.Errorf("Expected default mode backtest, got %q", cfg.Mode)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.ServerConfig.Port)
	}
	if cfg.StoreConfig.Backend != "" {
		t.Errorf("Expected store disabled by default, got %q", cfg.StoreConfig.Backend)
	}
	if cfg.VaultConfig.Enabled {
		t.Error("Expected vault disabled by default")
	}
	if cfg.VaultConfig.SecretPath != "aatf/exchanges" {
		t.Errorf("Expected default secret path, got %q", cfg.VaultConfig.SecretPath)
	}
	if cfg.LoggingConfig.Level != "INFO" {
		t.Errorf("Expected default log level INFO, got %q", cfg.LoggingConfig.Level)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AATF_MODE", "live")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("AATF_STORE_BACKEND", "redis")
	t.Setenv("AATF_REDIS_ADDR", "redis-host:6379")
	t.Setenv("AATF_REDIS_DB", "2")
	t.Setenv("VAULT_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := &Config{}
	applyEnvOverrides(cfg)

	if cfg.Mode != "live" {
		t.Errorf("Expected mode live, got %q", cfg.Mode)
	}
	if cfg.ServerConfig.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.ServerConfig.Port)
	}
	if cfg.StoreConfig.Backend != "redis" {
		t.Errorf("Expected backend redis, got %q", cfg.StoreConfig.Backend)
	}
	if cfg.StoreConfig.RedisAddress != "redis-host:6379" {
		t.Errorf("Expected redis address override, got %q", cfg.StoreConfig.RedisAddress)
	}
	if cfg.StoreConfig.RedisDB != 2 {
		t.Errorf("Expected redis db 2, got %d", cfg.StoreConfig.RedisDB)
	}
	if !cfg.VaultConfig.Enabled {
		t.Error("Expected vault enabled")
	}
	if cfg.LoggingConfig.Level != "DEBUG" {
		t.Errorf("Expected log level DEBUG, got %q", cfg.LoggingConfig.Level)
	}
}

func TestEnvOverridesFilePrecedence(t *testing.T) {
	t.Setenv("AATF_MODE", "paper")

	// Environment wins over a value carried in from config.json.
	cfg := &Config{Mode: "live"}
	applyEnvOverrides(cfg)
	if cfg.Mode != "paper" {
		t.Errorf("Expected env override to win, got %q", cfg.Mode)
	}
}

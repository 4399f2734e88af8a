package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adaptive-trading-framework/config"
	"adaptive-trading-framework/internal/api"
	"adaptive-trading-framework/internal/events"
	"adaptive-trading-framework/internal/logging"
	"adaptive-trading-framework/internal/manager"
	"adaptive-trading-framework/internal/secrets"
	"adaptive-trading-framework/internal/settings"
	"adaptive-trading-framework/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     cfg.LoggingConfig.Output,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})

	mode, err := settings.ParseMode(cfg.Mode)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid operating mode")
	}

	ctx := context.Background()

	// Event bus carries config state transitions to the WebSocket feed.
	bus := events.NewBus()

	// Configuration manager: defaults + best-effort remote load.
	mgr := manager.Initialize(ctx, mode, store.Config{
		Backend:         cfg.StoreConfig.Backend,
		PostgresDSN:     cfg.StoreConfig.PostgresDSN,
		RedisAddress:    cfg.StoreConfig.RedisAddress,
		RedisPassword:   cfg.StoreConfig.RedisPassword,
		RedisDB:         cfg.StoreConfig.RedisDB,
		CredentialsFile: cfg.StoreConfig.CredentialsFile,
	}, bus, logger)
	defer mgr.Close()

	// Back-fill exchange credentials from Vault where configured.
	resolver, err := secrets.NewResolver(cfg.VaultConfig, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Vault resolver unavailable, keeping local credentials")
	} else if resolver.Enabled() {
		resolveExchangeCredentials(ctx, mgr, resolver, logger)
	}

	// Validate: a live deployment must not start misconfigured; simulated
	// modes only warn.
	if err := mgr.Validate(); err != nil {
		if mode == settings.ModeLive {
			logger.Fatal().Err(err).Msg("Configuration invalid for live mode")
		}
		logger.Warn().Err(err).Msg("Configuration incomplete, continuing in simulated mode")
	}

	// Admin API server
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.ServerConfig.Port,
		Host:           cfg.ServerConfig.Host,
		AllowedOrigins: cfg.ServerConfig.AllowedOrigins,
		ProductionMode: cfg.ServerConfig.ProductionMode,
		ReadTimeout:    time.Duration(cfg.ServerConfig.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.ServerConfig.WriteTimeout) * time.Second,
	}, mgr, bus, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Admin API server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx,
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

// resolveExchangeCredentials fills in API keys for exchanges that came up
// without them. Every failure is fail-soft: the exchange keeps its local
// (possibly empty) credentials and Validate decides whether that matters.
func resolveExchangeCredentials(ctx context.Context, mgr *manager.Manager, resolver *secrets.Resolver, logger zerolog.Logger) {
	for name, ex := range mgr.Exchanges() {
		if ex.HasCredentials() {
			continue
		}

		creds, err := resolver.ExchangeCredentials(ctx, name)
		if errors.Is(err, secrets.ErrCredentialsNotFound) {
			logger.Debug().Str("exchange", name).Msg("No credentials in vault")
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Str("exchange", name).Msg("Credential lookup failed")
			continue
		}

		if err := mgr.SetExchangeCredentials(name, creds.APIKey, creds.APISecret); err != nil {
			logger.Warn().Err(err).Str("exchange", name).Msg("Credential back-fill failed")
			continue
		}
		logger.Info().Str("exchange", name).Msg("Exchange credentials resolved from vault")
	}
}

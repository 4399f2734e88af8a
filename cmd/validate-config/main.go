// validate-config loads the framework configuration (including the remote
// document when reachable) and runs the mode-sensitive validation checks.
// It exits non-zero when validation fails in live mode; in backtest and
// paper mode violations are reported as warnings only.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"adaptive-trading-framework/config"
	"adaptive-trading-framework/internal/logging"
	"adaptive-trading-framework/internal/manager"
	"adaptive-trading-framework/internal/settings"
	"adaptive-trading-framework/internal/store"
)

func main() {
	modeFlag := flag.String("mode", "", "operating mode to validate against (defaults to configured mode)")
	strict := flag.Bool("strict", false, "exit non-zero on any validation failure, not just in live mode")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		Output:     "stderr",
		JSONFormat: false,
	})

	modeStr := cfg.Mode
	if *modeFlag != "" {
		modeStr = *modeFlag
	}
	mode, err := settings.ParseMode(modeStr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid operating mode")
	}

	ctx := context.Background()
	mgr := manager.Initialize(ctx, mode, store.Config{
		Backend:         cfg.StoreConfig.Backend,
		PostgresDSN:     cfg.StoreConfig.PostgresDSN,
		RedisAddress:    cfg.StoreConfig.RedisAddress,
		RedisPassword:   cfg.StoreConfig.RedisPassword,
		RedisDB:         cfg.StoreConfig.RedisDB,
		CredentialsFile: cfg.StoreConfig.CredentialsFile,
	}, nil, logger)
	defer mgr.Close()

	if err := mgr.Validate(); err != nil {
		if mode == settings.ModeLive || *strict {
			logger.Error().Err(err).Str("mode", mode.String()).Msg("Configuration invalid")
			os.Exit(1)
		}
		logger.Warn().Err(err).Str("mode", mode.String()).Msg("Configuration incomplete")
		return
	}

	logger.Info().Str("mode", mode.String()).Int("exchanges", len(mgr.Exchanges())).
		Msg("Configuration valid")
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/internal/config"
)

const configEnv = "RETRO_CONFIG"

// loadConfig reads the layered client configuration. The --config flag wins
// over RETRO_CONFIG.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = os.Getenv(configEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// setupLogging applies level globally. An empty level means info.
func setupLogging(level string) zerolog.Level {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || parsed == zerolog.NoLevel {
			log.Warn().Str("level", level).Msg("unknown log level, using info")
		} else {
			lvl = parsed
		}
	}
	zerolog.SetGlobalLevel(lvl)
	return lvl
}

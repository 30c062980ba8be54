//go:build !(rp2040 || rp2350)

// Command sensorhub runs the sensor hub on a host: simulated sensors by
// default, or real I2C/SPI devices through periph on Linux.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"sensorhub-go/logx"
	"sensorhub-go/services/config"
	"sensorhub-go/services/hub"
	"sensorhub-go/services/hub/platform"
	"sensorhub-go/services/telemetry"
)

func main() {
	cfgPath := flag.String("config", "", "Path to a configuration file overlaid on the profile")
	profile := flag.String("profile", config.ProfileSim, "Built-in profile name")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	configCheck := flag.Bool("config-check", false, "Validate configuration and exit")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath, *profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalid: %v\n", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if _, err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalid: %v\n", err)
		os.Exit(2)
	}
	if *configCheck {
		fmt.Printf("Configuration %q OK.\n", cfg.Profile)
		return
	}

	zl, err := logx.Setup(logx.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logger")
	}
	log.Logger = zl
	logger := logx.Zerolog(zl)

	reg := prometheus.NewRegistry()
	var collector telemetry.Collector
	if pc, err := telemetry.NewPrometheusCollector(reg); err != nil {
		zl.Warn().Err(err).Msg("telemetry disabled")
		collector = telemetry.Noop()
	} else {
		collector = pc
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := platform.Open(cfg.Buses, logger)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to open platform")
	}
	defer func() {
		if err := res.Close(); err != nil {
			zl.Warn().Err(err).Msg("platform close")
		}
	}()

	h, err := hub.New(cfg, res, logger, hub.WithCollector(collector))
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to create hub")
	}
	if err := h.Init(); err != nil {
		zl.Fatal().Err(err).Msg("failed to start hub")
	}
	if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zl.Error().Err(err).Msg("hub stopped with error")
	}
}

func loadConfig(path, profile string) (config.HubConfig, error) {
	if path != "" {
		return config.LoadFile(path, profile)
	}
	cfg, ok := config.Profile(profile)
	if !ok {
		return config.HubConfig{}, fmt.Errorf("unknown profile %q (have %v): %w", profile, config.Profiles(), config.ErrConfig)
	}
	return cfg, nil
}

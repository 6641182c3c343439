package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/outboundhq/courier/internal/config"
	"github.com/outboundhq/courier/internal/dispatch"
	"github.com/outboundhq/courier/internal/registration"
	"github.com/outboundhq/courier/internal/server"
	"github.com/outboundhq/courier/internal/telemetry"
	"github.com/outboundhq/courier/internal/transport"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitTracer("courier", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	registration.RegisterBuiltins()

	configPath := os.Getenv("COURIER_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	coordinator := dispatch.New(
		transport.NewClient(transport.WithLogger(logger)),
		dispatch.WithLogger(logger),
	)

	integrations, err := server.FromConfig(cfg.Vendors, coordinator)
	if err != nil {
		log.Fatalf("Failed to configure integrations: %v", err)
	}
	handler := server.NewHandler(integrations, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reload vendor settings when the config file changes.
	go func() {
		err := config.Watch(ctx, configPath, logger, func(updated *config.Config) {
			reloaded, err := server.FromConfig(updated.Vendors, coordinator)
			if err != nil {
				logger.Error("config reload produced invalid vendors",
					slog.String("error", err.Error()))
				return
			}
			handler.SetIntegrations(reloaded)
		})
		if err != nil {
			logger.Warn("config watch disabled", slog.String("error", err.Error()))
		}
	}()

	srv := server.New(cfg.Server.Port, logger, handler)
	logger.Info("configured integrations", slog.Int("count", len(integrations)))
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

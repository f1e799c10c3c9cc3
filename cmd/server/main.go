package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/scoreboard/internal/api"
	"github.com/mcoot/scoreboard/internal/config"
	"github.com/mcoot/scoreboard/internal/factory"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, name := range cfg.InsecureDefaults() {
		logger.Warn("insecure default in use", slog.String("setting", name))
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, factory.FromEnv(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	if err := app.SeedUser(ctx, cfg.Seed); err != nil {
		logger.Error("failed to seed user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	server := api.NewServer(app.Router(), serverConfig, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageType),
		slog.String("env", cfg.AppEnv),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			_ = app.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"moves/config"
	"moves/database"
	"moves/handlers"
	"moves/logging"
	"moves/metrics"
	"moves/services"
)

func main() {
	// Load configuration
	cfg := config.GetConfig()
	logging.Setup(cfg.LogLevel, cfg.Production)

	// Connect to database
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	m := metrics.New()
	svc := services.New(db,
		services.WithMetrics(m),
		services.WithGroupDefaults(cfg.DefaultMinVotes, cfg.DefaultDeadlineHours),
	)

	app := handlers.NewApp(handlers.New(svc, cfg), m)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			slog.Error("Error shutting down", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	slog.Info("Starting Moves", "addr", addr, "driver", cfg.DatabaseDriver)
	if err := app.Listen(addr); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

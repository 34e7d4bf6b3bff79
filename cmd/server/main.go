// Package main implements the entry point for the TaskFlow API server,
// a task-management backend with cookie-based JWT sessions, login lockout
// and per-user task boards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status) instead of serving")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment)

	return cfg, appLogger, nil
}

package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/platform/postgres"
)

// slogGooseLogger adapts slog to the goose.Logger interface.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// runMigrations executes the requested goose command against the configured
// database using the embedded migration files.
func runMigrations(cfg *config.Config, command string) error {
	goose.SetLogger(&slogGooseLogger{})
	goose.SetBaseFS(postgres.MigrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
	}()

	switch command {
	case "up":
		err = goose.Up(db, postgres.MigrationsDir)
	case "down":
		err = goose.Down(db, postgres.MigrationsDir)
	case "status":
		err = goose.Status(db, postgres.MigrationsDir)
	default:
		return fmt.Errorf("unknown migration command: %q", command)
	}

	if err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}

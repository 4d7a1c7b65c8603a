package repository

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "postgres" {
		driver = "pgx"
	}
	logger.Info("connecting to database", "driver", cfg.Driver)
	db, err := sqlx.ConnectContext(ctx, driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations in lexical order.
// Statements are written to be idempotent (CREATE IF NOT EXISTS).
func Migrate(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			logger.Error("migration failed", "migration", name, "error", err)
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.Debug("migration applied", "migration", name)
	}
	return nil
}

// isConflict reports whether the driver error is a unique-constraint violation.
// Covers both the sqlite and postgres wording.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}

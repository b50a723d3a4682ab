package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS game_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	player_id TEXT NOT NULL,
	result TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	board TEXT NOT NULL,
	moves INTEGER NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_game_results_player ON game_results (player_id);`

// Connect opens the SQLite database at dbPath and verifies the connection.
func Connect(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.ConnectContext(ctx, driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	// SQLite allows a single writer.
	pool.SetMaxOpenConns(1)

	slog.InfoContext(ctx, "Connected to database", "path", dbPath)
	return pool, nil
}

// Migrate creates the tables used by the service.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	slog.InfoContext(ctx, "DB connection initialized and schema verified.")
	return nil
}

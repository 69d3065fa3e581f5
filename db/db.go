package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"riotapi-schema/logfields"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB opens the build history database and bootstraps its schema
func NewDB(ctx context.Context, connStr string) (*DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Debug("Connected to build history database")
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS builds (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			endpoints INTEGER NOT NULL DEFAULT 0,
			regions INTEGER NOT NULL DEFAULT 0,
			dto_gaps INTEGER NOT NULL DEFAULT 0,
			spec_json TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create builds table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at)`)
	if err != nil {
		slog.Warn("Could not create builds index", logfields.Error(err))
	}

	return nil
}

// Package sqlite opens the embedded database used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"storyfeed-backend/internal/common/logger"
)

// Open opens or creates the database file at path. The pool is pinned to one
// connection: SQLite allows a single writer and every transaction in the
// content store must see the previous one committed.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}

	logger.Info().Str("path", path).Msg("SQLite database opened")
	return db, nil
}

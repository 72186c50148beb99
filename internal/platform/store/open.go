package store

import (
	"context"
	"fmt"

	"storyfeed-backend/internal/common/config"
	"storyfeed-backend/internal/platform/postgres"
	"storyfeed-backend/internal/platform/sqlite"
)

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var s *SQLStore
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s = NewSQLStore(db, SQLite)
	case "postgres":
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s = NewSQLStore(db, Postgres)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	if cfg.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Migrate applies the schema for SQL backends; other backends need none.
func Migrate(ctx context.Context, s Store) error {
	if m, ok := s.(interface{ Migrate(context.Context) error }); ok {
		return m.Migrate(ctx)
	}
	return nil
}

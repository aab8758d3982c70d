package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/support-intake/internal/config"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLite wraps an embedded database handle used when no managed Postgres is available.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database at cfg.Path and applies migrations.
func NewSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	dsn := cfg.Path
	if dsn != MemoryPath {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if cfg.Path == MemoryPath {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := RunSQLiteMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened sqlite store", zap.String("path", cfg.Path))
	return &SQLite{DB: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies the database is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("sqlite database not open")
	}
	return s.DB.PingContext(ctx)
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // sqlite driver with FTS5

	"github.com/hurou927/fide-ratings/internal/schema"
)

// sqliteBusyTimeout is how long SQLite waits on a locked database before
// returning SQLITE_BUSY.
const sqliteBusyTimeout = 10000 // milliseconds

// IsPostgres reports whether target is a PostgreSQL connection URL rather
// than a SQLite file path.
func IsPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// Open connects to target and returns the handle with the matching dialect.
// SQLite handles are limited to one connection so that session settings
// apply to every statement.
func Open(ctx context.Context, target string) (*sql.DB, schema.Dialect, error) {
	if target == "" {
		return nil, nil, errors.New("destination is empty")
	}
	if IsPostgres(target) {
		return openPostgres(ctx, target)
	}
	return openSQLite(ctx, target)
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, schema.Dialect, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing DSN: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, schema.Postgres, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, schema.Dialect, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", sqliteBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("apply pragmas: %w", err)
	}

	return db, schema.SQLite, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"
)

type Config struct {
	Driver      string
	DSN         string
	PingTimeout time.Duration
}

// DB is one open connection handle together with the dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// OpenFunc acquires a fresh handle. Every caller owns the handle it gets and
// must Close it.
type OpenFunc func(ctx context.Context) (*DB, error)

func Opener(cfg Config) OpenFunc {
	return func(ctx context.Context) (*DB, error) {
		return Open(ctx, cfg)
	}
}

func Wrap(db *sql.DB, dialect Dialect) *DB {
	return &DB{DB: db, Dialect: dialect}
}

func Open(ctx context.Context, cfg Config) (*DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("store dsn is required")
	}
	dialect, err := LookupDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", dialect.Name, err)
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", dialect.Name, err)
	}

	return Wrap(db, dialect), nil
}

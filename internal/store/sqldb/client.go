package sqldb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Config holds SQL connection settings.
type Config struct {
	Dialect Dialect
	DSN     string // postgres URL or sqlite file path
}

// DB wraps the sqlx handle together with its dialect.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Open connects and verifies the database, retrying with exponential backoff.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	var driver, dsn string
	switch cfg.Dialect {
	case DialectPostgres:
		driver, dsn = "postgres", cfg.DSN
	case DialectSQLite:
		// WAL + busy timeout so the sweep and request writes do not trip over each other
		driver, dsn = "sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if cfg.Dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	backoff := initialBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return &DB{DB: db, Dialect: cfg.Dialect}, nil
		}
		if attempt == maxRetries {
			break
		}
		slog.Warn("sql ping failed, retrying",
			"dialect", cfg.Dialect,
			"attempt", attempt,
			"backoff", backoff,
			"err", err)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping %s after %d attempts: %w", driver, maxRetries, err)
}

// Ping verifies connectivity (used by /readyz).
func (d *DB) Ping(ctx context.Context) error {
	return d.PingContext(ctx)
}

// isUniqueViolation reports whether err came from a unique or primary key constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

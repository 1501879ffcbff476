package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver with FTS5
)

// Dialect identifies the SQL engine behind a connection.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// driver names registered with database/sql.
const (
	sqliteDriver = "sqlite"
	pgxDriver    = "pgx"
)

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

// ParseURL splits a DATABASE_URL into its dialect and the DSN handed to the driver.
//
//	sqlite://./agentjobs.db      -> sqlite, ./agentjobs.db
//	sqlite:///var/lib/jobs.db    -> sqlite, /var/lib/jobs.db
//	postgres://user@host/db      -> postgres, postgres://user@host/db
func ParseURL(url string) (Dialect, string, error) {
	switch {
	case url == "":
		return "", "", fmt.Errorf("database URL is required")
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if strings.HasPrefix(path, "/./") {
			path = path[1:]
		}
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL %q has no path", url)
		}
		return DialectSQLite, path, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme: %q", url)
	}
}

// DialectOf reports the dialect of an open connection.
func DialectOf(db *sqlx.DB) Dialect {
	if db.DriverName() == pgxDriver {
		return DialectPostgres
	}
	return DialectSQLite
}

// NewDB opens and pings the database named by url.
func NewDB(ctx context.Context, url string) (*sqlx.DB, error) {
	dialect, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	switch dialect {
	case DialectSQLite:
		db, err = sqlx.ConnectContext(ctx, sqliteDriver, sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
	case DialectPostgres:
		db, err = sqlx.ConnectContext(ctx, pgxDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Package store provides SQL storage (SQLite or PostgreSQL) for articles,
// their engagement, tags, ratings, highlights, bookmarks, comments and users.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/SergeyParamoshkin/speaksfer/internal/apperr"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultMaxRetries = 5
)

// DB wraps the SQL connection and a statement builder bound to the
// driver's placeholder format.
type DB struct {
	conn       *sql.DB
	driver     string
	sb         sq.StatementBuilderType
	maxRetries int
}

// Option tunes a DB.
type Option func(*DB)

// WithMaxRetries bounds optimistic update attempts of one article.
func WithMaxRetries(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.maxRetries = n
		}
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// New opens the database for driver ("sqlite" or "postgres") and migrates
// the schema.
func New(ctx context.Context, driver, dsn string, opts ...Option) (*DB, error) {
	db := &DB{driver: driver, maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(db)
	}

	switch driver {
	case DriverSQLite:
		conn, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One connection keeps in-memory databases alive and serializes writers.
		conn.SetMaxOpenConns(1)
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		db.conn = conn
		db.sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	case DriverPostgres:
		conn, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)
		db.conn = conn
		db.sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := db.migrate(ctx); err != nil {
		db.conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the driver name the DB was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if db.driver == DriverPostgres {
		schema = postgresSchema
	}
	_, err := db.conn.ExecContext(ctx, schema)

	return err
}

func (db *DB) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (db *DB) exec(ctx context.Context, q querier, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return q.ExecContext(ctx, query, args...)
}

func (db *DB) query(ctx context.Context, q querier, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return q.QueryContext(ctx, query, args...)
}

func (db *DB) queryRow(ctx context.Context, q querier, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return q.QueryRowContext(ctx, query, args...), nil
}

func (db *DB) count(ctx context.Context, q querier, b sq.SelectBuilder) (int, error) {
	row, err := db.queryRow(ctx, q, b)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

// isUniqueViolation reports a unique or primary key constraint failure.
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

// isForeignKeyViolation reports a reference to a missing row.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}

	return false
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what)
	}

	return err
}

func now() time.Time {
	return time.Now().UTC()
}

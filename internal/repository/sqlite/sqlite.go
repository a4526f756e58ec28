// Package sqlite implements the repository interfaces over an embedded SQLite
// database, using the pure-Go modernc.org/sqlite driver (no cgo, so the
// binary cross-compiles anywhere Go runs).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Also registers the "sqlite" driver with database/sql.
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface plus the TxRunner.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids SQLITE_BUSY
	// under concurrent requests and keeps the pragmas below in force for
	// every query.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows reads concurrent with a write; foreign keys are off by
	// default in SQLite and the cascade chain user→deck→card/share needs them.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			login         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS decks (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name            TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			cards_count     INTEGER NOT NULL DEFAULT 0,
			learned_percent INTEGER NOT NULL DEFAULT 0,
			last_studied    DATETIME,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL,
			UNIQUE (user_id, name)
		);
		CREATE INDEX IF NOT EXISTS idx_decks_user_id ON decks(user_id);

		CREATE TABLE IF NOT EXISTS cards (
			id         TEXT PRIMARY KEY,
			deck_id    TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			question   TEXT NOT NULL,
			answer     TEXT NOT NULL,
			is_learned INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cards_deck_id ON cards(deck_id);

		CREATE TABLE IF NOT EXISTS deck_shares (
			token   TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_deck_shares_deck_id ON deck_shares(deck_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// txKey marks an open transaction in a context. Unexported so only InTx can
// put one there.
type txKey struct{}

// InTx runs fn inside a single transaction. Every repository call made with
// the context passed to fn joins that transaction. A nested InTx joins the
// outer transaction rather than opening a new one, so a service can compose
// another service's transactional method.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rolling back after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// querier is the subset of sql.DB and sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the open transaction from ctx if there is one, the pool
// otherwise.
func (db *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.conn
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
// involving the given "table.column". The driver's error text names the
// violated columns, e.g. "UNIQUE constraint failed: users.email".
func isUniqueViolation(err error, column string) bool {
	var serr *sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	if serr.Code() != sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
		return false
	}
	return column == "" || strings.Contains(serr.Error(), column)
}

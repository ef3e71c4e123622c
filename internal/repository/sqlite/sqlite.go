// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C toolchain. Use ":memory:" for a throwaway database in tests.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB     : a connection pool (NOT a single connection!)
//   - sql.Tx     : a transaction
//   - sql.Row    : a single result row
//   - sql.Rows   : multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// pragmas are applied by the driver to every pooled connection. Running them
// once through Exec would only configure whichever connection served that call.
const pragmas = "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// DB owns the connection pool and hands out one repository per table.
type DB struct {
	conn     *sql.DB
	users    *UserDB
	posts    *PostDB
	sessions *SessionDB
}

// New opens (creating if needed) the database at dbPath and migrates it to
// the latest schema.
//
// dbPath examples:
//   - "data/postboard.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests; lost on close)
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database. Pin the
	// pool to one connection so all queries see the same data.
	if dbPath == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	// sql.Open does not connect; Ping surfaces a bad path or permissions now.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := Migrate(conn, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return NewFromConn(conn), nil
}

// NewFromConn wraps an existing pool without migrating it. Tests use it to
// put a sqlmock connection behind the repositories.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{
		conn:     conn,
		users:    &UserDB{conn: conn},
		posts:    &PostDB{conn: conn},
		sessions: &SessionDB{conn: conn},
	}
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + pragmas
}

// Users returns the user repository.
func (db *DB) Users() *UserDB { return db.users }

// Posts returns the post repository.
func (db *DB) Posts() *PostDB { return db.posts }

// Sessions returns the session repository.
func (db *DB) Sessions() *SessionDB { return db.sessions }

// Ping checks that the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
//
//	db, err := sqlite.New("data/postboard.db", logger)
//	if err != nil { ... }
//	defer db.Close()
func (db *DB) Close() error {
	return db.conn.Close()
}

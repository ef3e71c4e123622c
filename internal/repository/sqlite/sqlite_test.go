package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/postboard/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB opens a fresh, migrated in-memory database for one test.
// t.Helper() makes failures point at the caller's line.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(MemoryPath, discardLogger())
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Surname:      "Tester",
		Email:        email,
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplaceho",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// MIGRATION TESTS
// =========================================================================

func TestNew_CreatesSchema(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "posts", "sessions", "goose_db_version"} {
		var name string
		err := db.conn.QueryRowContext(context.Background(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestNew_ForeignKeysEnabled(t *testing.T) {
	db := newTestDB(t)

	var enabled int
	require.NoError(t, db.conn.QueryRow(`PRAGMA foreign_keys`).Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "postboard.db")

	first, err := New(path, discardLogger())
	require.NoError(t, err)
	createTestUser(t, first, "Ada", "ada@example.com")
	require.NoError(t, first.Close())

	second, err := New(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	// Data survives and migrations do not run twice.
	found, err := second.Users().GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Name)
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.db?"+pragmas, dsn("a.db"))
	assert.Equal(t, "a.db?mode=rwc&"+pragmas, dsn("a.db?mode=rwc"))
}

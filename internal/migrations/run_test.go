package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func getTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrations.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunMigrations(t *testing.T) {
	db := getTestDB(t)

	require.NoError(t, Run(db))

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	_, err = db.Exec(`INSERT INTO users (email, password_hash, created_at, trial_started_at) VALUES ('a@gmail.com', 'h', 1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (email, password_hash, created_at, trial_started_at) VALUES ('a@gmail.com', 'h', 2, 2)`)
	assert.Error(t, err, "email must be unique")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := getTestDB(t)

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	var version int
	err := db.QueryRow(`SELECT version FROM schema_migrations`).Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

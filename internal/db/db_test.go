package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_SQLite(t *testing.T) {
	conn, err := Connect(DriverSQLite, "file::memory:", time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, RunMigrations(conn))
	// A second run is a no-op
	require.NoError(t, RunMigrations(conn))

	var tables []string
	err = conn.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"matches", "players", "sessions", "tournaments", "users"}, tables)

	var foreignKeys int
	require.NoError(t, conn.Get(&foreignKeys, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, foreignKeys)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect("nope", "whatever", time.Second)
	assert.Error(t, err)
}

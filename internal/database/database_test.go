package database

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	t.Run("creates parent directory and schema", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "snapcharts.db")

		db, err := Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		require.NoError(t, Migrate(context.Background(), db))
		require.NoError(t, HealthCheck(db))

		var name string
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'favorite'`).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, "favorite", name)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		db, err := Open(filepath.Join(t.TempDir(), "twice.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		require.NoError(t, Migrate(context.Background(), db))
		require.NoError(t, Migrate(context.Background(), db))
	})
}

func TestSetMigrationLogger(t *testing.T) {
	var buf bytes.Buffer
	SetMigrationLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { SetMigrationLogger(zerolog.Nop()) })

	db, err := Open(filepath.Join(t.TempDir(), "logged.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	assert.Contains(t, buf.String(), `"component":"goose"`)

	buf.Reset()
	SetMigrationLogger(zerolog.Nop())
	db2, err := Open(filepath.Join(t.TempDir(), "quiet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db2.Close() })

	require.NoError(t, Migrate(context.Background(), db2))
	assert.Empty(t, buf.String())
}

func TestSchemaVersion(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "version.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))

	current, latest, err := SchemaVersion(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest)
	assert.Equal(t, latest, current)
}

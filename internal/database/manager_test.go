package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesSchema(t *testing.T) {
	m, err := Open(context.Background(), "file::memory:?cache=shared")
	require.NoError(t, err)
	defer m.Close()

	rows, err := m.DB().QueryContext(context.Background(),
		`SELECT name FROM sqlite_master WHERE type='table' AND name='documents'`)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next(), "documents table should exist after migration")
}

func TestOpen_IdempotentMigration(t *testing.T) {
	m, err := Open(context.Background(), "file::memory:?cache=shared&mode=rwc")
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.migrate(context.Background()))
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitrine-app/vitrine/internal/store"
	"github.com/vitrine-app/vitrine/internal/store/storetest"
)

// newTestStore creates a temporary on-disk SQLite database with schema applied.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, db, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "vitrine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return st
}

func TestSQLiteStoreCompliance(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "vitrine.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, EnsureSchema(context.Background(), db))
}

func TestHealthPing(t *testing.T) {
	st := newTestStore(t)
	p, ok := st.(interface{ HealthPing(context.Context) error })
	require.True(t, ok)
	require.NoError(t, p.HealthPing(context.Background()))
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "?", placeholders(1))
	require.Equal(t, "?,?,?", placeholders(3))
}

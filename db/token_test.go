package db_test

import (
	"context"
	"testing"

	"github.com/habedi/escola/auth"
	"github.com/habedi/escola/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database with the session schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// every pooled connection to :memory: would otherwise see its own empty database
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestKVRepository_GetMissing(t *testing.T) {
	repo := db.NewKVRepository(setupTestDB(t))

	v, ok, err := repo.Get(context.Background(), auth.AccessTokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestKVRepository_SetOverwrites(t *testing.T) {
	repo := db.NewKVRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, auth.AccessTokenKey, "A1"))
	require.NoError(t, repo.Set(ctx, auth.AccessTokenKey, "A2"))

	v, ok, err := repo.Get(ctx, auth.AccessTokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A2", v)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "upsert must not duplicate rows")
}

func TestKVRepository_DeleteIsIdempotent(t *testing.T) {
	repo := db.NewKVRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, auth.AccessTokenKey, "A1"))
	require.NoError(t, repo.Set(ctx, auth.RefreshTokenKey, "R1"))

	require.NoError(t, repo.Delete(ctx, auth.AccessTokenKey, auth.RefreshTokenKey))
	require.NoError(t, repo.Delete(ctx, auth.AccessTokenKey, auth.RefreshTokenKey))
	require.NoError(t, repo.Delete(ctx))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

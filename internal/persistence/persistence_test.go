package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/config"
)

func TestNewSQLite_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLite(ctx, config.SQLiteConfig{Path: MemoryPath}, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	var name string
	err = store.DB.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='support_tickets'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "support_tickets", name)
	assert.NoError(t, store.Ping(ctx))

	// idempotent
	assert.NoError(t, RunSQLiteMigrations(ctx, store.DB, zap.NewNop()))
}

func TestNewSQLite_FileDatabase(t *testing.T) {
	path := t.TempDir() + "/tickets.db"
	store, err := NewSQLite(context.Background(), config.SQLiteConfig{Path: path}, zap.NewNop())
	require.NoError(t, err)
	store.Close()
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (x INT);\n\n  CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, stmts)
}

func TestNilHandles(t *testing.T) {
	var pg *Postgres
	var rd *Redis
	var lite *SQLite
	ctx := context.Background()

	assert.Error(t, pg.Ping(ctx))
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, rd.Ping(ctx))
	assert.Error(t, rd.Publish(ctx, "c", []byte("x")))
	assert.Error(t, lite.Ping(ctx))
	pg.Close()
	rd.Close()
	lite.Close()
}

func TestNewPostgres_RequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRedis_Disabled(t *testing.T) {
	assert.Nil(t, NewRedis(config.RedisConfig{Enabled: false}, zap.NewNop()))
}

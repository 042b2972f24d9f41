package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/client-query-service/internal/config"
)

func TestMigrationScriptsOrdered(t *testing.T) {
	scripts, err := migrationScripts("postgres")
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "0001_init.sql", scripts[0].name)
	assert.Equal(t, "0002_query_indexes.sql", scripts[1].name)
	assert.Contains(t, scripts[0].body, "client_queries")

	_, err = migrationScripts("oracle")
	assert.Error(t, err)
}

func TestSQLitePoolAppliesSchema(t *testing.T) {
	pool, err := NewSQLite(filepath.Join(t.TempDir(), "schema.db"), 2, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, pool.Ping(context.Background()))

	// reopening an existing file must not fail on the already created tables
	path := pool.path
	pool.Close()
	reopened, err := NewSQLite(path, 1, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()
	assert.NoError(t, reopened.Ping(context.Background()))
}

func TestRedisWithoutAddressIsDisabled(t *testing.T) {
	r := NewRedis(config.RedisConfig{}, zap.NewNop())
	assert.False(t, r.Configured())
	assert.Error(t, r.Ping(context.Background()))
	r.Close()
}

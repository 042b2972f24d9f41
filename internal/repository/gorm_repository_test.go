package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestGormIdentifierColumnsAreCaseSensitive(t *testing.T) {
	cache := &sync.Map{}

	users, err := schema.Parse(&userRecord{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	username := users.LookUpField("username")
	require.NotNil(t, username)
	assert.Contains(t, string(username.DataType), "COLLATE utf8mb4_bin")
	assert.True(t, username.Unique || len(users.ParseIndexes()) > 0)

	queries, err := schema.Parse(&queryRecord{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)
	queryID := queries.LookUpField("query_id")
	require.NotNil(t, queryID)
	assert.True(t, queryID.PrimaryKey)
	assert.Contains(t, string(queryID.DataType), "COLLATE utf8mb4_bin")
}

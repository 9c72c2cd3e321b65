package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLiteBackend(t *testing.T, name string) *GormBackend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	backend, err := NewGormBackend(db)
	require.NoError(t, err)
	return backend
}

func TestGormBackend_ReadMissing(t *testing.T) {
	backend := setupSQLiteBackend(t, "gorm_missing")

	data, err := backend.Read(context.Background(), CollectionTables)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGormBackend_UpsertBatch(t *testing.T) {
	backend := setupSQLiteBackend(t, "gorm_upsert")
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, []Write{
		{Collection: CollectionTables, Data: []byte(`[{"tableId":1}]`)},
		{Collection: CollectionCustomers, Data: []byte(`[]`)},
	}))
	require.NoError(t, backend.Write(ctx, []Write{
		{Collection: CollectionTables, Data: []byte(`[{"tableId":1},{"tableId":2}]`)},
	}))

	tables, err := backend.Read(ctx, CollectionTables)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"tableId":1},{"tableId":2}]`, string(tables))

	customers, err := backend.Read(ctx, CollectionCustomers)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(customers))
}

func TestGormBackend_GatewayRoundTrip(t *testing.T) {
	roundTrip(t, NewGateway(setupSQLiteBackend(t, "gorm_roundtrip")))
}

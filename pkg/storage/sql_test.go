package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslo-shop/storefront/pkg/db"
	"github.com/teslo-shop/storefront/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupKVTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.KVEntry{}))

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestSQLStoreUpsertsValues(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(setupKVTestDB(t), "sess-1")

	_, found, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "cart", `[{"_id":"p1"}]`))
	require.NoError(t, store.Set(ctx, "cart", `[]`))

	value, found, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, value)
}

func TestSQLProviderScopesBySession(t *testing.T) {
	ctx := context.Background()
	conn := setupKVTestDB(t)
	provider := NewSQLProvider(db.Wrap(conn))

	require.NoError(t, NewSQLStore(conn, "other").Set(ctx, "zip", "00000"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSessionID(req.Context(), "mine"))
	store, err := provider.Open(httptest.NewRecorder(), req)
	require.NoError(t, err)

	_, found, err := store.Get(ctx, "zip")
	require.NoError(t, err)
	assert.False(t, found, "other session value must not leak")

	require.NoError(t, store.Set(ctx, "zip", "170150"))

	var count int64
	require.NoError(t, conn.Model(&models.KVEntry{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetMergePreservesSiblings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{"displayName": "Asha", "course": "CS"}, false))
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{"course": "EE"}, true))

	var doc map[string]interface{}
	require.NoError(t, store.Get(ctx, "users", "u1", &doc))
	assert.Equal(t, "Asha", doc["displayName"])
	assert.Equal(t, "EE", doc["course"])
}

func TestMemoryStoreSetWithoutMergeReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{"displayName": "Asha"}, false))
	require.NoError(t, store.Set(ctx, "users", "u1", map[string]interface{}{"course": "EE"}, false))

	var doc map[string]interface{}
	require.NoError(t, store.Get(ctx, "users", "u1", &doc))
	assert.NotContains(t, doc, "displayName")
}

func TestMemoryStoreUpdateRequiresDocument(t *testing.T) {
	store := NewMemoryStore()
	err := store.Update(context.Background(), "users", "ghost", map[string]interface{}{"a": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreQueryByField(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "attendance", "r1", map[string]interface{}{"userId": "u1"}, false))
	require.NoError(t, store.Set(ctx, "attendance", "r2", map[string]interface{}{"userId": "u2"}, false))

	docs, err := store.QueryByField(ctx, "attendance", "userId", "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "r1", docs[0].ID)
}

package batchstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaultsToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mtc")
	store, err := NewStore(context.Background(), StoreConfig{Dir: dir})
	require.NoError(t, err)
	_, ok := store.(*FileStore)
	assert.True(t, ok)
}

func TestNewStoreRejectsUnknownBackend(t *testing.T) {
	_, err := NewStore(context.Background(), StoreConfig{Backend: "azure"})
	require.Error(t, err)
}

func TestNewStoreS3RequiresBucket(t *testing.T) {
	_, err := NewStore(context.Background(), StoreConfig{Backend: "s3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage_bucket")
}

func TestNewStoreGCSRequiresBucket(t *testing.T) {
	_, err := NewStore(context.Background(), StoreConfig{Backend: "gcs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage_bucket")
}

func TestNewLatestPointerNilWithoutRedis(t *testing.T) {
	assert.Nil(t, NewLatestPointer(StoreConfig{}))
}

func TestNewLatestPointerReturnsRedisPointer(t *testing.T) {
	p := NewLatestPointer(StoreConfig{RedisAddr: "localhost:6379"})
	require.NotNil(t, p)
	_, ok := p.(*RedisPointer)
	assert.True(t, ok)
}

func TestNewIndexNoneReturnsNil(t *testing.T) {
	idx, err := NewIndex(StoreConfig{})
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestNewIndexRejectsUnknownBackend(t *testing.T) {
	_, err := NewIndex(StoreConfig{IndexBackend: "oracle"})
	require.Error(t, err)
}

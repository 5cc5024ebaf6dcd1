package batchstore

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTripsBlobs(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.WriteWindow(ctx, 5, []byte("window-bytes")))
	require.NoError(t, store.WriteAssertions(ctx, 5, []byte("assertions-bytes")))
	require.NoError(t, store.WriteCertificates(ctx, 5, []byte("cert-bytes")))

	w, err := store.ReadWindow(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "window-bytes", string(w))

	a, err := store.ReadAssertions(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "assertions-bytes", string(a))

	rc, err := store.OpenCertificateStream(ctx, 5)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "cert-bytes", string(data))
}

func TestFileStoreLatestDefaultsToNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSetLatestRoundTrips(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewFileStore(root)
	require.NoError(t, err)

	require.NoError(t, store.SetLatest(ctx, 42))

	n, ok, err := store.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(42), n)

	// Confirm rename-over-temp left no stray temp file.
	matches, statErr := filepath.Glob(filepath.Join(root, "batches", "latest.tmp"))
	require.NoError(t, statErr)
	assert.Empty(t, matches)
}

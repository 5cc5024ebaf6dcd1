package mtcconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("MTC_ISSUER_ID", "issuer-1")
	t.Setenv("MTC_KEY_PATH", "/tmp/key.pem")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "none", cfg.IndexBackend)
	assert.Equal(t, "data/mtc", cfg.StorageDir)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mtc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
issuer_id: issuer-from-yaml
key_path: /keys/issuer.pem
storage_backend: s3
storage_bucket: mtc-batches
index_backend: sqlite
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "issuer-from-yaml", cfg.IssuerID)
	assert.Equal(t, "s3", cfg.StorageBackend)
	assert.Equal(t, "mtc-batches", cfg.StorageBucket)
	assert.Equal(t, "sqlite", cfg.IndexBackend)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mtc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
issuer_id: issuer-from-yaml
key_path: /keys/issuer.pem
storage_backend: file
`), 0o644))

	t.Setenv("MTC_STORAGE_BACKEND", "gcs")
	t.Setenv("MTC_ISSUER_ID", "issuer-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "issuer-from-env", cfg.IssuerID)
	assert.Equal(t, "gcs", cfg.StorageBackend)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("MTC_ISSUER_ID", "issuer-1")
	t.Setenv("MTC_KEY_PATH", "/tmp/key.pem")
	t.Setenv("MTC_STORAGE_BACKEND", "azure")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRequiresIssuerID(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUnknownCommandReturnsExitCode2(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"mtc", "bogus"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Unknown command")
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"mtc"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "USAGE")
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"mtc", "help"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "mtc <command>")
}

func TestFullIssuanceAndVerificationPipeline(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	store := filepath.Join(dir, "store")

	var out, errOut bytes.Buffer
	code := Run([]string{"mtc", "generate-test-keys", "--out", keysDir}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	assertionsPath := filepath.Join(dir, "assertions.json")
	require.NoError(t, os.WriteFile(assertionsPath,
		[]byte(`[{"subjectType": "tls", "subjectInfo": "AAAA", "dns": ["a.example.com"]}]`), 0o644))

	out.Reset()
	errOut.Reset()
	code = Run([]string{
		"mtc", "run-batch",
		"--assertions", assertionsPath,
		"--issuer-id", "issuer-1",
		"--key", filepath.Join(keysDir, "test_priv.pem"),
		"--store", store,
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "issued batch 0")

	certPath := filepath.Join(dir, "cert.bin")
	out.Reset()
	errOut.Reset()
	code = Run([]string{
		"mtc", "generate-certificate",
		"--batch", "0",
		"--index", "0",
		"--issuer-id", "issuer-1",
		"--store", store,
		"--out", certPath,
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	windowPath := filepath.Join(store, "batches", "0", "signed-validity-window")

	out.Reset()
	errOut.Reset()
	code = Run([]string{
		"mtc", "verify",
		"--cert", certPath,
		"--window", windowPath,
		"--pubkey", filepath.Join(keysDir, "test_pub.pem"),
		"--issuer-id", "issuer-1",
	}, &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "PASS")
}

func TestVerifyFailsForWrongIssuer(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	store := filepath.Join(dir, "store")

	var out, errOut bytes.Buffer
	require.Equal(t, 0, Run([]string{"mtc", "generate-test-keys", "--out", keysDir}, &out, &errOut))

	assertionsPath := filepath.Join(dir, "assertions.json")
	require.NoError(t, os.WriteFile(assertionsPath,
		[]byte(`[{"subjectType": "tls", "subjectInfo": "AAAA"}]`), 0o644))

	out.Reset()
	errOut.Reset()
	require.Equal(t, 0, Run([]string{
		"mtc", "run-batch",
		"--assertions", assertionsPath,
		"--issuer-id", "issuer-1",
		"--key", filepath.Join(keysDir, "test_priv.pem"),
		"--store", store,
	}, &out, &errOut))

	certPath := filepath.Join(dir, "cert.bin")
	out.Reset()
	errOut.Reset()
	require.Equal(t, 0, Run([]string{
		"mtc", "generate-certificate",
		"--batch", "0", "--index", "0",
		"--issuer-id", "issuer-1",
		"--store", store,
		"--out", certPath,
	}, &out, &errOut))

	windowPath := filepath.Join(store, "batches", "0", "signed-validity-window")

	out.Reset()
	errOut.Reset()
	code := Run([]string{
		"mtc", "verify",
		"--cert", certPath,
		"--window", windowPath,
		"--pubkey", filepath.Join(keysDir, "test_pub.pem"),
		"--issuer-id", "wrong-issuer",
	}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FAIL")
}

func TestGenerateCertificateRejectsWrongIssuer(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	store := filepath.Join(dir, "store")

	var out, errOut bytes.Buffer
	require.Equal(t, 0, Run([]string{"mtc", "generate-test-keys", "--out", keysDir}, &out, &errOut))

	assertionsPath := filepath.Join(dir, "assertions.json")
	require.NoError(t, os.WriteFile(assertionsPath,
		[]byte(`[{"subjectType": "tls", "subjectInfo": "AAAA"}]`), 0o644))

	out.Reset()
	errOut.Reset()
	require.Equal(t, 0, Run([]string{
		"mtc", "run-batch",
		"--assertions", assertionsPath,
		"--issuer-id", "issuer-1",
		"--key", filepath.Join(keysDir, "test_priv.pem"),
		"--store", store,
	}, &out, &errOut))

	out.Reset()
	errOut.Reset()
	code := Run([]string{
		"mtc", "generate-certificate",
		"--batch", "0", "--index", "0",
		"--issuer-id", "someone-else",
		"--store", store,
		"--out", filepath.Join(dir, "cert.bin"),
	}, &out, &errOut)
	assert.Equal(t, 1, code)
}

func TestRunBatchUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	store := filepath.Join(dir, "store")

	var out, errOut bytes.Buffer
	require.Equal(t, 0, Run([]string{"mtc", "generate-test-keys", "--out", keysDir}, &out, &errOut))

	assertionsPath := filepath.Join(dir, "assertions.json")
	require.NoError(t, os.WriteFile(assertionsPath,
		[]byte(`[{"subjectType": "tls", "subjectInfo": "AAAA"}]`), 0o644))

	configPath := filepath.Join(dir, "mtc.yaml")
	configYAML := "issuer_id: issuer-from-config\n" +
		"key_path: " + filepath.Join(keysDir, "test_priv.pem") + "\n" +
		"storage_backend: file\n" +
		"storage_dir: " + store + "\n" +
		"index_backend: none\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))

	out.Reset()
	errOut.Reset()
	code := Run([]string{
		"mtc", "run-batch",
		"--config", configPath,
		"--assertions", assertionsPath,
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "issued batch 0")

	_, err := os.Stat(filepath.Join(store, "batches", "0", "signed-validity-window"))
	require.NoError(t, err)
}

func TestRunBatchFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	keysDir := filepath.Join(dir, "keys")
	configStore := filepath.Join(dir, "config-store")
	flagStore := filepath.Join(dir, "flag-store")

	var out, errOut bytes.Buffer
	require.Equal(t, 0, Run([]string{"mtc", "generate-test-keys", "--out", keysDir}, &out, &errOut))

	assertionsPath := filepath.Join(dir, "assertions.json")
	require.NoError(t, os.WriteFile(assertionsPath,
		[]byte(`[{"subjectType": "tls", "subjectInfo": "AAAA"}]`), 0o644))

	configPath := filepath.Join(dir, "mtc.yaml")
	configYAML := "issuer_id: issuer-from-config\n" +
		"key_path: " + filepath.Join(keysDir, "test_priv.pem") + "\n" +
		"storage_backend: file\n" +
		"storage_dir: " + configStore + "\n" +
		"index_backend: none\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))

	out.Reset()
	errOut.Reset()
	code := Run([]string{
		"mtc", "run-batch",
		"--config", configPath,
		"--assertions", assertionsPath,
		"--issuer-id", "issuer-from-flag",
		"--store", flagStore,
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	_, err := os.Stat(filepath.Join(flagStore, "batches", "0", "signed-validity-window"))
	require.NoError(t, err, "flag-supplied --store should override the config file's storage_dir")
	_, err = os.Stat(filepath.Join(configStore, "batches", "0", "signed-validity-window"))
	require.True(t, os.IsNotExist(err))
}

func TestGenerateTestKeysWithPassphrase(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := Run([]string{"mtc", "generate-test-keys", "--out", dir, "--passphrase", "hunter2"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "passphrase-protected")

	_, err := os.Stat(filepath.Join(dir, "test_priv.pem"))
	require.NoError(t, err)
}

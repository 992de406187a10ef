package vault_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radaiko/gourmet-cache/internal/vault"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newVault(t *testing.T, key vault.KeySource) *vault.Vault {
	t.Helper()
	return vault.New(t.TempDir(), key, quietLogger())
}

func TestVault_RoundTrip(t *testing.T) {
	v := newVault(t, vault.StaticKeySource("device-a"))

	require.NoError(t, v.Save("gourmet", "user", "pass"))

	creds, ok := v.Get("gourmet")
	require.True(t, ok)
	assert.Equal(t, "user", creds.Username)
	assert.Equal(t, "pass", creds.Password)
}

func TestVault_NeverSavedIsAbsent(t *testing.T) {
	v := newVault(t, vault.StaticKeySource("device-a"))

	_, ok := v.Get("vento")
	assert.False(t, ok)
}

func TestVault_Overwrite(t *testing.T) {
	v := newVault(t, vault.StaticKeySource("device-a"))

	require.NoError(t, v.Save("gourmet", "user", "old"))
	require.NoError(t, v.Save("gourmet", "user", "new"))

	creds, ok := v.Get("gourmet")
	require.True(t, ok)
	assert.Equal(t, "new", creds.Password)
}

func TestVault_Delete(t *testing.T) {
	v := newVault(t, vault.StaticKeySource("device-a"))

	require.NoError(t, v.Save("gourmet", "user", "pass"))
	require.NoError(t, v.Delete("gourmet"))

	_, ok := v.Get("gourmet")
	assert.False(t, ok)

	// Deleting an absent entry is not an error.
	assert.NoError(t, v.Delete("gourmet"))
}

func TestVault_CrossDeviceIsolation(t *testing.T) {
	dir := t.TempDir()

	deviceA := vault.New(dir, vault.StaticKeySource("device-a"), quietLogger())
	require.NoError(t, deviceA.Save("gourmet", "user", "pass"))

	// Same file, different device key: absent, not an error.
	deviceB := vault.New(dir, vault.StaticKeySource("device-b"), quietLogger())
	_, ok := deviceB.Get("gourmet")
	assert.False(t, ok)

	// The original device still decrypts fine.
	creds, ok := deviceA.Get("gourmet")
	require.True(t, ok)
	assert.Equal(t, "user", creds.Username)
}

func TestVault_CorruptedFileIsAbsent(t *testing.T) {
	dir := t.TempDir()
	v := vault.New(dir, vault.StaticKeySource("device-a"), quietLogger())

	require.NoError(t, v.Save("gourmet", "user", "pass"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gourmet.cred"), []byte("garbage"), 0o600))

	_, ok := v.Get("gourmet")
	assert.False(t, ok)
}

func TestDeviceKeySource_StableAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := vault.NewDeviceKeySource(dir).Passphrase()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := vault.NewDeviceKeySource(dir).Passphrase()
	require.NoError(t, err)
	assert.Equal(t, first, second, "same device must derive the same passphrase")
}

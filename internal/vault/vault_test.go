package vault

import (
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	return New(identity)
}

func TestRoundTrip(t *testing.T) {
	v := newTestVault(t)

	secrets := [][]byte{
		[]byte("sk-live-0123456789abcdef"),
		[]byte("x"),
		make([]byte, 4096),
	}
	for _, secret := range secrets {
		ciphertext, wrapped, err := v.Encrypt(secret)
		require.NoError(t, err)

		plaintext, err := v.Decrypt(ciphertext, wrapped)
		require.NoError(t, err)
		assert.Equal(t, secret, plaintext)
	}
}

func TestEncryptUsesFreshDataKey(t *testing.T) {
	v := newTestVault(t)

	c1, w1, err := v.Encrypt([]byte("same secret"))
	require.NoError(t, err)
	c2, w2, err := v.Encrypt([]byte("same secret"))
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2)
	assert.NotEqual(t, w1, w2)
}

func TestDecryptWithDifferentMasterKeyFails(t *testing.T) {
	v1 := newTestVault(t)
	v2 := newTestVault(t)

	ciphertext, wrapped, err := v1.Encrypt([]byte("sk-live-secret"))
	require.NoError(t, err)

	plaintext, err := v2.Decrypt(ciphertext, wrapped)
	assert.Nil(t, plaintext)

	var vaultErr *Error
	require.ErrorAs(t, err, &vaultErr)
	assert.Equal(t, OpDecrypt, vaultErr.Op)
}

func TestDecryptRejectsTamperedMaterial(t *testing.T) {
	v := newTestVault(t)
	ciphertext, wrapped, err := v.Encrypt([]byte("sk-live-secret"))
	require.NoError(t, err)

	t.Run("flipped ciphertext byte", func(t *testing.T) {
		tampered := append([]byte(nil), ciphertext...)
		tampered[len(tampered)-1] ^= 0xff
		_, err := v.Decrypt(tampered, wrapped)
		var vaultErr *Error
		assert.ErrorAs(t, err, &vaultErr)
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		_, err := v.Decrypt(ciphertext[:10], wrapped)
		var vaultErr *Error
		assert.ErrorAs(t, err, &vaultErr)
	})

	t.Run("garbage wrapped key", func(t *testing.T) {
		_, err := v.Decrypt(ciphertext, []byte("not an age file"))
		var vaultErr *Error
		assert.ErrorAs(t, err, &vaultErr)
	})

	t.Run("swapped wrapped key", func(t *testing.T) {
		_, otherWrapped, err := v.Encrypt([]byte("another secret"))
		require.NoError(t, err)
		_, err = v.Decrypt(ciphertext, otherWrapped)
		var vaultErr *Error
		assert.ErrorAs(t, err, &vaultErr)
	})
}

func TestLoadOrCreateMasterKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "master.key")

	first, err := LoadOrCreateMasterKey(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadOrCreateMasterKey(path)
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())

	// A vault reopened from the same file decrypts what the first one sealed.
	ciphertext, wrapped, err := New(first).Encrypt([]byte("persisted"))
	require.NoError(t, err)
	reopened, err := Open(path)
	require.NoError(t, err)
	plaintext, err := reopened.Decrypt(ciphertext, wrapped)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), plaintext)
}

func TestLoadOrCreateMasterKeyRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a key"), 0o600))

	_, err := LoadOrCreateMasterKey(path)
	var vaultErr *Error
	require.ErrorAs(t, err, &vaultErr)
	assert.Equal(t, OpLoadKey, vaultErr.Op)
}

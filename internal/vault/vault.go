// Package vault implements envelope encryption for provider secrets. Each
// secret is sealed with a fresh XChaCha20-Poly1305 data key and the data key
// is wrapped to the process-wide age master identity.
package vault

import (
	"bytes"
	"crypto/rand"
	"io"

	"filippo.io/age"
	"golang.org/x/crypto/chacha20poly1305"
)

// Vault is immutable after construction and safe for concurrent use.
type Vault struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

func New(identity *age.X25519Identity) *Vault {
	return &Vault{
		identity:  identity,
		recipient: identity.Recipient(),
	}
}

// Open loads (or creates) the master key at path and returns a ready vault.
func Open(path string) (*Vault, error) {
	identity, err := LoadOrCreateMasterKey(path)
	if err != nil {
		return nil, err
	}
	return New(identity), nil
}

// Recipient is the public half of the master key.
func (v *Vault) Recipient() string {
	return v.recipient.String()
}

// Encrypt seals plaintext under a new data key and returns the ciphertext
// (nonce || sealed) together with the wrapped data key.
func (v *Vault) Encrypt(plaintext []byte) (ciphertext []byte, wrappedKey []byte, err error) {
	dataKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, nil, wrap(OpEncrypt, "generate data key: %w", err)
	}
	defer clear(dataKey)

	aead, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, nil, wrap(OpEncrypt, "init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, wrap(OpEncrypt, "generate nonce: %w", err)
	}
	ciphertext = aead.Seal(nonce, nonce, plaintext, nil)

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, v.recipient)
	if err != nil {
		return nil, nil, wrap(OpEncrypt, "create key wrapper: %w", err)
	}
	if _, err := w.Write(dataKey); err != nil {
		return nil, nil, wrap(OpEncrypt, "wrap data key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, nil, wrap(OpEncrypt, "finalize key wrap: %w", err)
	}

	return ciphertext, buf.Bytes(), nil
}

// Decrypt unwraps the data key with the master identity and opens ciphertext.
func (v *Vault) Decrypt(ciphertext, wrappedKey []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(wrappedKey), v.identity)
	if err != nil {
		return nil, wrap(OpDecrypt, "unwrap data key: %w", err)
	}
	dataKey, err := io.ReadAll(r)
	if err != nil {
		return nil, wrap(OpDecrypt, "read data key: %w", err)
	}
	defer clear(dataKey)

	if len(dataKey) != chacha20poly1305.KeySize {
		return nil, wrap(OpDecrypt, "data key has %d bytes, want %d", len(dataKey), chacha20poly1305.KeySize)
	}

	aead, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, wrap(OpDecrypt, "init cipher: %w", err)
	}

	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, wrap(OpDecrypt, "ciphertext too short")
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, wrap(OpDecrypt, "open ciphertext: %w", err)
	}
	return plaintext, nil
}

// Package vault provides reversible encryption for sensitive identity
// fields so an operator with a disclosure need (e.g. a chargeback dispute)
// can recover the original value, while the data at rest stays opaque.
// This is the reversible half of the sensitive-input contract; the
// one-way half lives in package hasher.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor seals and opens sensitive strings with ChaCha20-Poly1305
// AEAD. The key is a secret configured at boot.
type Encryptor struct {
	aead chacha20poly1305.AEAD
}

// New builds an Encryptor from a 32-byte key. Absence or a malformed key
// is a fatal initialization error, same as the Hasher's key requirement.
func New(key string) (*Encryptor, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault: encryption key must be exactly %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.New([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// Seal encrypts plaintext and returns a base64-encoded ciphertext of the
// form nonce‖sealed. The nonce is fresh per call.
func (e *Encryptor) Seal(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: generating nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal, returning the original plaintext.
func (e *Encryptor) Open(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("vault: decoding ciphertext: %w", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("vault: ciphertext too short")
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plain, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("vault: opening ciphertext: %w", err)
	}
	return string(plain), nil
}

// DeriveKey pads or truncates an arbitrary secret to the AEAD's required
// key size so operators can configure a human-chosen passphrase instead
// of a raw 32-byte value. It is a convenience, not a KDF — production
// deployments should configure a genuinely random 32-byte key directly.
func DeriveKey(secret string) string {
	if len(secret) >= chacha20poly1305.KeySize {
		return secret[:chacha20poly1305.KeySize]
	}
	return (secret + strings.Repeat("0", chacha20poly1305.KeySize))[:chacha20poly1305.KeySize]
}

// Package cipher performs the per-chunk authenticated encryption for the
// upload pipeline. Every chunk gets a fresh 256-bit key and a fresh 192-bit
// nonce; the associated data binds the ciphertext to its site and user
// context, so a chunk produced for one account cannot be decrypted under
// another account's context even if key material were somehow reused.
package cipher

import (
	stdcipher "crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the ContentKey length in bytes (256 bits).
const KeySize = chacha20poly1305.KeySize

// NonceSize is the per-encryption nonce length in bytes (192 bits,
// XChaCha20-Poly1305).
const NonceSize = chacha20poly1305.NonceSizeX

// Algorithm identifies the AEAD construction on the wire.
const Algorithm = "xchacha20poly1305"

// ErrAuthentication is returned when a chunk fails to decrypt: truncated
// input, a forged or corrupted ciphertext, or associated data that does not
// match what was used to encrypt. Decryption is all-or-nothing; there is no
// partial failure.
var ErrAuthentication = errors.New("cipher: chunk authentication failed")

// ContentKey is a single-use symmetric key scoped to exactly one chunk.
// Generate, encrypt once, then Zero it. Keys are never persisted and never
// shared across chunks.
type ContentKey struct {
	bytes []byte
}

// GenerateKey produces a fresh 256-bit ContentKey from the system CSPRNG.
func GenerateKey() (*ContentKey, error) {
	b := make([]byte, KeySize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate content key: %w", err)
	}
	return &ContentKey{bytes: b}, nil
}

// Zero wipes the key material. The key is unusable afterwards; Encrypt and
// Decrypt reject a zeroed key.
func (k *ContentKey) Zero() {
	for i := range k.bytes {
		k.bytes[i] = 0
	}
	k.bytes = nil
}

// Encrypt seals plaintext under key with associatedData bound as
// authenticated context. The output is the fresh random nonce followed by
// ciphertext+tag, opaque to everything downstream.
func Encrypt(plaintext, associatedData []byte, key *ContentKey) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends to the nonce slice, producing nonce||ciphertext||tag.
	return aead.Seal(nonce, nonce, plaintext, associatedData), nil
}

// Decrypt opens a chunk produced by Encrypt. It fails with ErrAuthentication
// if the chunk is shorter than the nonce prefix, the tag does not verify, or
// associatedData differs from encryption time.
func Decrypt(chunk, associatedData []byte, key *ContentKey) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if len(chunk) < NonceSize {
		return nil, ErrAuthentication
	}
	nonce, body := chunk[:NonceSize], chunk[NonceSize:]

	plaintext, err := aead.Open(nil, nonce, body, associatedData)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func newAEAD(key *ContentKey) (stdcipher.AEAD, error) {
	if key == nil || len(key.bytes) != KeySize {
		return nil, errors.New("cipher: key is missing or zeroed")
	}
	aead, err := chacha20poly1305.NewX(key.bytes)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return aead, nil
}

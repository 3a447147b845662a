// Package transport delivers encrypted chunks to the remote collector. The
// pipeline treats it as an opaque collaborator: one call per chunk, and any
// non-success response is a hard failure that aborts the whole run.
package transport

import (
	"context"

	"github.com/google/uuid"
)

// ChunkMetadata describes one chunk delivery. All fields travel alongside
// the opaque payload so the collector never has to inspect ciphertext.
type ChunkMetadata struct {
	// Algorithm identifies the AEAD construction (cipher.Algorithm).
	Algorithm string
	// Encoding names the plaintext serialization ("json").
	Encoding string
	// Sequence is the zero-based chunk position within the run.
	Sequence int
	// Rows is the number of rows serialized into the chunk.
	Rows int
	// IdempotencyKey identifies the logical chunk across delivery retries.
	IdempotencyKey string
	// Site and User name the account context the chunk was encrypted for.
	Site string
	User string
}

// Sender delivers a single encrypted chunk. Implementations must return a
// non-nil error on any non-success outcome.
type Sender interface {
	Send(ctx context.Context, chunk []byte, meta ChunkMetadata) error
}

// IdempotencyKey derives the delivery token for a chunk from its ciphertext:
// a UUIDv5 over the chunk bytes. A retried chunk therefore carries the same
// token and the collector can deduplicate it server-side.
func IdempotencyKey(chunk []byte) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, chunk).String()
}

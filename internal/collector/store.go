// Package collector implements the reference chunk collector: the external
// collaborator the upload pipeline delivers to. It accepts encrypted chunks,
// records a receipt per delivery, and deduplicates retries by idempotency
// key. Chunk payloads are opaque here; the collector never holds key
// material and cannot decrypt anything.
package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Receipt records one accepted chunk delivery.
type Receipt struct {
	ID             string
	IdempotencyKey string
	Site           string
	User           string
	Algorithm      string
	Encoding       string
	Sequence       int
	Rows           int
	ByteSize       int
	ReceivedAt     time.Time
}

// ErrDuplicate is returned by a ReceiptStore when the idempotency key has
// been seen before. The server acknowledges duplicates without applying
// them twice.
var ErrDuplicate = errors.New("collector: duplicate idempotency key")

// ReceiptStore persists chunk receipts. Save must be atomic with respect to
// the idempotency-key uniqueness check.
type ReceiptStore interface {
	Save(ctx context.Context, r Receipt) error
	Count(ctx context.Context) (int, error)
}

// MemoryStore is an in-process ReceiptStore for tests and local runs.
type MemoryStore struct {
	mu       sync.Mutex
	receipts []Receipt
	seen     map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]bool)}
}

// Save implements ReceiptStore.
func (s *MemoryStore) Save(_ context.Context, r Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[r.IdempotencyKey] {
		return ErrDuplicate
	}
	s.seen[r.IdempotencyKey] = true
	s.receipts = append(s.receipts, r)
	return nil
}

// Count implements ReceiptStore.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts), nil
}

// Receipts returns a snapshot of everything saved, in arrival order.
func (s *MemoryStore) Receipts() []Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// newReceiptID allocates a unique receipt identifier.
func newReceiptID() string {
	return uuid.New().String()
}

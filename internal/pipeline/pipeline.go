// Package pipeline orchestrates the classify → gate → encrypt → send flow:
// it pulls batches from a row source, labels and serializes them under a
// gated column mapping, encrypts each batch independently, and hands
// ciphertext to the transport collaborator.
//
// Execution is single-threaded and strictly ordered: chunk N+1 is never
// produced before chunk N is delivered. A failed run is not resumable here;
// retry policy belongs to a higher layer, which must generate fresh key
// material for any re-attempt.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardstream/ingest/internal/cipher"
	"github.com/cardstream/ingest/internal/classify"
	"github.com/cardstream/ingest/internal/policy"
	"github.com/cardstream/ingest/internal/rowsource"
	"github.com/cardstream/ingest/internal/transport"
)

// DefaultBatchSize is the number of rows serialized and encrypted per chunk.
const DefaultBatchSize = 10000

// aadSeparator joins site and user into associated data. The unit separator
// keeps the encoding unambiguous when either part contains '|' or '/'.
const aadSeparator = "\x1f"

// Phase is the upload run state. A run moves NotStarted → Streaming →
// (Succeeded | Failed) with no intermediate persisted state.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseStreaming  Phase = "streaming"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Progress is a point-in-time snapshot of a run, reported after every chunk.
type Progress struct {
	Phase      Phase
	ChunksSent int
	RowsSent   int
	BytesRead  int64 // bytes consumed from the source, 0 if unknown
}

// ProgressFunc observes run progress. Purely informational; it cannot alter
// the run.
type ProgressFunc func(Progress)

// AccountContext names the site and user an upload belongs to. Both are
// bound into each chunk's associated data, so a chunk produced for one
// account cannot be decrypted under another account's context.
type AccountContext struct {
	Site string
	User string
}

// AAD returns the associated-data bytes for this context.
func (c AccountContext) AAD() []byte {
	return []byte(c.Site + aadSeparator + c.User)
}

// Runner executes upload runs against a fixed sender. Construct once per
// destination; each Run is an independent state machine.
type Runner struct {
	sender     transport.Sender
	batchSize  int
	onProgress ProgressFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithBatchSize overrides DefaultBatchSize. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithProgress registers a progress observer.
func WithProgress(f ProgressFunc) Option {
	return func(r *Runner) { r.onProgress = f }
}

// NewRunner creates a Runner that delivers chunks through sender.
func NewRunner(sender transport.Sender, opts ...Option) *Runner {
	r := &Runner{sender: sender, batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run streams the entire source to the collector and returns the total rows
// uploaded. The mapping is re-validated against policy before anything is
// read, even if the caller validated earlier for user feedback.
//
// Any encryption or delivery failure aborts the run at that chunk; chunks
// already delivered stay on the server (each is independently authenticated,
// so there is nothing to roll back locally).
func (r *Runner) Run(ctx context.Context, src rowsource.Source, mapping classify.ColumnMapping, titles classify.CustomTitles, account AccountContext) (int, error) {
	if err := policy.Validate(mapping); err != nil {
		r.report(PhaseFailed, 0, 0, src)
		return 0, err
	}

	headers := src.Headers()
	aad := account.AAD()
	log := slog.Default().With("site", account.Site, "user", account.User)

	total := 0
	seq := 0
	r.report(PhaseStreaming, 0, 0, src)

	for {
		rows, err := src.TakeRows(r.batchSize)
		if err != nil {
			r.report(PhaseFailed, seq, total, src)
			return total, fmt.Errorf("pull batch %d: %w", seq, err)
		}
		if len(rows) == 0 {
			break
		}

		chunk, err := r.sealBatch(rows, headers, mapping, titles, aad)
		if err != nil {
			r.report(PhaseFailed, seq, total, src)
			return total, err
		}

		meta := transport.ChunkMetadata{
			Algorithm:      cipher.Algorithm,
			Encoding:       BatchEncoding,
			Sequence:       seq,
			Rows:           len(rows),
			IdempotencyKey: transport.IdempotencyKey(chunk),
			Site:           account.Site,
			User:           account.User,
		}
		if err := r.sender.Send(ctx, chunk, meta); err != nil {
			r.report(PhaseFailed, seq, total, src)
			return total, fmt.Errorf("deliver chunk %d: %w", seq, err)
		}

		total += len(rows)
		seq++
		log.Debug("chunk delivered", "sequence", meta.Sequence, "rows", meta.Rows, "bytes", len(chunk))
		r.report(PhaseStreaming, seq, total, src)
	}

	log.Info("upload complete", "chunks", seq, "rows", total)
	r.report(PhaseSucceeded, seq, total, src)
	return total, nil
}

// sealBatch labels, serializes, and encrypts one batch under a fresh
// single-use key. The key is wiped before returning, success or not.
func (r *Runner) sealBatch(rows [][]string, headers []string, mapping classify.ColumnMapping, titles classify.CustomTitles, aad []byte) ([]byte, error) {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = buildRecord(row, headers, mapping, titles)
	}

	plaintext, err := encodeBatch(records)
	if err != nil {
		return nil, err
	}

	key, err := cipher.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	chunk, err := cipher.Encrypt(plaintext, aad, key)
	if err != nil {
		return nil, fmt.Errorf("encrypt batch: %w", err)
	}
	return chunk, nil
}

func (r *Runner) report(phase Phase, chunks, rows int, src rowsource.Source) {
	if r.onProgress == nil {
		return
	}
	p := Progress{Phase: phase, ChunksSent: chunks, RowsSent: rows}
	if br, ok := src.(interface{ BytesRead() int64 }); ok {
		p.BytesRead = br.BytesRead()
	}
	r.onProgress(p)
}

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Metadata headers on chunk delivery requests. The collector reads these
// instead of inspecting the payload.
const (
	HeaderAlgorithm      = "X-Chunk-Algorithm"
	HeaderEncoding       = "X-Chunk-Encoding"
	HeaderSequence       = "X-Chunk-Sequence"
	HeaderRows           = "X-Chunk-Rows"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderSite           = "X-Upload-Site"
	HeaderUser           = "X-Upload-User"
)

// ChunksPath is the collector endpoint chunks are posted to.
const ChunksPath = "/api/v1/chunks"

// HTTPSender posts chunks to a collector over HTTP. Connection pooling, TLS,
// and socket behavior belong to the injected http.Client.
type HTTPSender struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSender creates a sender for the collector at baseURL. A nil client
// falls back to a default with a 60s request timeout.
func NewHTTPSender(baseURL string, client *http.Client) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPSender{baseURL: baseURL, client: client}
}

// Send delivers one chunk. Any transport error or non-2xx status is a hard
// failure; the caller must not retry with the same key material.
func (s *HTTPSender) Send(ctx context.Context, chunk []byte, meta ChunkMetadata) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+ChunksPath, bytes.NewReader(chunk))
	if err != nil {
		return fmt.Errorf("build chunk request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(HeaderAlgorithm, meta.Algorithm)
	req.Header.Set(HeaderEncoding, meta.Encoding)
	req.Header.Set(HeaderSequence, strconv.Itoa(meta.Sequence))
	req.Header.Set(HeaderRows, strconv.Itoa(meta.Rows))
	req.Header.Set(HeaderIdempotencyKey, meta.IdempotencyKey)
	req.Header.Set(HeaderSite, meta.Site)
	req.Header.Set(HeaderUser, meta.User)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send chunk %d: %w", meta.Sequence, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send chunk %d: collector returned %d: %s", meta.Sequence, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}

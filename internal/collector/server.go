package collector

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cardstream/ingest/internal/logging"
	"github.com/cardstream/ingest/internal/transport"
)

// MaxChunkSize caps a single chunk delivery (64MB). A 10k-row batch of
// labeled records stays far below this; anything larger is a client bug.
const MaxChunkSize = 64 * 1024 * 1024

// Server is the HTTP surface of the collector.
type Server struct {
	store  ReceiptStore
	router *chi.Mux
}

// NewServer creates a collector server over the given receipt store.
func NewServer(store ReceiptStore) *Server {
	s := &Server{store: store, router: chi.NewRouter()}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post(transport.ChunksPath, s.handleChunk)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// chunkResponse is the JSON body returned for an accepted chunk.
type chunkResponse struct {
	ReceiptID string `json:"receiptId"`
	Duplicate bool   `json:"duplicate"`
}

// handleChunk accepts one encrypted chunk. A replayed idempotency key is
// acknowledged with 200 and duplicate=true instead of storing a second
// receipt, so client retries are safe.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	key := r.Header.Get(transport.HeaderIdempotencyKey)
	if key == "" {
		http.Error(w, "missing Idempotency-Key header", http.StatusBadRequest)
		return
	}
	algorithm := r.Header.Get(transport.HeaderAlgorithm)
	encoding := r.Header.Get(transport.HeaderEncoding)
	if algorithm == "" || encoding == "" {
		http.Error(w, "missing chunk metadata headers", http.StatusBadRequest)
		return
	}
	sequence, err := strconv.Atoi(r.Header.Get(transport.HeaderSequence))
	if err != nil || sequence < 0 {
		http.Error(w, "invalid chunk sequence", http.StatusBadRequest)
		return
	}
	rows, err := strconv.Atoi(r.Header.Get(transport.HeaderRows))
	if err != nil || rows < 0 {
		http.Error(w, "invalid chunk row count", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxChunkSize+1))
	if err != nil {
		http.Error(w, "read chunk body", http.StatusBadRequest)
		return
	}
	if len(body) > MaxChunkSize {
		http.Error(w, "chunk too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty chunk", http.StatusBadRequest)
		return
	}

	receipt := Receipt{
		ID:             newReceiptID(),
		IdempotencyKey: key,
		Site:           r.Header.Get(transport.HeaderSite),
		User:           r.Header.Get(transport.HeaderUser),
		Algorithm:      algorithm,
		Encoding:       encoding,
		Sequence:       sequence,
		Rows:           rows,
		ByteSize:       len(body),
		ReceivedAt:     time.Now().UTC(),
	}

	status := http.StatusCreated
	duplicate := false
	if err := s.store.Save(r.Context(), receipt); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			log.Error("save receipt", "error", err, "idempotency_key", key)
			http.Error(w, "store receipt", http.StatusInternalServerError)
			return
		}
		status = http.StatusOK
		duplicate = true
	}

	log.Info("chunk received",
		"site", receipt.Site,
		"sequence", receipt.Sequence,
		"rows", receipt.Rows,
		"bytes", receipt.ByteSize,
		"duplicate", duplicate,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(chunkResponse{ReceiptID: receipt.ID, Duplicate: duplicate})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "receipts": n})
}

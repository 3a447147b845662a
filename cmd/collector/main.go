// Command collector runs the reference chunk collector. It accepts
// encrypted chunk deliveries, records receipts, and deduplicates retries by
// idempotency key. With DATABASE_URL set receipts persist in Postgres;
// otherwise an in-memory store is used (local development only).
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/cardstream/ingest/internal/collector"
	"github.com/cardstream/ingest/internal/config"
	"github.com/cardstream/ingest/internal/logging"
)

func main() {
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	var store collector.ReceiptStore
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if err := collector.EnsureSchema(ctx, pool); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		store = collector.NewPGStore(pool)
		slog.Info("using postgres receipt store")
	} else {
		store = collector.NewMemoryStore()
		slog.Warn("DATABASE_URL not set, receipts are in-memory only")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      collector.NewServer(store).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Serve until interrupted, then drain within the shutdown timeout.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("collector listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("collector stopped")
}

package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"kaibot/internal/domain"
)

const maxBodySize = 1 << 20 // 1 MiB, Telegram payloads are far smaller

// Server receives Telegram webhook deliveries. It acknowledges every
// well-formed update immediately and hands processing to a background
// goroutine so Telegram never retries on slow agent runs.
type Server struct {
	addr    string
	path    string
	process ProcessFunc
	logger  *slog.Logger
	srv     *http.Server
}

func NewServer(addr, path string, process ProcessFunc, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		path:    path,
		process: process,
		logger:  logger,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.path, s.handleUpdate)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook server listening", "addr", s.addr, "path", s.path)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webhook shutdown: %w", err)
	}
	s.logger.Info("webhook server stopped")
	return nil
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	var upd domain.Update
	if err := json.Unmarshal(body, &upd); err != nil {
		s.logger.Warn("discarding malformed update", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Acknowledge before processing. Errors past this point are logged and
	// dropped; Telegram must not redeliver the update.
	w.WriteHeader(http.StatusOK)

	go func() {
		ctx := context.Background()
		if err := s.process(ctx, upd); err != nil {
			s.logger.Error("update processing failed", "update_id", upd.UpdateID, "error", err)
		}
	}()
}

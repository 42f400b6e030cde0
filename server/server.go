// Copyright 2026 Inkwell Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the ingestion pipeline over HTTP. One endpoint
// per source type; request shape and size are validated at the boundary
// before the pipeline runs.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkwell-ai/inkwell/ingest"
)

const defaultMaxUploadBytes = 16 << 20 // request body cap, above any admission limit

// Server wraps an ingestion pipeline with HTTP handlers.
type Server struct {
	pipeline       *ingest.Pipeline
	maxUploadBytes int64
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes caps the request body size accepted by the upload
// endpoint. This is a transport guard; the admission policy applies its
// own, typically tighter, limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server over the given pipeline.
func New(pipeline *ingest.Pipeline, opts ...Option) *Server {
	s := &Server{
		pipeline:       pipeline,
		maxUploadBytes: defaultMaxUploadBytes,
		logger:         slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ingest/pdf", s.handleIngestPDF)
	mux.HandleFunc("POST /ingest/text", s.handleIngestText)
	mux.HandleFunc("POST /ingest/website", s.handleIngestWebsite)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

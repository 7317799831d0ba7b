// Package web serves the workdesk operations as an HTTP JSON API with
// explicit sessions.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/pdf-workdesk/internal/fetch"
	"github.com/a3tai/pdf-workdesk/internal/pdf"
	"github.com/a3tai/pdf-workdesk/internal/session"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second

	// maxJSONBody limits option payloads; documents use the file size limit
	maxJSONBody = 1 << 20
)

// Server is the HTTP API
type Server struct {
	service  *pdf.Service
	sessions *session.Store
	fetcher  *fetch.Fetcher
	logger   *logrus.Logger
	mux      *http.ServeMux
}

// NewServer creates the API over the given service, session store and fetcher
func NewServer(service *pdf.Service, sessions *session.Store, fetcher *fetch.Fetcher, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		service:  service,
		sessions: sessions,
		fetcher:  fetcher,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/paper-sizes", s.handlePaperSizes)
	s.mux.HandleFunc("GET /api/encryption-algorithms", s.handleEncryptionAlgorithms)

	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	s.mux.HandleFunc("POST /api/sessions/{id}/document", s.handleUpload(false))
	s.mux.HandleFunc("POST /api/sessions/{id}/merge-document", s.handleUpload(true))
	s.mux.HandleFunc("GET /api/sessions/{id}/metadata", s.withDocument(s.handleMetadata))
	s.mux.HandleFunc("GET /api/sessions/{id}/preview/{page}", s.withDocument(s.handlePreview))

	s.mux.HandleFunc("POST /api/sessions/{id}/text", s.withDocument(s.handleText))
	s.mux.HandleFunc("POST /api/sessions/{id}/images", s.withDocument(s.handleImages))
	s.mux.HandleFunc("POST /api/sessions/{id}/encrypt", s.withDocument(s.handleEncrypt))
	s.mux.HandleFunc("POST /api/sessions/{id}/decrypt", s.withDocument(s.handleDecrypt))
	s.mux.HandleFunc("POST /api/sessions/{id}/rotate", s.withDocument(s.handleRotate))
	s.mux.HandleFunc("POST /api/sessions/{id}/resize", s.withDocument(s.handleResize))
	s.mux.HandleFunc("POST /api/sessions/{id}/merge", s.withDocument(s.handleMerge))
	s.mux.HandleFunc("POST /api/sessions/{id}/convert/word", s.withDocument(s.handleConvertWord))
	s.mux.HandleFunc("POST /api/sessions/{id}/reduce", s.withDocument(s.handleReduce))

	s.mux.HandleFunc("GET /api/sessions/{id}/artifacts", s.handleListArtifacts)
	s.mux.HandleFunc("GET /api/sessions/{id}/artifacts/{name}", s.handleArtifact)
}

// Handler returns the API with request logging applied
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves the API on addr until ctx is cancelled, then shuts
// down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}

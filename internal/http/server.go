package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/andreaessedj/analyzer/internal/domain"
)

// AnalyzeService runs the analysis pipeline for one track id.
type AnalyzeService interface {
	Analyze(ctx context.Context, trackID string) (domain.FeedbackRecord, error)
}

// Config controls the HTTP surface.
type Config struct {
	Addr        string
	CORSOrigins []string
}

// Server exposes the analysis pipeline over HTTP plus a websocket live feed
// of completed records.
type Server struct {
	addr    string
	origins []string
	svc     AnalyzeService
	hub     *Hub
	log     *logrus.Logger
	handler http.Handler
	httpd   *http.Server
}

// NewServer wires routes, middleware and the live-feed hub. Addr defaults to
// :8080 and the CORS allow list to every origin.
func NewServer(cfg Config, svc AnalyzeService, log *logrus.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	s := &Server{
		addr:    cfg.Addr,
		origins: cfg.CORSOrigins,
		svc:     svc,
		hub:     NewHub(log),
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/ws", s.handleWS)

	s.handler = s.corsMiddleware(s.loggingMiddleware(mux))
	s.httpd = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Publish forwards a completed record to connected live-feed clients.
func (s *Server) Publish(rec domain.FeedbackRecord) {
	s.hub.Broadcast(rec)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("http server listening")
		errc <- s.httpd.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpd.Shutdown(shutdownCtx)
	}
}

// Package gateway serves browser clients a websocket protocol for
// live voice trivia, bridging each client connection to an upstream
// live session.
package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizhost-go/quizhost/pkg/core/live"
	"github.com/quizhost-go/quizhost/pkg/core/trivia"
)

// QuestionSource prepares a round of questions for a session.
type QuestionSource interface {
	Generate(ctx context.Context, topic string, n int) ([]trivia.Question, []trivia.Source)
}

// LiveSession is one open upstream voice session.
type LiveSession interface {
	SendAudio(pcm []byte) error
	Events() <-chan live.Event
	Close() error
}

// Connector dials an upstream live session. Injectable for tests.
type Connector func(ctx context.Context, cfg live.SessionConfig) (LiveSession, error)

// DefaultConnector dials the real upstream endpoint with the given
// API key.
func DefaultConnector(apiKey string, opts ...live.SessionOption) Connector {
	return func(ctx context.Context, cfg live.SessionConfig) (LiveSession, error) {
		return live.Connect(ctx, apiKey, cfg, opts...)
	}
}

// Server is the gateway HTTP server.
type Server struct {
	config    *Config
	logger    zerolog.Logger
	metrics   *Metrics
	questions QuestionSource
	connect   Connector
	upgrader  websocket.Upgrader

	httpServer *http.Server
}

// NewServer assembles the gateway from its dependencies.
func NewServer(cfg *Config, logger zerolog.Logger, metrics *Metrics, questions QuestionSource, connect Connector) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		metrics:   metrics,
		questions: questions,
		connect:   connect,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect cross-origin during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/v1/live", s.handleLive)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the server's mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the server until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.config.Addr).Msg("gateway listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight
// requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	session := newSession(s, conn)
	session.run(r.Context())
}

// Package server exposes the bridge over HTTP: the JSON-RPC endpoint, the
// SSE session transport, the MCP streamable endpoint, and the pinned proxy
// route.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/apibridge/apibridge/internal/app"
	"github.com/apibridge/apibridge/internal/common"
)

// Server manages the HTTP server and routes.
type Server struct {
	app      *app.App
	mcp      http.Handler
	router   *http.ServeMux
	server   *http.Server
	listener net.Listener
	sessions *SessionRegistry
	logger   *common.Logger
}

// New creates the HTTP server. mcpHandler may be nil when the MCP endpoint
// is not mounted (stdio mode reuses everything else).
func New(application *app.App, mcpHandler http.Handler) *Server {
	s := &Server{
		app:      application,
		mcp:      mcpHandler,
		sessions: NewSessionRegistry(application.Logger),
		logger:   application.Logger,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE sessions stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Listen binds the TCP listener without serving, so startup can report
// readiness deterministically before requests are accepted.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen failed: %w", err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address once Listen has succeeded, else the
// configured address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Start serves HTTP on the bound listener (binding it first if the caller
// skipped Listen) and blocks until the server stops.
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.Info().
		Str("address", s.Addr()).
		Str("url", fmt.Sprintf("http://%s", s.Addr())).
		Msg("HTTP server starting")

	if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server, closing open streaming
// sessions first so the listener can drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	s.sessions.CloseAll()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Sessions returns the streaming session registry.
func (s *Server) Sessions() *SessionRegistry {
	return s.sessions
}

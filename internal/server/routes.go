package server

import (
	"net/http"

	"github.com/apibridge/apibridge/internal/common"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// JSON-RPC endpoint and the streaming session transport
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/rpc/session", s.handleSessionOpen)
	mux.HandleFunc("/rpc/message", s.handleSessionMessage)

	// MCP endpoint (streamable HTTP)
	if s.mcp != nil {
		mux.Handle("/mcp", s.mcp)
	}

	// API routes
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Pinned upstream proxy route
	mux.HandleFunc("/api/resource/", s.handleResourceProxy)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleHealth reports liveness plus registry and session gauges.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"tools":    s.app.Registry.Len(),
		"sessions": s.sessions.Len(),
	})
}

// handleVersion reports the build identification set at link time.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// handleNotFound returns a JSON 404 for unmatched API routes. Arbitrary
// upstream paths are deliberately not proxied.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint is not proxied"}`))
}

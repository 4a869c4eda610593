// Package mcp exposes the tool registry over the Model Context Protocol
// using mcp-go, both as a streamable HTTP endpoint and over stdio.
package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/apibridge/apibridge/internal/app"
	"github.com/apibridge/apibridge/internal/common"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	srv        *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
}

// NewHandler creates an MCP handler with one registered tool per registry
// entry plus the built-in version tool.
func NewHandler(a *app.App, logger *common.Logger) *Handler {
	srv := mcpserver.NewMCPServer(
		a.Config.Server.Name,
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	toolCount := RegisterTools(srv, a)
	srv.AddTool(VersionTool(), VersionToolHandler(a))

	streamable := mcpserver.NewStreamableHTTPServer(srv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", toolCount).
		Str("upstream", a.Config.Upstream.BaseURL).
		Msg("MCP handler initialized")

	return &Handler{
		srv:        srv,
		streamable: streamable,
		logger:     logger,
	}
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}

// ServeStdio runs the MCP server over stdin/stdout. It blocks until the
// client disconnects or the process is signalled.
func (h *Handler) ServeStdio() error {
	return mcpserver.ServeStdio(h.srv)
}

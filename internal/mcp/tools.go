package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/apibridge/apibridge/internal/app"
	"github.com/apibridge/apibridge/internal/invoke"
)

// RegisterTools registers one MCP tool per registry entry. The generated
// input schema is passed through as a raw JSON schema so mcp-go advertises
// exactly what the builder produced.
func RegisterTools(s *server.MCPServer, a *app.App) int {
	registered := 0
	for _, t := range a.ListTools() {
		raw, err := json.Marshal(t.SchemaMap())
		if err != nil {
			a.Logger.Warn().
				Str("tool", t.Name).
				Str("error", err.Error()).
				Msg("skipping tool with unmarshalable schema")
			continue
		}
		s.AddTool(
			mcp.NewToolWithRawSchema(t.Name, t.Description, raw),
			GenericToolHandler(a, t.Name),
		)
		registered++
	}
	return registered
}

// GenericToolHandler adapts a registry tool to an mcp-go handler. Invocation
// failures surface as IsError results, never as protocol errors.
func GenericToolHandler(a *app.App, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, _ := a.CallTool(ctx, name, r.GetArguments())
		return toCallToolResult(res), nil
	}
}

// toCallToolResult converts the transport-neutral result envelope to the
// mcp-go shape, preserving the error flag.
func toCallToolResult(res *invoke.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(res.Content))
	for _, item := range res.Content {
		content = append(content, mcp.NewTextContent(item.Text))
	}
	return &mcp.CallToolResult{
		Content: content,
		IsError: res.IsError,
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

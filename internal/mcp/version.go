package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/apibridge/apibridge/internal/app"
	"github.com/apibridge/apibridge/internal/common"
)

// versionInfo holds the build identification fields reported by get_version.
type versionInfo struct {
	Version  string `json:"version"`
	Build    string `json:"build"`
	Commit   string `json:"commit"`
	Upstream string `json:"upstream"`
	Tools    int    `json:"tools"`
}

// VersionTool returns the mcp.Tool definition for the built-in get_version tool.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get bridge version and upstream status. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports the bridge build plus the size of the loaded
// tool registry.
func VersionToolHandler(a *app.App) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version:  common.GetVersion(),
			Build:    common.GetBuild(),
			Commit:   common.GetGitCommit(),
			Upstream: a.Config.Upstream.BaseURL,
			Tools:    a.Registry.Len(),
		}

		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(out))},
		}, nil
	}
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/apibridge/apibridge/internal/apierr"
)

// rpcRequest is the inbound JSON-RPC 2.0 envelope.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rpcError is the error object of a failed response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// rpcResponse is the outbound JSON-RPC 2.0 envelope. Exactly one of Result
// and Error is set.
type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

// callToolParams are the parameters of mcp.callTool.
type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// handleRPC serves POST /rpc: one JSON-RPC request per call, response in the
// HTTP body. The same dispatch also backs the session transport.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := s.dispatchRPC(r.Context(), r.Body)
	writeJSON(w, http.StatusOK, resp)
}

// dispatchRPC decodes and executes one JSON-RPC request. Protocol failures
// (malformed envelope, unknown method or tool, bad params) become error
// responses carrying the caller-supplied id, or null when it never decoded.
func (s *Server) dispatchRPC(ctx context.Context, body io.Reader) *rpcResponse {
	var req rpcRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return rpcErrorResponse(nil, apierr.RPCInvalidRequest, "invalid JSON-RPC request: "+err.Error())
	}

	if req.JSONRPC != "2.0" {
		return rpcErrorResponse(req.ID, apierr.RPCInvalidRequest, `jsonrpc field must be "2.0"`)
	}

	switch req.Method {
	case "mcp.listTools":
		return &rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]any{"tools": s.app.ListTools()},
		}

	case "mcp.callTool":
		return s.rpcCallTool(ctx, &req)

	default:
		return rpcErrorResponse(req.ID, apierr.RPCMethodNotFound, "method not found: "+req.Method)
	}
}

// rpcCallTool executes mcp.callTool. An unknown tool name is a protocol
// error (method-not-found code); everything downstream of lookup is a tool
// result, error or not.
func (s *Server) rpcCallTool(ctx context.Context, req *rpcRequest) *rpcResponse {
	if len(req.Params) == 0 {
		return rpcErrorResponse(req.ID, apierr.RPCInvalidParams, "params required for mcp.callTool")
	}

	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return rpcErrorResponse(req.ID, apierr.RPCInvalidParams, "invalid params: "+err.Error())
	}
	if params.Name == "" {
		return rpcErrorResponse(req.ID, apierr.RPCInvalidParams, "params.name is required")
	}

	result, aerr := s.app.CallTool(ctx, params.Name, params.Arguments)
	if aerr != nil && (aerr.Kind == apierr.KindToolNotFound || aerr.Kind == apierr.KindToolMetadataInvalid) {
		resp := rpcErrorResponse(req.ID, aerr.Code.RPCCode(), aerr.Message)
		resp.Error.Data = aerr
		return resp
	}

	return &rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

func rpcErrorResponse(id any, code int, message string) *rpcResponse {
	return &rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	}
}

// writeJSON renders a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

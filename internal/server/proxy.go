package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apibridge/apibridge/internal/cache"
	"github.com/apibridge/apibridge/internal/pagination"
)

// proxyError is an upstream failure carrying the status to relay.
type proxyError struct {
	status  int
	message string
}

func (e *proxyError) Error() string { return e.message }

// handleResourceProxy serves the pinned GET /api/resource/{id} route: it
// forwards to the upstream resource-by-id endpoint, normalizes the payload
// through the pagination formatter, and caches the result in the report
// cache. No other upstream path is reachable this way.
func (s *Server) handleResourceProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/resource/")
	if id == "" || strings.Contains(id, "/") {
		writeProxyError(w, http.StatusBadRequest, "resource id required")
		return
	}

	target := fmt.Sprintf("%s%s/%s",
		strings.TrimRight(s.app.Config.Upstream.BaseURL, "/"),
		s.app.Config.Proxy.ResourcePath,
		url.PathEscape(id))

	key := cache.GenerateKey(http.MethodGet, target, nil)
	ttl := time.Duration(s.app.Config.Cache.ReportTTLSeconds) * time.Second

	v, err := s.app.ReportCache.GetOrFetch(r.Context(), key, ttl, func(ctx context.Context) (any, error) {
		return s.fetchResource(ctx, target)
	})
	if err != nil {
		status := http.StatusInternalServerError
		if pe, ok := err.(*proxyError); ok && pe.status != 0 {
			status = pe.status
		}
		s.logger.Warn().
			Str("resource", id).
			Int("status", status).
			Str("error", err.Error()).
			Msg("resource proxy failed")
		writeProxyError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// fetchResource retrieves one upstream resource and wraps it in the
// paginated response shape.
func (s *Server) fetchResource(ctx context.Context, target string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &proxyError{message: "invalid upstream URL: " + err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: time.Duration(s.app.Config.Upstream.TimeoutSeconds) * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &proxyError{status: http.StatusBadGateway, message: "upstream unreachable: " + err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRequestBody*50))
	if err != nil {
		return nil, &proxyError{status: http.StatusBadGateway, message: "failed to read upstream response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &proxyError{status: resp.StatusCode, message: fmt.Sprintf("upstream returned %d", resp.StatusCode)}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &proxyError{status: http.StatusBadGateway, message: "invalid JSON from upstream: " + err.Error()}
	}

	return pagination.FormatPaginatedResponse(parsed), nil
}

func writeProxyError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": message,
	})
}

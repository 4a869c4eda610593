// Package invoke reconstructs and executes a concrete HTTP request from a
// tool's stored metadata and a caller-supplied argument bag, normalizing the
// outcome into the protocol's response envelope.
package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/apibridge/apibridge/internal/apierr"
	"github.com/apibridge/apibridge/internal/cache"
	"github.com/apibridge/apibridge/internal/common"
	"github.com/apibridge/apibridge/internal/tools"
)

// maxResponseSize caps upstream response bodies to prevent OOM from
// unexpectedly large responses.
const maxResponseSize = 50 << 20 // 50MB

// ContentItem is one entry in a tool result envelope.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the canonical tool result shape regardless of transport.
// Failures are indistinguishable from successes except for IsError.
type Result struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// TextResult wraps a text payload in the envelope.
func TextResult(text string) *Result {
	return &Result{Content: []ContentItem{{Type: "text", Text: text}}}
}

// ErrorResult renders a normalized error as an error envelope. The text is
// the pretty-printed error object so callers keep the request id and
// timestamp for correlation.
func ErrorResult(e *apierr.Error) *Result {
	text, err := json.MarshalIndent(map[string]any{"error": e}, "", "  ")
	if err != nil {
		text = []byte(fmt.Sprintf(`{"error":{"message":%q}}`, e.Message))
	}
	return &Result{
		Content: []ContentItem{{Type: "text", Text: string(text)}},
		IsError: true,
	}
}

// Invoker executes tool calls against the upstream API.
type Invoker struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	getCache   *cache.ResponseCache
	getTTL     time.Duration
}

// New creates an Invoker for the given upstream base URL. getCache may be
// nil to disable GET-result caching.
func New(baseURL string, timeout time.Duration, logger *common.Logger, getCache *cache.ResponseCache, getTTL time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Invoker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		getCache:   getCache,
		getTTL:     getTTL,
	}
}

// Invoke validates the arguments against the tool's input schema, rebuilds
// the HTTP request from its metadata, executes it, and wraps the outcome.
// Invoke never returns an error across its boundary: every failure becomes
// an IsError envelope.
func (inv *Invoker) Invoke(ctx context.Context, tool tools.Tool, args map[string]any) *Result {
	if verr := apierr.ValidateArgs(args, tool.SchemaMap()); verr != nil {
		inv.logger.Warn().
			Str("tool", tool.Name).
			Str("request_id", verr.RequestID).
			Str("error", verr.Message).
			Msg("argument validation failed")
		return ErrorResult(verr)
	}

	method := strings.ToUpper(tool.Metadata.Method)
	target, remaining := inv.buildTarget(tool, args)

	inv.logger.Debug().
		Str("tool", tool.Name).
		Str("method", method).
		Str("url", common.RedactURL(target)).
		Str("args", common.RedactJSON(args)).
		Msg("tool invocation")

	if method == http.MethodGet {
		return inv.invokeGet(ctx, tool, target, remaining)
	}
	return inv.execute(ctx, method, target, remaining)
}

// buildTarget substitutes path placeholders and returns the base target URL
// plus the arguments left over for the query string or body.
func (inv *Invoker) buildTarget(tool tools.Tool, args map[string]any) (string, map[string]any) {
	path := tool.Metadata.Path
	remaining := make(map[string]any, len(args))

	for name, val := range args {
		placeholder := "{" + name + "}"
		if strings.Contains(path, placeholder) {
			coerced := tool.ParamType(name).CoerceString(val)
			path = strings.ReplaceAll(path, placeholder, url.PathEscape(coerced))
			continue
		}
		remaining[name] = val
	}

	return inv.baseURL + path, remaining
}

// invokeGet encodes remaining arguments as query parameters and serves the
// result through the GET cache when one is configured.
func (inv *Invoker) invokeGet(ctx context.Context, tool tools.Tool, target string, remaining map[string]any) *Result {
	if len(remaining) > 0 {
		query := url.Values{}
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			query.Set(name, tool.ParamType(name).CoerceString(remaining[name]))
		}
		target += "?" + query.Encode()
	}

	if inv.getCache == nil {
		return inv.execute(ctx, http.MethodGet, target, nil)
	}

	key := cache.GenerateKey(http.MethodGet, target, nil)
	cached, err := inv.getCache.GetOrFetch(ctx, key, inv.getTTL, func(ctx context.Context) (any, error) {
		res := inv.execute(ctx, http.MethodGet, target, nil)
		if res.IsError {
			// Failures are returned to the caller but never cached.
			return nil, errResult{res}
		}
		return res, nil
	})
	if err != nil {
		if er, ok := err.(errResult); ok {
			return er.res
		}
		return ErrorResult(apierr.UpstreamNetwork(err))
	}
	return cached.(*Result)
}

// errResult smuggles an error envelope through GetOrFetch's error return so
// it is never stored.
type errResult struct{ res *Result }

func (e errResult) Error() string { return "tool invocation failed" }

// execute performs the HTTP call and normalizes the outcome.
func (inv *Invoker) execute(ctx context.Context, method, target string, body map[string]any) *Result {
	var bodyReader io.Reader
	if len(body) > 0 {
		raw, err := json.Marshal(body)
		if err != nil {
			return ErrorResult(apierr.New(apierr.KindValidationFailed, apierr.CodeInvalidParams, "failed to marshal request body: %v", err))
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return ErrorResult(apierr.UpstreamNetwork(err))
	}
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := inv.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		inv.logger.Error().
			Str("method", method).
			Str("url", common.RedactURL(target)).
			Int64("duration_ms", duration.Milliseconds()).
			Str("error", err.Error()).
			Msg("upstream request failed")
		return ErrorResult(apierr.UpstreamNetwork(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return ErrorResult(apierr.UpstreamNetwork(err))
	}

	inv.logger.Debug().
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ErrorResult(apierr.UpstreamHTTP(resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	return wrapBody(raw)
}

// wrapBody pretty-prints the upstream JSON body as a single text content
// item. An empty body becomes an empty JSON object.
func wrapBody(raw []byte) *Result {
	if len(bytes.TrimSpace(raw)) == 0 {
		return TextResult("{}")
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ErrorResult(apierr.New(apierr.KindUpstreamHTTP, apierr.CodeInternal, "invalid JSON in upstream response: %v", err))
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return ErrorResult(apierr.New(apierr.KindUpstreamHTTP, apierr.CodeInternal, "failed to render upstream response: %v", err))
	}
	return TextResult(string(pretty))
}

// Package pagination heuristically detects and normalizes the pagination
// conventions found in arbitrary JSON responses from the upstream API.
package pagination

import (
	"context"
	"encoding/json"
)

// PageInfo is the normalized pagination descriptor, computed from a response
// body's shape on every call and never persisted.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasMore     bool `json:"hasMore"`
}

// shape pairs a name with an extractor. Shapes are evaluated in priority
// order; the first one whose required fields are all present wins.
type shape struct {
	name    string
	extract func(map[string]any) *PageInfo
}

// shapes is the ordered strategy table of known pagination conventions.
var shapes = []shape{
	{"page-limit-totalItems", extractPageLimit},
	{"current_page-per_page-total", extractCurrentPerPage},
	{"offset-limit-count", extractOffsetLimit},
	{"meta.pagination", extractMetaPagination},
}

// dataKeys are the property names checked, in order, when locating the
// payload array of a response.
var dataKeys = []string{"data", "items", "results", "records", "content"}

// ExtractPaginationInfo inspects a decoded JSON object and returns the
// normalized descriptor for the first recognized pagination shape, or nil
// when none matches.
func ExtractPaginationInfo(body map[string]any) *PageInfo {
	if body == nil {
		return nil
	}
	for _, s := range shapes {
		if info := s.extract(body); info != nil {
			return info
		}
	}
	return nil
}

func extractPageLimit(body map[string]any) *PageInfo {
	page, ok1 := asInt(body["page"])
	limit, ok2 := asInt(body["limit"])
	total, ok3 := asInt(body["totalItems"])
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	return normalize(page, limit, total)
}

func extractCurrentPerPage(body map[string]any) *PageInfo {
	page, ok1 := asInt(body["current_page"])
	size, ok2 := asInt(body["per_page"])
	total, ok3 := asInt(body["total"])
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	return normalize(page, size, total)
}

func extractOffsetLimit(body map[string]any) *PageInfo {
	offset, ok1 := asInt(body["offset"])
	limit, ok2 := asInt(body["limit"])
	count, ok3 := asInt(body["count"])
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return normalize(page, limit, count)
}

func extractMetaPagination(body map[string]any) *PageInfo {
	meta, ok := body["meta"].(map[string]any)
	if !ok {
		return nil
	}
	pg, ok := meta["pagination"].(map[string]any)
	if !ok {
		return nil
	}
	page, ok1 := asInt(pg["page"])
	size, ok2 := asInt(pg["pageSize"])
	if !ok1 || !ok2 {
		return nil
	}
	total, ok := asInt(pg["total"])
	if !ok {
		total, _ = asInt(pg["totalItems"])
	}
	return normalize(page, size, total)
}

// normalize computes totalPages and hasMore from the raw triple.
func normalize(page, size, total int) *PageInfo {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return &PageInfo{
		CurrentPage: page,
		PageSize:    size,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasMore:     page < totalPages,
	}
}

// asInt accepts the numeric encodings encoding/json produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

// ExtractData locates the payload array in a decoded JSON value. An array
// input is returned verbatim. Otherwise the named properties are checked in
// order; failing that, a single array-valued property is used. Zero or more
// than one candidate is ambiguous and yields nil.
func ExtractData(body any) []any {
	if arr, ok := body.([]any); ok {
		return arr
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil
	}

	for _, key := range dataKeys {
		if arr, ok := obj[key].([]any); ok {
			return arr
		}
	}

	var candidate []any
	found := 0
	for _, v := range obj {
		if arr, ok := v.([]any); ok {
			candidate = arr
			found++
		}
	}
	if found == 1 {
		return candidate
	}
	return nil
}

// FormatPaginatedResponse combines data extraction and pagination detection.
// Pagination is null when no recognized shape is found.
func FormatPaginatedResponse(body any) map[string]any {
	var info *PageInfo
	if obj, ok := body.(map[string]any); ok {
		info = ExtractPaginationInfo(obj)
	}
	out := map[string]any{
		"data":       ExtractData(body),
		"pagination": nil,
	}
	if info != nil {
		out["pagination"] = info
	}
	return out
}

// Style selects how AutoPaginate encodes next-page parameters.
type Style string

const (
	StylePageLimit   Style = "page-limit"
	StyleOffsetLimit Style = "offset-limit"
	StylePagePerPage Style = "page-per_page"
)

// AutoPaginateOptions bounds an AutoPaginate run.
type AutoPaginateOptions struct {
	MaxPages    int
	MaxItems    int
	TargetStyle Style
}

// FetchPageFunc fetches one page of results for the given parameters.
type FetchPageFunc func(ctx context.Context, params map[string]any) (map[string]any, error)

// AutoPaginate repeatedly calls fetchPage, accumulating extracted arrays and
// translating next-page parameters into the requested style. It stops at
// whichever of {no more pages, MaxPages, MaxItems} triggers first.
func AutoPaginate(ctx context.Context, fetchPage FetchPageFunc, initialParams map[string]any, opts AutoPaginateOptions) ([]any, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 10
	}

	params := make(map[string]any, len(initialParams))
	for k, v := range initialParams {
		params[k] = v
	}

	var collected []any
	for page := 0; page < maxPages; page++ {
		body, err := fetchPage(ctx, params)
		if err != nil {
			return collected, err
		}

		if data := ExtractData(body); data != nil {
			collected = append(collected, data...)
		}
		if opts.MaxItems > 0 && len(collected) >= opts.MaxItems {
			collected = collected[:opts.MaxItems]
			break
		}

		info := ExtractPaginationInfo(body)
		if info == nil || !info.HasMore {
			break
		}
		params = nextParams(info, opts.TargetStyle)
	}

	return collected, nil
}

// nextParams encodes the follow-up page request in the caller's style.
func nextParams(info *PageInfo, style Style) map[string]any {
	next := info.CurrentPage + 1
	switch style {
	case StyleOffsetLimit:
		return map[string]any{
			"offset": info.CurrentPage * info.PageSize,
			"limit":  info.PageSize,
		}
	case StylePagePerPage:
		return map[string]any{
			"page":     next,
			"per_page": info.PageSize,
		}
	default: // StylePageLimit
		return map[string]any{
			"page":  next,
			"limit": info.PageSize,
		}
	}
}

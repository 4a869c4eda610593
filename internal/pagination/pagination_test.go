package pagination

import (
	"context"
	"errors"
	"testing"
)

func TestExtractPaginationInfoPageLimit(t *testing.T) {
	body := map[string]any{
		"page":       float64(2),
		"limit":      float64(10),
		"totalItems": float64(25),
		"data":       []any{},
	}

	info := ExtractPaginationInfo(body)
	if info == nil {
		t.Fatal("expected pagination info")
	}
	if info.CurrentPage != 2 || info.PageSize != 10 || info.TotalItems != 25 {
		t.Errorf("unexpected triple: %+v", info)
	}
	if info.TotalPages != 3 {
		t.Errorf("expected totalPages 3, got %d", info.TotalPages)
	}
	if !info.HasMore {
		t.Error("expected hasMore true on page 2 of 3")
	}
}

func TestExtractPaginationInfoLastPage(t *testing.T) {
	body := map[string]any{
		"page":       float64(3),
		"limit":      float64(10),
		"totalItems": float64(25),
	}

	info := ExtractPaginationInfo(body)
	if info == nil {
		t.Fatal("expected pagination info")
	}
	if info.HasMore {
		t.Error("expected hasMore false on the last page")
	}
}

func TestExtractPaginationInfoCurrentPerPage(t *testing.T) {
	body := map[string]any{
		"current_page": float64(1),
		"per_page":     float64(5),
		"total":        float64(12),
	}

	info := ExtractPaginationInfo(body)
	if info == nil {
		t.Fatal("expected pagination info")
	}
	if info.TotalPages != 3 || !info.HasMore {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestExtractPaginationInfoOffsetLimit(t *testing.T) {
	body := map[string]any{
		"offset": float64(20),
		"limit":  float64(10),
		"count":  float64(45),
	}

	info := ExtractPaginationInfo(body)
	if info == nil {
		t.Fatal("expected pagination info")
	}
	if info.CurrentPage != 3 {
		t.Errorf("expected offset 20 / limit 10 to be page 3, got %d", info.CurrentPage)
	}
	if info.TotalPages != 5 || !info.HasMore {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestExtractPaginationInfoMetaPagination(t *testing.T) {
	body := map[string]any{
		"meta": map[string]any{
			"pagination": map[string]any{
				"page":     float64(1),
				"pageSize": float64(10),
				"total":    float64(10),
			},
		},
	}

	info := ExtractPaginationInfo(body)
	if info == nil {
		t.Fatal("expected pagination info")
	}
	if info.TotalPages != 1 || info.HasMore {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestExtractPaginationInfoNoShape(t *testing.T) {
	body := map[string]any{"name": "widget", "id": float64(7)}

	if info := ExtractPaginationInfo(body); info != nil {
		t.Errorf("expected nil for unpaginated body, got %+v", info)
	}
}

func TestExtractDataArrayVerbatim(t *testing.T) {
	in := []any{"a", "b"}

	out := ExtractData(in)
	if len(out) != 2 || out[0] != "a" {
		t.Errorf("expected array returned verbatim, got %v", out)
	}
}

func TestExtractDataNamedKeys(t *testing.T) {
	for _, key := range []string{"data", "items", "results", "records", "content"} {
		body := map[string]any{key: []any{1, 2, 3}}
		out := ExtractData(body)
		if len(out) != 3 {
			t.Errorf("key %s: expected 3 items, got %v", key, out)
		}
	}
}

func TestExtractDataNamedKeyWinsOverOthers(t *testing.T) {
	body := map[string]any{
		"data":  []any{1},
		"other": []any{1, 2, 3},
	}

	out := ExtractData(body)
	if len(out) != 1 {
		t.Errorf("expected named key to win, got %v", out)
	}
}

func TestExtractDataSingleArrayProperty(t *testing.T) {
	body := map[string]any{
		"widgets": []any{1, 2},
		"total":   float64(2),
	}

	out := ExtractData(body)
	if len(out) != 2 {
		t.Errorf("expected lone array property used, got %v", out)
	}
}

func TestExtractDataAmbiguous(t *testing.T) {
	body := map[string]any{
		"widgets": []any{1},
		"gadgets": []any{2},
	}

	if out := ExtractData(body); out != nil {
		t.Errorf("expected nil for ambiguous body, got %v", out)
	}
}

func TestExtractDataNonObject(t *testing.T) {
	if out := ExtractData("just a string"); out != nil {
		t.Errorf("expected nil for scalar input, got %v", out)
	}
}

func TestFormatPaginatedResponse(t *testing.T) {
	body := map[string]any{
		"data":       []any{"a"},
		"page":       float64(1),
		"limit":      float64(10),
		"totalItems": float64(1),
	}

	out := FormatPaginatedResponse(body)
	if data, ok := out["data"].([]any); !ok || len(data) != 1 {
		t.Errorf("unexpected data: %v", out["data"])
	}
	info, ok := out["pagination"].(*PageInfo)
	if !ok || info.TotalPages != 1 {
		t.Errorf("unexpected pagination: %v", out["pagination"])
	}
}

func TestFormatPaginatedResponseNoPagination(t *testing.T) {
	out := FormatPaginatedResponse(map[string]any{"data": []any{}})

	if out["pagination"] != nil {
		t.Errorf("expected null pagination, got %v", out["pagination"])
	}
}

func TestAutoPaginateCollectsAllPages(t *testing.T) {
	pages := []map[string]any{
		{"data": []any{"a", "b"}, "page": float64(1), "limit": float64(2), "totalItems": float64(5)},
		{"data": []any{"c", "d"}, "page": float64(2), "limit": float64(2), "totalItems": float64(5)},
		{"data": []any{"e"}, "page": float64(3), "limit": float64(2), "totalItems": float64(5)},
	}
	call := 0
	fetch := func(ctx context.Context, params map[string]any) (map[string]any, error) {
		body := pages[call]
		call++
		return body, nil
	}

	out, err := AutoPaginate(context.Background(), fetch, map[string]any{"page": 1, "limit": 2}, AutoPaginateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 5 {
		t.Errorf("expected 5 items, got %d", len(out))
	}
	if call != 3 {
		t.Errorf("expected 3 fetches, got %d", call)
	}
}

func TestAutoPaginateNextParamsStyles(t *testing.T) {
	var captured []map[string]any
	fetch := func(ctx context.Context, params map[string]any) (map[string]any, error) {
		captured = append(captured, params)
		return map[string]any{
			"data":       []any{"x"},
			"page":       float64(len(captured)),
			"limit":      float64(1),
			"totalItems": float64(2),
		}, nil
	}

	_, err := AutoPaginate(context.Background(), fetch, map[string]any{"page": 1, "limit": 1},
		AutoPaginateOptions{TargetStyle: StyleOffsetLimit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(captured))
	}
	second := captured[1]
	if second["offset"] != 1 || second["limit"] != 1 {
		t.Errorf("expected offset/limit follow-up params, got %v", second)
	}
}

func TestAutoPaginateMaxItems(t *testing.T) {
	fetch := func(ctx context.Context, params map[string]any) (map[string]any, error) {
		return map[string]any{
			"data":       []any{"x", "y", "z"},
			"page":       float64(1),
			"limit":      float64(3),
			"totalItems": float64(100),
		}, nil
	}

	out, err := AutoPaginate(context.Background(), fetch, nil, AutoPaginateOptions{MaxItems: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected truncation at 2 items, got %d", len(out))
	}
}

func TestAutoPaginateMaxPagesDefault(t *testing.T) {
	call := 0
	fetch := func(ctx context.Context, params map[string]any) (map[string]any, error) {
		call++
		return map[string]any{
			"data":       []any{"x"},
			"page":       float64(call),
			"limit":      float64(1),
			"totalItems": float64(1000),
		}, nil
	}

	out, err := AutoPaginate(context.Background(), fetch, nil, AutoPaginateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call != 10 {
		t.Errorf("expected default cap of 10 pages, got %d", call)
	}
	if len(out) != 10 {
		t.Errorf("expected 10 items, got %d", len(out))
	}
}

func TestAutoPaginateFetchErrorReturnsPartial(t *testing.T) {
	call := 0
	fetch := func(ctx context.Context, params map[string]any) (map[string]any, error) {
		call++
		if call == 2 {
			return nil, errors.New("upstream down")
		}
		return map[string]any{
			"data":       []any{"x"},
			"page":       float64(call),
			"limit":      float64(1),
			"totalItems": float64(3),
		}, nil
	}

	out, err := AutoPaginate(context.Background(), fetch, nil, AutoPaginateOptions{})
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if len(out) != 1 {
		t.Errorf("expected first page retained, got %d items", len(out))
	}
}

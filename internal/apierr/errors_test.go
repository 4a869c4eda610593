package apierr

import (
	"strings"
	"testing"
	"time"
)

func TestMapStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Code
	}{
		{400, CodeInvalidParams},
		{401, CodeInvalidRequest},
		{403, CodeInvalidRequest},
		{404, CodeInvalidRequest},
		{429, CodeInvalidRequest},
		{408, CodeTimeout},
		{504, CodeTimeout},
		{500, CodeInternal},
		{502, CodeInternal},
		{503, CodeInternal},
		{418, CodeInternal},
	}

	for _, tc := range cases {
		if got := MapStatus(tc.status); got != tc.want {
			t.Errorf("MapStatus(%d) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestRPCCode(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidRequest, -32600},
		{CodeMethodNotFound, -32601},
		{CodeInvalidParams, -32602},
		{CodeTimeout, -32001},
		{CodeInternal, -32000},
	}

	for _, tc := range cases {
		if got := tc.code.RPCCode(); got != tc.want {
			t.Errorf("%s.RPCCode() = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestNewPopulatesCorrelationFields(t *testing.T) {
	e := New(KindUpstreamHTTP, CodeInternal, "boom %d", 7)

	if e.Message != "boom 7" {
		t.Errorf("unexpected message: %s", e.Message)
	}
	if e.RequestID == "" {
		t.Error("expected a request id")
	}
	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %s", e.Timestamp)
	}
}

func TestToolNotFound(t *testing.T) {
	e := ToolNotFound("getWidget")

	if e.Kind != KindToolNotFound {
		t.Errorf("unexpected kind: %s", e.Kind)
	}
	if e.Code != CodeMethodNotFound {
		t.Errorf("unexpected code: %s", e.Code)
	}
	if !strings.Contains(e.Message, "not found") || !strings.Contains(e.Message, "getWidget") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

func TestUpstreamHTTPKeepsStatus(t *testing.T) {
	e := UpstreamHTTP(404, "Not Found")

	if e.Status != 404 {
		t.Errorf("expected status 404, got %d", e.Status)
	}
	if e.Code != CodeInvalidRequest {
		t.Errorf("expected invalid-request, got %s", e.Code)
	}
	if !strings.Contains(e.Message, "404") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

func TestErrorStringIncludesKind(t *testing.T) {
	e := ToolMetadataInvalid("broken", "path")

	if !strings.Contains(e.Error(), "tool_metadata_invalid") {
		t.Errorf("unexpected Error(): %s", e.Error())
	}
}

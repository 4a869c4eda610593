// Package apierr normalizes the bridge's two failure families — upstream
// HTTP errors and argument-validation errors — onto one error shape, and
// maps both onto the JSON-RPC code space.
package apierr

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a bridge failure.
type Kind int

const (
	KindSpecificationInvalid Kind = iota // fatal at startup
	KindToolNotFound
	KindToolMetadataInvalid
	KindValidationFailed
	KindUpstreamHTTP
	KindUpstreamNetwork
)

func (k Kind) String() string {
	switch k {
	case KindSpecificationInvalid:
		return "specification_invalid"
	case KindToolNotFound:
		return "tool_not_found"
	case KindToolMetadataInvalid:
		return "tool_metadata_invalid"
	case KindValidationFailed:
		return "validation_failed"
	case KindUpstreamHTTP:
		return "upstream_http_error"
	case KindUpstreamNetwork:
		return "upstream_network_error"
	}
	return "unknown"
}

// Code is the protocol-level error category.
type Code string

const (
	CodeInvalidRequest Code = "invalid-request"
	CodeInvalidParams  Code = "invalid-params"
	CodeTimeout        Code = "timeout"
	CodeInternal       Code = "internal"
	CodeMethodNotFound Code = "method-not-found"
)

// JSON-RPC numeric codes for the protocol envelope.
const (
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCServerError    = -32000
	RPCTimeout        = -32001
)

// RPCCode maps a protocol category onto the envelope's numeric code space.
func (c Code) RPCCode() int {
	switch c {
	case CodeInvalidParams:
		return RPCInvalidParams
	case CodeInvalidRequest:
		return RPCInvalidRequest
	case CodeMethodNotFound:
		return RPCMethodNotFound
	case CodeTimeout:
		return RPCTimeout
	default:
		return RPCServerError
	}
}

// MapStatus maps an upstream HTTP status onto a protocol error category.
// The mapping is deliberately coarse: auth and rate-limit failures are not
// distinguished from bad requests at the protocol level.
func MapStatus(status int) Code {
	switch status {
	case 400:
		return CodeInvalidParams
	case 401, 403, 404, 429:
		return CodeInvalidRequest
	case 408, 504:
		return CodeTimeout
	case 500, 502, 503:
		return CodeInternal
	default:
		return CodeInternal
	}
}

// Violation describes one schema-validation failure.
type Violation struct {
	Path    string         `json:"path"`
	Message string         `json:"message"`
	Keyword string         `json:"keyword"`
	Params  map[string]any `json:"params,omitempty"`
}

// Error is the normalized error shape returned to callers. Every instance
// carries an opaque request id and timestamp for correlation with logs.
type Error struct {
	Kind       Kind        `json:"-"`
	Code       Code        `json:"code"`
	Message    string      `json:"message"`
	Status     int         `json:"status,omitempty"` // upstream HTTP status, when known
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Violations []Violation `json:"violations,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates a normalized error of the given kind with a fresh request id.
func New(kind Kind, code Code, format string, args ...any) *Error {
	return &Error{
		Kind:      kind,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		RequestID: uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SpecificationInvalid reports a fatal startup-time specification problem.
func SpecificationInvalid(format string, args ...any) *Error {
	return New(KindSpecificationInvalid, CodeInternal, format, args...)
}

// ToolNotFound reports a call against an unregistered tool name.
func ToolNotFound(name string) *Error {
	return New(KindToolNotFound, CodeMethodNotFound, "tool not found: %s", name)
}

// ToolMetadataInvalid reports a registered tool whose stored metadata cannot
// drive an HTTP request.
func ToolMetadataInvalid(name, missing string) *Error {
	return New(KindToolMetadataInvalid, CodeInternal, "tool %s has invalid metadata: missing %s", name, missing)
}

// ValidationFailed reports argument-validation failure with its violations.
func ValidationFailed(message string, violations []Violation) *Error {
	e := New(KindValidationFailed, CodeInvalidParams, "%s", message)
	e.Violations = violations
	return e
}

// UpstreamHTTP reports a non-2xx upstream response, mapped via MapStatus.
func UpstreamHTTP(status int, statusText string) *Error {
	e := New(KindUpstreamHTTP, MapStatus(status), "upstream returned %d %s", status, statusText)
	e.Status = status
	return e
}

// UpstreamNetwork reports a transport-level failure reaching the upstream.
func UpstreamNetwork(err error) *Error {
	return New(KindUpstreamNetwork, CodeInternal, "upstream request failed: %v", err)
}

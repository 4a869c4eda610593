package apierr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParamType is the closed set of JSON-Schema primitive types the bridge
// understands. Modeling these as a variant keeps coercion rules in one place
// instead of string comparisons scattered across call sites.
type ParamType int

const (
	TypeString ParamType = iota
	TypeNumber
	TypeInteger
	TypeBoolean
	TypeArray
	TypeObject
)

// ParseParamType maps a JSON-Schema type string onto the variant.
// Unknown or empty types default to string, matching the schema builder.
func ParseParamType(s string) ParamType {
	switch s {
	case "number":
		return TypeNumber
	case "integer":
		return TypeInteger
	case "boolean":
		return TypeBoolean
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	default:
		return TypeString
	}
}

func (t ParamType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "string"
	}
}

// Matches reports whether a decoded JSON value is compatible with the type.
// Nil never matches.
func (t ParamType) Matches(v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := v.(float64)
		return ok
	case TypeInteger:
		f, ok := v.(float64)
		return ok && f == float64(int64(f))
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

// CoerceString renders a value for use in a URL path segment or query
// parameter. Arrays are comma-joined, objects JSON-encoded; scalars use
// their natural representation.
func (t ParamType) CoerceString(v any) string {
	switch t {
	case TypeArray:
		if arr, ok := v.([]any); ok {
			parts := make([]string, len(arr))
			for i, item := range arr {
				parts[i] = fmt.Sprint(item)
			}
			return strings.Join(parts, ",")
		}
	case TypeObject:
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
	case TypeInteger:
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
	}
	return fmt.Sprint(v)
}

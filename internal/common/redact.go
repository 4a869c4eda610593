package common

import (
	"encoding/json"
	"net/url"
	"strings"
)

// sensitiveKeys are field names whose values must never reach a log sink.
var sensitiveKeys = map[string]bool{
	"authorization": true,
	"api_key":       true,
	"apikey":        true,
	"token":         true,
	"secret":        true,
	"password":      true,
	"cookie":        true,
}

const redactedValue = "[REDACTED]"

// Redact returns a copy of the structured data with values of known-sensitive
// field names replaced. Nested maps are redacted recursively; the input map is
// never mutated.
func Redact(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if sensitiveKeys[strings.ToLower(k)] {
			out[k] = redactedValue
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// RedactJSON renders structured data as a compact JSON string with sensitive
// values replaced, for embedding in a single log field.
func RedactJSON(fields map[string]any) string {
	if len(fields) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(Redact(fields))
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// RedactURL replaces the values of known-sensitive query parameters in a URL
// before it reaches a log sink. Unparseable input is returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for k := range q {
		if sensitiveKeys[strings.ToLower(k)] {
			q.Set(k, redactedValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

package apierr

import (
	"testing"
)

func widgetSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":    map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
			"tags":  map[string]any{"type": "array"},
		},
		"required": []string{"id"},
	}
}

func TestValidateArgsValid(t *testing.T) {
	args := map[string]any{"id": "42", "count": float64(3)}

	if err := ValidateArgs(args, widgetSchema()); err != nil {
		t.Errorf("expected valid args, got %v", err)
	}
}

func TestValidateArgsMissingRequired(t *testing.T) {
	err := ValidateArgs(map[string]any{"count": float64(1)}, widgetSchema())

	if err == nil {
		t.Fatal("expected validation error for missing required param")
	}
	if err.Kind != KindValidationFailed {
		t.Errorf("unexpected kind: %s", err.Kind)
	}
	if len(err.Violations) != 1 || err.Violations[0].Keyword != "required" {
		t.Errorf("unexpected violations: %+v", err.Violations)
	}
	if err.Violations[0].Path != "id" {
		t.Errorf("expected violation on id, got %s", err.Violations[0].Path)
	}
}

func TestValidateArgsNilArgsTreatedAsEmpty(t *testing.T) {
	err := ValidateArgs(nil, widgetSchema())

	if err == nil {
		t.Fatal("expected required check to fire on nil args")
	}
	if err.Violations[0].Keyword != "required" {
		t.Errorf("unexpected keyword: %s", err.Violations[0].Keyword)
	}
}

func TestValidateArgsTypeMismatch(t *testing.T) {
	args := map[string]any{"id": "42", "count": "three"}

	err := ValidateArgs(args, widgetSchema())
	if err == nil {
		t.Fatal("expected type violation")
	}
	if err.Violations[0].Keyword != "type" {
		t.Errorf("unexpected keyword: %s", err.Violations[0].Keyword)
	}
	if err.Violations[0].Path != "count" {
		t.Errorf("expected violation on count, got %s", err.Violations[0].Path)
	}
}

func TestValidateArgsRequiredBeforeType(t *testing.T) {
	// Both checks would fail here; required must be reported first.
	err := ValidateArgs(map[string]any{"count": "three"}, widgetSchema())

	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Violations[0].Keyword != "required" {
		t.Errorf("expected required check to short-circuit, got %s", err.Violations[0].Keyword)
	}
}

func TestValidateArgsIntegerRejectsFraction(t *testing.T) {
	args := map[string]any{"id": "42", "count": float64(2.5)}

	err := ValidateArgs(args, widgetSchema())
	if err == nil {
		t.Fatal("expected fractional value rejected for integer param")
	}
}

func TestValidateArgsUnknownParamPassesPrimitiveCheck(t *testing.T) {
	// Parameters the schema does not declare are left for the full-schema
	// pass, which permits them absent additionalProperties:false.
	args := map[string]any{"id": "42", "extra": true}

	if err := ValidateArgs(args, widgetSchema()); err != nil {
		t.Errorf("expected undeclared param accepted, got %v", err)
	}
}

func TestValidateArgsRequiredFromJSONRoundTrip(t *testing.T) {
	schema := widgetSchema()
	schema["required"] = []any{"id"}

	err := ValidateArgs(map[string]any{}, schema)
	if err == nil {
		t.Fatal("expected []any required list honored")
	}
}

func TestValidateArgsNilSchema(t *testing.T) {
	if err := ValidateArgs(map[string]any{"anything": 1}, nil); err != nil {
		t.Errorf("expected nil schema to accept anything, got %v", err)
	}
}

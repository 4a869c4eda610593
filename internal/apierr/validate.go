package apierr

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateArgs checks a caller-supplied argument bag against a generated
// input schema. Validation is layered and stops at the first layer that
// fails: required-params check, then primitive-type check, then full
// JSON-Schema validation. Returns nil when the arguments are valid.
func ValidateArgs(args map[string]any, schema map[string]any) *Error {
	if schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	if err := checkRequired(args, schema); err != nil {
		return err
	}
	if err := checkPrimitiveTypes(args, schema); err != nil {
		return err
	}
	return checkFullSchema(args, schema)
}

// checkRequired is the cheap first pass: every name in the schema's required
// list must be present.
func checkRequired(args map[string]any, schema map[string]any) *Error {
	for _, name := range requiredNames(schema) {
		if _, ok := args[name]; !ok {
			return ValidationFailed(
				fmt.Sprintf("missing required parameter: %s", name),
				[]Violation{{Path: name, Message: "required parameter is missing", Keyword: "required"}},
			)
		}
	}
	return nil
}

// checkPrimitiveTypes verifies each supplied argument against its declared
// primitive type, short-circuiting on the first mismatch. Arguments are
// visited in sorted order so the first reported violation is deterministic.
func checkPrimitiveTypes(args map[string]any, schema map[string]any) *Error {
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		typeStr, ok := prop["type"].(string)
		if !ok {
			continue
		}
		pt := ParseParamType(typeStr)
		if !pt.Matches(args[name]) {
			return ValidationFailed(
				fmt.Sprintf("parameter %s must be of type %s", name, pt),
				[]Violation{{
					Path:    name,
					Message: fmt.Sprintf("expected %s", pt),
					Keyword: "type",
					Params:  map[string]any{"expected": pt.String()},
				}},
			)
		}
	}
	return nil
}

// checkFullSchema runs the complete JSON-Schema validation pass.
func checkFullSchema(args map[string]any, schema map[string]any) *Error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		// A schema that cannot be compiled is a bridge bug, not a caller error.
		return New(KindValidationFailed, CodeInternal, "schema validation error: %v", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, ve := range result.Errors() {
		violations = append(violations, Violation{
			Path:    ve.Field(),
			Message: ve.Description(),
			Keyword: ve.Type(),
			Params:  ve.Details(),
		})
	}
	return ValidationFailed("arguments failed schema validation", violations)
}

// requiredNames extracts the schema's required list, tolerating both the
// []string the builder emits and the []any a JSON round-trip produces.
func requiredNames(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

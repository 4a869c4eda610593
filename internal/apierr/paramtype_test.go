package apierr

import "testing"

func TestParseParamTypeDefaultsToString(t *testing.T) {
	if ParseParamType("") != TypeString {
		t.Error("expected empty type to parse as string")
	}
	if ParseParamType("widget") != TypeString {
		t.Error("expected unknown type to parse as string")
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		pt   ParamType
		v    any
		want bool
	}{
		{TypeString, "x", true},
		{TypeString, 1.0, false},
		{TypeNumber, 1.5, true},
		{TypeNumber, "1.5", false},
		{TypeInteger, float64(3), true},
		{TypeInteger, 3.5, false},
		{TypeBoolean, true, true},
		{TypeBoolean, "true", false},
		{TypeArray, []any{1}, true},
		{TypeArray, map[string]any{}, false},
		{TypeObject, map[string]any{}, true},
		{TypeObject, []any{}, false},
		{TypeString, nil, false},
	}

	for _, tc := range cases {
		if got := tc.pt.Matches(tc.v); got != tc.want {
			t.Errorf("%s.Matches(%v) = %v, want %v", tc.pt, tc.v, got, tc.want)
		}
	}
}

func TestCoerceString(t *testing.T) {
	cases := []struct {
		pt   ParamType
		v    any
		want string
	}{
		{TypeString, "x", "x"},
		{TypeInteger, float64(42), "42"},
		{TypeNumber, 1.5, "1.5"},
		{TypeBoolean, true, "true"},
		{TypeArray, []any{"a", "b", float64(3)}, "a,b,3"},
		{TypeObject, map[string]any{"k": "v"}, `{"k":"v"}`},
	}

	for _, tc := range cases {
		if got := tc.pt.CoerceString(tc.v); got != tc.want {
			t.Errorf("%s.CoerceString(%v) = %q, want %q", tc.pt, tc.v, got, tc.want)
		}
	}
}

package repl

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no_call", "greeting", 8, "", 0, false},
		{"open_paren", "toInt(", 6, "toInt", 0, true},
		{"first_arg", "toInt(1", 7, "toInt", 0, true},
		{"second_arg", "Math.pow(2,", 11, "Math.pow", 1, true},
		{"second_arg_value", "Math.pow(2, 8", 13, "Math.pow", 1, true},
		{"method", "me.closest(", 11, "me.closest", 0, true},
		{"nested_inner", "Math.max(1, toInt(", 18, "toInt", 0, true},
		{"nested_outer", "Math.max(1, toInt(2), ", 22, "Math.max", 2, true},
		{"closed", "toInt(1)", 8, "", 0, false},
		{"array_argument", "Math.max([1, 2], 3", 18, "Math.max", 1, true},
		{"grouping_only", "(1 + 2", 6, "", 0, false},
		{"cursor_inside", "Math.pow(2, 8)", 10, "Math.pow", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestSignatureOf(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		ok     bool
	}{
		{"increment", []string{"name", "amount"}, true},
		{"Math.pow", []string{"base", "exponent"}, true},
		{"Math.random", []string{}, true},
		{"me.closest", []string{"selector"}, true},
		{"user.name.split", []string{"separator"}, true},
		{"pow", nil, false},
		{"unknown", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := signatureOf(tt.name)
			if ok != tt.ok || !slices.Equal(params, tt.params) {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.params, tt.ok, params, ok)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	hint := renderSignatureHint("Math.max", []string{"...values"}, 3)

	for _, part := range []string{"Math.max", "(", "...values", ")"} {
		if !strings.Contains(hint, part) {
			t.Errorf("expected %q in %q", part, hint)
		}
	}

	if hint := renderSignatureHint("Math.random", nil, 0); !strings.HasSuffix(hint, ")") {
		t.Errorf("expected a closed parameter list, got %q", hint)
	}
}

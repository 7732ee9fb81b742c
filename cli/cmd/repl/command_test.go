package repl

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/hypereval/lang"
)

func TestSession_Eval(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"marker", "count * 21", "42"},
		{"template", "theme: ${theme}", "theme: dark"},
		{"hyphenated", "user.first-name", "Ada"},
		{"element", "me.id", "save"},
		{"dataset", "me.dataset.userId", "7"},
		{"tree", `{"type":"binaryExpression","operator":"+","left":{"type":"identifier","name":"count"},"right":{"type":"literal","value":1}}`, "3"},
		{"tree_object", `{"type":"objectLiteral","properties":[{"key":"a","value":{"type":"literal","value":1}}]}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.eval(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if _, err := s.eval(t.Context(), `{"type":`); err == nil {
		t.Error("expected a malformed tree to fail")
	}
}

func TestSession_SetUnset(t *testing.T) {
	s := newTestSession(t)
	ctx := t.Context()

	if _, err := s.command(ctx, "set limit 10"); err != nil {
		t.Fatalf("set error: %v", err)
	}

	if v, _ := s.rt.Variables().Get("limit"); v != float64(10) {
		t.Errorf("expected a number, got %#v", v)
	}

	if _, err := s.command(ctx, ":set tags [a, b]"); err != nil {
		t.Fatalf("set error: %v", err)
	}

	if v, _ := s.rt.Variables().Get("tags"); lang.ToString(v) != "a,b" {
		t.Errorf("expected an array, got %#v", v)
	}

	if _, err := s.command(ctx, "set note hello world"); err != nil {
		t.Fatalf("set error: %v", err)
	}

	if got, _ := s.eval(ctx, "note"); got != "hello world" {
		t.Errorf("expected the string to be bound, got %q", got)
	}

	if _, err := s.command(ctx, "set"); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected a missing name, got %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"limit", "removed variable limit"},
		{"count", "removed local count"},
		{"theme", "removed global theme"},
		{"title", "host global"},
		{"nothing", "not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.command(ctx, "unset "+tt.name)
			if err != nil {
				t.Fatalf("unset error: %v", err)
			}

			if !strings.Contains(r.text, tt.want) {
				t.Errorf("expected %q in %q", tt.want, r.text)
			}
		})
	}

	if _, tier := lang.Lookup(s.ec, "count", lang.ScopeDefault); tier != lang.TierNone {
		t.Errorf("expected count to be gone, found in %s", tier)
	}
}

func TestSession_List(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		target string
		want   []string
	}{
		{"", []string{"count", "(local)", "theme", "(global)", "user", "{ 2 keys }", "me", "(slot)"}},
		{"host", []string{"Math", "document", "title", "(host)"}},
		{"builtins", []string{"command:", "increment", "conversion:", "toInt"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			r, err := s.command(t.Context(), "list "+tt.target)
			if err != nil {
				t.Fatalf("list error: %v", err)
			}

			for _, w := range tt.want {
				if !strings.Contains(r.text, w) {
					t.Errorf("expected %q in\n%s", w, r.text)
				}
			}
		})
	}

	if _, err := s.command(t.Context(), "list everything"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected an unknown target, got %v", err)
	}
}

func TestSession_Command(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		line string
		want action
	}{
		{"quit", actionQuit},
		{":q", actionQuit},
		{"clear", actionClear},
		{"edit", actionEdit},
		{"help", actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			r, err := s.command(t.Context(), tt.line)
			if err != nil {
				t.Fatalf("command error: %v", err)
			}

			if r.action != tt.want {
				t.Errorf("expected action %d, got %d", tt.want, r.action)
			}
		})
	}

	if _, err := s.command(t.Context(), "frobnicate"); !errors.Is(err, ErrUnknownVerb) {
		t.Errorf("expected an unknown command, got %v", err)
	}
}

func TestDecodeVariables(t *testing.T) {
	m, err := decodeVariables(t.Context(), []byte("count: 3\nlist: [1, x]\n"))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if m["count"] != float64(3) {
		t.Errorf("expected a normalized number, got %#v", m["count"])
	}

	if _, err := decodeVariables(t.Context(), []byte("a: [")); err == nil {
		t.Error("expected invalid YAML to fail")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{map[string]any{"a": 1}, "{ 1 key }"},
		{[]any{1.0, 2.0}, "[ 2 items ]"},
		{"x", `"x"`},
		{float64(1.5), "1.5"},
		{strings.Repeat("a", 60), `"` + strings.Repeat("a", 36) + "..."},
	}

	for _, tt := range tests {
		if got := preview(tt.v); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

package repl

import (
	"slices"
	"testing"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dot_separated", "me.data", 7, "data", 3, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "max(fo", 6, "fo", 4, 6},
		{"in_marker", "${us", 4, "us", 2, 4},
		{"in_quotes", `"ab`, 3, "ab", 1, 3},
		{"in_ternary", "x ? fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"cursor_past_end", "foo", 9, "foo", 0, 3},
		{"hyphenated", "font-size", 9, "font-size", 0, 9},
		{"hyphenated_after_dot", "style.font-si", 13, "font-si", 6, 13},
		{"empty_after_dot", "user.", 5, "", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "me.dataset.", 11, "me.dataset"},
		{"after_operator", "1 + me.dataset.", 15, "me.dataset"},
		{"in_marker", "${user.", 7, "user"},
		{"after_paren", "(a.b.", 5, "a.b"},
		{"no_chain", "a + ", 4, ""},
		{"hyphenated_chain", "me.style.font-size.", 19, "me.style.font-size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestCommandWords(t *testing.T) {
	tests := []struct {
		input     string
		cursor    int
		wantVerb  string
		wantIndex int
	}{
		{"", 0, "", 0},
		{"se", 2, "se", 0},
		{"set ", 4, "set", 1},
		{"set na", 6, "set", 1},
		{"set name va", 11, "set", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			verb, index := commandWords(tt.input, tt.cursor)
			if verb != tt.wantVerb || index != tt.wantIndex {
				t.Errorf("expected (%q, %d), got (%q, %d)", tt.wantVerb, tt.wantIndex, verb, index)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		name  string
		input string
		ctrl  bool
		want  []string // each must be among the candidates
		none  bool
	}{
		{"top_level", "us", false, []string{"user"}, false},
		{"locals", "cou", false, []string{"count"}, false},
		{"builtin", "toInt", false, []string{"toInt"}, false},
		{"host_global", "Mat", false, []string{"Math"}, false},
		{"slot", "${m", false, []string{"me"}, false},
		{"empty_top_level", "", false, nil, true},
		{"map_keys", "user.", false, []string{"first-name", "name"}, false},
		{"string_methods", "theme.", false, []string{"length", "toUpperCase"}, false},
		{"element_members", "me.clo", false, []string{"closest"}, false},
		{"element_attribute", "me.data-", false, []string{"data-user-id"}, false},
		{"unknown_parent", "missing.", false, nil, true},
		{"command", "se", true, []string{"set"}, false},
		{"colon_command", ":li", false, []string{"list"}, false},
		{"list_target", ":list ", false, listTargets, false},
		{"set_variable", "set us", true, []string{"user"}, false},
		{"unset_any", "unset cou", true, []string{"count"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := complete(s, tt.input, len(tt.input), tt.ctrl)
			got := candidateStrings(c)

			if tt.none {
				if len(got) != 0 {
					t.Errorf("expected no candidates, got %v", got)
				}

				return
			}

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("expected %q among %v", w, got)
				}
			}
		})
	}
}

func TestComplete_Bounds(t *testing.T) {
	s := newTestSession(t)

	c := complete(s, "1 + user.na", 11, false)
	if c.start != 9 || c.end != 11 {
		t.Errorf("expected word at [9, 11), got [%d, %d)", c.start, c.end)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	s := newTestSession(t)

	c := complete(s, "user.", 5, false)

	bar := renderCandidateBar(c.matches, -1, 80)
	if bar == "" {
		t.Fatal("expected a candidate bar")
	}

	if narrow := renderCandidateBar(c.matches, -1, 12); len(narrow) >= len(bar) && len(c.matches) > 1 {
		t.Errorf("expected a narrower bar to be truncated, got %q", narrow)
	}

	if renderCandidateBar(nil, 0, 80) != "" {
		t.Error("expected no bar without matches")
	}
}

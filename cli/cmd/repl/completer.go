package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the commands accepted in command mode, or after a ':' in
// expression mode.
//
//nolint:gochecknoglobals
var ctrlCommands = []string{"clear", "edit", "help", "list", "quit", "set", "unset"}

// listTargets are the arguments accepted by the list command.
//
//nolint:gochecknoglobals
var listTargets = []string{"builtins", "host", "scope"}

// isWordBoundary reports whether r separates completion words. Hyphens are
// not boundaries since identifiers such as font-size may contain them.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}', '$',
		'+', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'"', '\'', '`':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain preceding the word that starts
// at wordStart. For "a + me.dataset.us" and the word "us" it is "me.dataset".
// It is empty for a word that is not preceded by a dot.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// commandWords splits a command line into its verb and the index of the
// word under the cursor.
func commandWords(input string, cursor int) (verb string, index int) {
	before := input[:min(max(cursor, 0), len(input))]
	fields := strings.Fields(before)

	index = len(fields)
	if len(fields) > 0 && !strings.HasSuffix(before, " ") {
		index--
	}

	if len(fields) > 0 {
		verb = fields[0]
	}

	return verb, index
}

// completion is the state needed to complete the word under the cursor.
type completion struct {
	matches    fuzzy.Matches
	candidates []string
	start, end int
}

// complete computes the ranked candidates for the word at cursor.
//
// In command mode the first word completes to a command and later words to
// the names that command accepts. In expression mode a word after a dot
// completes to the members of the value before it, and a top-level word to
// every visible name.
func complete(s *session, input string, cursor int, ctrl bool) completion {
	word, start, end := wordBounds(input, cursor)
	c := completion{start: start, end: end}

	line, colon := strings.CutPrefix(input, ":")
	if colon {
		ctrl = true
		cursor--
	}

	var browse bool

	if ctrl {
		verb, index := commandWords(line, cursor)

		switch {
		case index == 0:
			c.candidates = ctrlCommands
		case index == 1 && verb == "set":
			c.candidates = s.rt.Variables().Keys()
		case index == 1 && verb == "unset":
			c.candidates = s.names()
		case index == 1 && verb == "list":
			c.candidates, browse = listTargets, true
		}
	} else {
		parent := parentPath(input, start)
		if parent != "" {
			c.candidates, browse = s.members(parent), true
		} else {
			c.candidates = s.names()
		}
	}

	switch {
	case len(c.candidates) == 0:
		return completion{start: start, end: end}

	case word == "" && !browse:
		return completion{start: start, end: end}

	case word == "":
		c.matches = make(fuzzy.Matches, len(c.candidates))
		for i, name := range c.candidates {
			c.matches[i] = fuzzy.Match{Str: name, Index: i}
		}

	default:
		c.matches = fuzzy.Find(word, c.candidates)
	}

	return c
}

// renderCandidateBar renders matches on a single line no wider than width,
// ending with an ellipsis when they do not all fit.
func renderCandidateBar(matches fuzzy.Matches, selected int, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w > room {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders match with its matched characters in bold.
// Known functions get a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	if selected {
		base = selectedStyle
	}

	strong := base.Bold(true)

	hit := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		hit[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if hit[i] {
			b.WriteString(strong.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if _, ok := functions[match.Str]; ok {
		b.WriteString(base.Render("()"))
	} else if _, ok := methods[match.Str]; ok {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

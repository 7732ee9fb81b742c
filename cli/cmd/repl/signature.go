package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

//nolint:gochecknoglobals
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functions maps callable names to their parameter names. A parameter
// prefixed with "..." is variadic.
//
//nolint:gochecknoglobals
var functions = map[string][]string{
	"log":       {"...values"},
	"increment": {"name", "amount"},
	"decrement": {"name", "amount"},

	"toInt":     {"value"},
	"toNumber":  {"value"},
	"toString":  {"value"},
	"toBoolean": {"value"},
	"toJSON":    {"value"},

	"parseInt":   {"text", "radix"},
	"parseFloat": {"text"},
	"isNaN":      {"value"},

	"String":  {"value"},
	"Number":  {"value"},
	"Boolean": {"value"},
	"Array":   {"...items"},
	"Object":  {"value"},
	"Error":   {"message"},

	"Math.abs":    {"x"},
	"Math.ceil":   {"x"},
	"Math.floor":  {"x"},
	"Math.round":  {"x"},
	"Math.sqrt":   {"x"},
	"Math.trunc":  {"x"},
	"Math.max":    {"...values"},
	"Math.min":    {"...values"},
	"Math.pow":    {"base", "exponent"},
	"Math.random": {},

	"JSON.stringify": {"value"},
	"JSON.parse":     {"text"},
}

// methods maps method names of strings, arrays and elements to their
// parameter names.
//
//nolint:gochecknoglobals
var methods = map[string][]string{
	"split":       {"separator"},
	"join":        {"separator"},
	"slice":       {"start", "end"},
	"includes":    {"item"},
	"indexOf":     {"item"},
	"startsWith":  {"prefix"},
	"endsWith":    {"suffix"},
	"trim":        {},
	"toUpperCase": {},
	"toLowerCase": {},

	"getAttribute":     {"name"},
	"hasAttribute":     {"name"},
	"matches":          {"selector"},
	"querySelector":    {"selector"},
	"querySelectorAll": {"selector"},
	"closest":          {"selector"},
}

// signatureOf returns the parameters of the named function. A dotted name
// that is not a known function is looked up as a method by its last
// segment.
func signatureOf(name string) (params []string, ok bool) {
	if params, ok = functions[name]; ok {
		return params, true
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		params, ok = methods[name[i+1:]]
	}

	return params, ok
}

// functionCall describes the innermost call enclosing the cursor.
type functionCall struct {
	name     string // callee as written, such as "Math.max" or "me.closest"
	argIndex int    // 0-based index of the argument under the cursor
	inCall   bool
}

func isCalleeByte(b byte) bool {
	return b == '.' || b == '_' || b == '-' || b == '$' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// detectFunctionCall reports the innermost unclosed call whose argument list
// contains cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 && isCalleeByte(input[start-1]) {
		start--
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	call := functionCall{name: name, inCall: true}

	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call
}

// renderSignatureHint renders name(params) with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every argument at
// or after its position.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")

		if argIndex == i || (variadic && argIndex > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}

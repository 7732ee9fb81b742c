package repl

import (
	"testing"

	"github.com/ardnew/hypereval/builtin"
	"github.com/ardnew/hypereval/dom"
	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

const page = `<html><head><title>Demo</title></head><body>
<button id="save" class="btn primary" data-user-id="7">Save</button>
</body></html>`

// newTestSession returns a session over a runtime with every builtin, a
// small document as host, and a few bound names.
func newTestSession(t *testing.T) *session {
	t.Helper()

	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	reg := lang.NewRegistry(nil)
	builtin.Register(reg)

	rt := lang.NewRuntime(lang.WithRegistry(reg), lang.WithHost(doc))
	rt.Variables().Set("user", map[string]any{"name": "ada", "first-name": "Ada"})
	rt.Globals().Set("theme", "dark")

	ec := rt.NewContext()
	ec.Locals.Set("count", float64(2))

	found, err := doc.Query(t.Context(), "#save")
	if err != nil || len(found) != 1 {
		t.Fatalf("query error: %v %v", found, err)
	}

	ec.Me = found[0]

	return newSession(rt, ec, log.Logger{})
}

func candidateStrings(c completion) []string {
	out := make([]string, len(c.matches))
	for i, m := range c.matches {
		out[i] = m.Str
	}

	return out
}

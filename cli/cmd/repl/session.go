package repl

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// slotNames are the context slots offered for completion.
//
//nolint:gochecknoglobals
var slotNames = []string{"event", "it", "me", "result", "you"}

// session is the evaluation state shared by the model and its commands.
type session struct {
	rt     *lang.Runtime
	ec     *lang.ExecutionContext
	logger log.Logger
}

func newSession(rt *lang.Runtime, ec *lang.ExecutionContext, logger log.Logger) *session {
	if ec == nil {
		ec = rt.NewContext()
	}

	return &session{rt: rt, ec: ec, logger: logger}
}

// eval evaluates one line of input and renders the result.
//
// A line beginning with "{" is a syntax tree in its JSON form. A line
// containing a "${" marker is a template. Anything else is the contents of a
// single marker.
func (s *session) eval(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(line, "{"):
		node, err := lang.DecodeReader(ctx, strings.NewReader(line), s.logger)
		if err != nil {
			return "", err
		}

		v, err := s.rt.Run(ctx, node, s.ec)
		if err != nil {
			return "", err
		}

		return render(ctx, v)

	case strings.Contains(line, "${"):
		return s.rt.Interpolate(ctx, line, s.ec)

	default:
		return s.rt.Interpolate(ctx, "${"+line+"}", s.ec)
	}
}

// render formats v for display: composite values as compact JSON, anything
// else in its string form.
func render(ctx context.Context, v any) (string, error) {
	switch v.(type) {
	case map[string]any, []any:
		var buf bytes.Buffer
		if err := lang.FormatJSON(ctx, &buf, v, 0); err != nil {
			return "", err
		}

		return strings.TrimSpace(buf.String()), nil
	}

	if lang.IsAbsent(v) {
		return "undefined", nil
	}

	return lang.ToString(v), nil
}

// names returns the identifiers that complete at the top level.
func (s *session) names() []string {
	all := slices.Concat(lang.Names(s.ec), s.rt.Registry().AllNames(), slotNames)
	all = slices.DeleteFunc(all, func(name string) bool { return !isIdentifier(name) })

	slices.Sort(all)

	return slices.Compact(all)
}

func isIdentifier(name string) bool {
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || unicode.IsDigit(r)):
		default:
			return false
		}
	}

	return name != ""
}

// resolve evaluates a dotted path such as "me.dataset" against the context.
func (s *session) resolve(path string) (any, bool) {
	segments := strings.Split(path, ".")

	v, ok := s.ec.Slot(segments[0])
	if !ok {
		v = lang.Resolve(s.ec, segments[0], lang.ScopeDefault)
	}

	for _, seg := range segments[1:] {
		if v == nil || lang.IsAbsent(v) {
			break
		}

		v = lang.GetProperty(s.ec, v, seg)
	}

	return v, v != nil && !lang.IsAbsent(v)
}

// members returns the property and method names of the value at path.
func (s *session) members(path string) []string {
	v, ok := s.resolve(path)
	if !ok {
		return nil
	}

	strs, arrays := lang.BuiltinMethods()

	switch t := v.(type) {
	case map[string]any:
		return slices.Sorted(maps.Keys(t))

	case string:
		return append([]string{"length"}, strs...)

	case []any:
		return append([]string{"length"}, arrays...)

	case interface{ PropertyNames() []string }:
		return t.PropertyNames()
	}

	return nil
}

// set binds name in the variable tier. The text is read as a YAML value;
// text that is not valid YAML is kept as a string.
func (s *session) set(ctx context.Context, name, text string) (any, error) {
	if name == "" {
		return nil, ErrMissingName
	}

	var v any
	if err := yaml.UnmarshalContext(ctx, []byte(text), &v); err != nil {
		v = text
	}

	v = lang.Normalize(v)
	s.rt.Variables().Set(name, v)

	s.logger.DebugContext(ctx, "set variable",
		slog.String("name", name),
		slog.String("type", lang.TypeOf(v)),
	)

	return v, nil
}

// unset removes name from the tier it resolves in and reports that tier.
// Host globals cannot be removed.
func (s *session) unset(ctx context.Context, name string) (lang.Tier, error) {
	if name == "" {
		return lang.TierNone, ErrMissingName
	}

	_, tier := lang.Lookup(s.ec, name, lang.ScopeDefault)

	switch tier {
	case lang.TierLocal:
		s.ec.Locals.Delete(name)
	case lang.TierGlobal:
		s.ec.Globals.Delete(name)
	case lang.TierVariable:
		s.ec.Variables.Delete(name)
	default:
		return tier, nil
	}

	s.logger.DebugContext(ctx, "unset name",
		slog.String("name", name),
		slog.String("tier", tier.String()),
	)

	return tier, nil
}

// binding is a visible name with the tier it resolves in.
type binding struct {
	name  string
	tier  lang.Tier
	value any
}

// bindings returns the visible names, either those of the host or those of
// the runtime tiers, ordered by tier and then by name.
func (s *session) bindings(host bool) []binding {
	var out []binding

	for _, name := range lang.Names(s.ec) {
		v, tier := lang.Lookup(s.ec, name, lang.ScopeDefault)
		if (tier == lang.TierHost) == host && tier != lang.TierNone {
			out = append(out, binding{name: name, tier: tier, value: v})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].tier != out[j].tier {
			return out[i].tier < out[j].tier
		}

		return out[i].name < out[j].name
	})

	return out
}

// builtins groups the registered builtins by category, including those the
// loader has not yet loaded.
func (s *session) builtins() map[string][]string {
	groups := s.rt.Registry().ByCategory()

	type categorized interface {
		Categories() []string
		KeysIn(category string) []string
	}

	if lazy, ok := s.rt.Registry().Provider().(categorized); ok {
		for _, category := range lazy.Categories() {
			groups[category] = append(groups[category], lazy.KeysIn(category)...)
		}
	}

	for category, names := range groups {
		slices.Sort(names)
		groups[category] = slices.Compact(names)
	}

	return groups
}

// preview renders a short description of v.
func preview(v any) string {
	const width = 40

	var s string

	switch t := v.(type) {
	case map[string]any:
		s = "{ " + itemCount(len(t), "key") + " }"
	case []any:
		s = "[ " + itemCount(len(t), "item") + " ]"
	case string:
		s = `"` + t + `"`
	default:
		s = lang.ToString(v)
	}

	if len(s) > width {
		s = s[:width-3] + "..."
	}

	return s
}

func itemCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return lang.FormatNumber(float64(n)) + " " + noun + "s"
}

package cmd

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/hypereval/builtin"
	"github.com/ardnew/hypereval/dom"
	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// CategoriesIdentifier is the kong variable listing the builtin categories.
const CategoriesIdentifier = "builtinCategories"

// Env holds the flags shared by commands that evaluate against a runtime.
//
// The context file is a YAML (or JSON) mapping. The keys me, you, it,
// result and event fill the context slots, the mappings under locals and
// variables fill those tiers, and every other key becomes a global.
type Env struct {
	Context    string   `help:"YAML or JSON file of globals, variables and context slots" placeholder:"FILE"     short:"c" type:"existingfile"`
	Document   string   `help:"HTML document used as the host environment"                placeholder:"FILE"     short:"d" type:"existingfile"`
	Me         string   `help:"Selector of the element bound to 'me' (requires --document)" placeholder:"SELECTOR"`
	Lazy       bool     `help:"Load builtins on first use instead of at startup"`
	Categories []string `help:"Builtin categories to install"                             default:"${builtinCategories}" enum:"${builtinCategories}" sep:","`
}

// Session is a runtime assembled from [Env] together with the context its
// evaluations run in.
type Session struct {
	Runtime  *lang.Runtime
	Context  *lang.ExecutionContext
	Document *dom.Document
	Loader   *lang.LazyRegistry[lang.Implementation]
}

// Open assembles a runtime: builtins, host document, globals, and an
// execution context seeded from the context file.
func (e *Env) Open(ctx context.Context, logger log.Logger) (*Session, error) {
	var (
		s    Session
		opts = []lang.Option{lang.WithLogger(logger)}
		sel  = []builtin.Option{
			builtin.WithCategories(e.Categories...),
			builtin.WithLogger(logger),
		}
	)

	if e.Lazy {
		s.Loader = lang.NewLazyRegistry[lang.Implementation](logger)
		builtin.Define(s.Loader, sel...)
		opts = append(opts, lang.WithLoader(s.Loader))
	} else {
		reg := lang.NewRegistry(nil)
		builtin.Register(reg, sel...)
		opts = append(opts, lang.WithRegistry(reg))
	}

	if e.Document != "" {
		doc, err := readDocument(e.Document, logger)
		if err != nil {
			return nil, err
		}

		s.Document = doc
		opts = append(opts, lang.WithHost(doc))
	}

	data, err := e.readContext()
	if err != nil {
		return nil, err
	}

	s.Runtime = lang.NewRuntime(append(opts, lang.WithGlobals(data.globals))...)
	s.Context = s.Runtime.NewContext()

	for name, v := range data.slots {
		setSlot(s.Context, name, lang.Normalize(v))
	}

	for name, v := range data.variables {
		s.Runtime.Variables().Set(name, lang.Normalize(v))
	}

	s.Context.Locals = lang.LocalsOf(data.locals)

	if e.Me != "" {
		if s.Document == nil {
			return nil, ErrNoDocument
		}

		found, err := s.Document.Query(ctx, e.Me)
		if err != nil {
			return nil, err
		}

		if len(found) > 0 {
			s.Context.Me = found[0]
		} else {
			logger.WarnContext(ctx, "no element for me", slog.String("selector", e.Me))
		}
	}

	logger.DebugContext(ctx, "runtime ready",
		slog.Bool("lazy", e.Lazy),
		slog.Bool("document", s.Document != nil),
		slog.Int("globals", len(data.globals)),
		slog.Int("variables", len(data.variables)),
	)

	return &s, nil
}

func readDocument(path string, logger log.Logger) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadDocument.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	doc, err := dom.Parse(f, dom.WithLogger(logger))
	if err != nil {
		return nil, ErrReadDocument.Wrap(err).With(slog.String("path", path))
	}

	return doc, nil
}

// contextData is the decoded content of a context file.
type contextData struct {
	slots     map[string]any
	locals    map[string]any
	variables map[string]any
	globals   map[string]any
}

var slotNames = []string{"me", "you", "it", "result", "event"}

func (e *Env) readContext() (contextData, error) {
	data := contextData{
		slots:     map[string]any{},
		locals:    map[string]any{},
		variables: map[string]any{},
		globals:   map[string]any{},
	}

	if e.Context == "" {
		return data, nil
	}

	raw, err := os.ReadFile(e.Context)
	if err != nil {
		return data, ErrReadContext.Wrap(err).With(slog.String("path", e.Context))
	}

	m, err := decodeContext(raw)
	if err != nil {
		return data, ErrReadContext.Wrap(err).With(slog.String("path", e.Context))
	}

	for k, v := range m {
		switch {
		case isSlot(k):
			data.slots[k] = v

		case k == "locals" || k == "variables":
			tier, ok := lang.Normalize(v).(map[string]any)
			if !ok {
				data.globals[k] = v

				continue
			}

			if k == "locals" {
				maps.Copy(data.locals, tier)
			} else {
				maps.Copy(data.variables, tier)
			}

		default:
			data.globals[k] = v
		}
	}

	return data, nil
}

// decodeContext decodes a YAML or JSON mapping. An empty document decodes
// to an empty mapping.
func decodeContext(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}

	if m == nil {
		m = map[string]any{}
	}

	return m, nil
}

func isSlot(name string) bool { return slices.Contains(slotNames, name) }

func setSlot(ec *lang.ExecutionContext, name string, v any) {
	switch name {
	case "me":
		ec.Me = v
	case "you":
		ec.You = v
	case "it":
		ec.It = v
	case "result":
		ec.Result = v
	case "event":
		ec.Event = v
	}
}

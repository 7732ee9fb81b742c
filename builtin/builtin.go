package builtin

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// Implementation categories.
const (
	CategoryReference  = lang.CategoryReference
	CategoryComparison = "comparison"
	CategoryArithmetic = "arithmetic"
	CategoryLogical    = "logical"
	CategoryProperty   = lang.CategoryProperty
	CategoryConversion = "conversion"
	CategoryCommand    = "command"
)

// Categories returns every category name in lexical order.
func Categories() []string {
	return []string{
		CategoryArithmetic,
		CategoryCommand,
		CategoryComparison,
		CategoryConversion,
		CategoryLogical,
		CategoryProperty,
		CategoryReference,
	}
}

// entry describes one stock implementation. Commands close over the
// configured logger, so every entry is constructed from options.
type entry struct {
	name     string
	category string
	make     func(options) lang.Implementation
}

func (e entry) build(o options) lang.Implementation { return e.make(o) }

// stock returns an entry for a function-backed implementation that does not
// depend on options.
func stock(name, category string, eval lang.EvaluateFunc, validate lang.ValidateFunc) entry {
	return entry{
		name:     name,
		category: category,
		make: func(options) lang.Implementation {
			return lang.NewExpr(name, category, eval, validate)
		},
	}
}

func attrCount(n int) slog.Attr { return slog.Int("count", n) }

//nolint:gochecknoglobals
var (
	tableOnce sync.Once
	table     []entry
)

// entries returns the process-wide table of stock implementations sorted by
// name. The table is built once and must not be modified.
func entries() []entry {
	tableOnce.Do(func() {
		table = slices.Concat(
			references(),
			comparisons(),
			arithmetic(),
			logical(),
			properties(),
			conversions(),
			commands(),
		)

		sort.SliceStable(table, func(i, j int) bool { return table[i].name < table[j].name })
	})

	return table
}

// selected returns the entries in the configured categories.
func selected(o options) []entry {
	var out []entry

	for _, e := range entries() {
		if o.includes(e.category) {
			out = append(out, e)
		}
	}

	return out
}

// Names returns the names of the selected implementations in lexical order.
func Names(opts ...Option) []string {
	o := makeOptions(opts...)

	var names []string

	for _, e := range selected(o) {
		names = append(names, e.name)
	}

	return names
}

// Implementations constructs the selected implementations.
func Implementations(opts ...Option) []lang.Implementation {
	o := makeOptions(opts...)

	var impls []lang.Implementation

	for _, e := range selected(o) {
		impls = append(impls, e.build(o))
	}

	return impls
}

// Register installs the selected implementations into reg, replacing any
// entries of the same name, and reports how many were installed.
func Register(reg *lang.Registry, opts ...Option) int {
	if reg == nil {
		return 0
	}

	impls := Implementations(opts...)
	reg.Register(impls...)

	o := makeOptions(opts...)
	o.logger.Debug("register builtins", attrCount(len(impls)))

	return len(impls)
}

// Define declares the selected implementations on lazy. Each is constructed
// the first time it is requested. It reports how many were declared.
func Define(lazy *lang.LazyRegistry[lang.Implementation], opts ...Option) int {
	if lazy == nil {
		return 0
	}

	o := makeOptions(opts...)
	list := selected(o)

	for _, e := range list {
		lazy.Define(e.name, e.category, func(context.Context) (lang.Implementation, error) {
			return e.build(o), nil
		})
	}

	o.logger.Debug("define builtins", attrCount(len(list)))

	return len(list)
}

// DefineCommands declares the selected command implementations on cmds.
// Entries outside the command category are ignored.
func DefineCommands(cmds *lang.Commands, opts ...Option) int {
	if cmds == nil {
		return 0
	}

	o := makeOptions(opts...)

	n := 0

	for _, e := range selected(o) {
		if e.category != CategoryCommand {
			continue
		}

		cmds.Define(e.name, e.category, func(context.Context) (lang.Implementation, error) {
			return e.build(o), nil
		})

		n++
	}

	return n
}

// Option configures which implementations are selected and how they are
// constructed.
type Option func(options) options

type options struct {
	categories []string
	logger     log.Logger
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		if opt != nil {
			o = opt(o)
		}
	}

	return o
}

func (o options) includes(category string) bool {
	return len(o.categories) == 0 || slices.Contains(o.categories, category)
}

// WithCategories restricts selection to the named categories. With no
// categories, every implementation is selected.
func WithCategories(categories ...string) Option {
	return func(o options) options {
		o.categories = append(slices.Clip(o.categories), categories...)

		return o
	}
}

// WithLogger sets the logger used by the log command and for registration
// diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

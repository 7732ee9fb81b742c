package lang

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ardnew/hypereval/log"
)

// Parser turns DSL source text into a syntax tree. The runtime never parses
// on its own; a parser is only consulted by the template interpolator when
// one is configured.
type Parser interface {
	Parse(src string) (Node, error)
}

// ParserFunc adapts an ordinary function to [Parser].
type ParserFunc func(src string) (Node, error)

// Parse implements [Parser].
func (f ParserFunc) Parse(src string) (Node, error) { return f(src) }

// Runtime evaluates syntax trees. It owns the registry and the process
// lifetime tiers (globals and variables) shared by the contexts it creates.
// Independent runtimes share nothing.
type Runtime struct {
	id        string
	registry  *Registry
	host      Host
	parser    Parser
	logger    log.Logger
	globals   *Store
	variables *Store
}

// Option configures a [Runtime].
type Option func(*Runtime)

// WithRegistry sets the registry consulted for operators, references and
// functions.
func WithRegistry(reg *Registry) Option {
	return func(r *Runtime) { r.registry = reg }
}

// WithHost sets the host environment.
func WithHost(host Host) Option {
	return func(r *Runtime) { r.host = host }
}

// WithParser sets the parser used to evaluate template markers as full DSL
// expressions.
func WithParser(p Parser) Option {
	return func(r *Runtime) { r.parser = p }
}

// WithLogger sets the logger used for trace records.
func WithLogger(logger log.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithLoader installs lazy as the registry's on-demand provider.
func WithLoader(lazy *LazyRegistry[Implementation]) Option {
	return func(r *Runtime) {
		if r.registry == nil {
			r.registry = NewRegistry(nil)
		}

		r.registry.SetProvider(lazy)
	}
}

// WithGlobals seeds the globals tier.
func WithGlobals(m map[string]any) Option {
	return func(r *Runtime) {
		for k, v := range m {
			r.globals.Set(k, Normalize(v))
		}
	}
}

// NewRuntime returns a runtime configured by opts. Without [WithHost] the
// runtime has no document and only the default host globals.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		id:        uuid.NewString(),
		globals:   NewStore(),
		variables: NewStore(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		r.registry = NewRegistry(nil)
	}

	if _, ok := r.host.(GlobalsHost); !ok {
		r.host = GlobalsHost{Host: r.host}
	}

	r.logger = r.logger.With(slog.String("runtime", r.id))

	return r
}

func (r *Runtime) ID() string          { return r.id }
func (r *Runtime) Registry() *Registry { return r.registry }
func (r *Runtime) Host() Host          { return r.host }
func (r *Runtime) Logger() log.Logger  { return r.logger }
func (r *Runtime) Globals() *Store     { return r.globals }
func (r *Runtime) Variables() *Store   { return r.variables }

// Parser returns the configured parser, if any.
func (r *Runtime) Parser() (Parser, bool) { return r.parser, r.parser != nil }

// NewContext returns a context bound to this runtime's shared tiers and host
// with fresh locals.
func (r *Runtime) NewContext() *ExecutionContext {
	return &ExecutionContext{
		Locals:    NewLocals(),
		Globals:   r.globals,
		Variables: r.variables,
		Host:      r.host,
	}
}

// bind fills the shared tiers of a caller-built context.
func (r *Runtime) bind(ec *ExecutionContext) *ExecutionContext {
	if ec == nil {
		return r.NewContext()
	}

	if ec.Locals == nil {
		ec.Locals = NewLocals()
	}

	if ec.Globals == nil {
		ec.Globals = r.globals
	}

	if ec.Variables == nil {
		ec.Variables = r.variables
	}

	if ec.Host == nil {
		ec.Host = r.host
	}

	return ec
}

// Run evaluates node in ec. A nil ec is replaced by a fresh context.
func (r *Runtime) Run(ctx context.Context, node Node, ec *ExecutionContext) (any, error) {
	ec = r.bind(ec)

	v, err := r.Evaluate(ctx, node, ec)
	if err != nil {
		r.logger.DebugContext(ctx, "evaluation failed", slog.Any("error", err))

		return nil, err
	}

	return v, nil
}

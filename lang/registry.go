package lang

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Implementation categories used by the evaluator.
const (
	// CategoryReference marks implementations that an identifier may invoke
	// with no arguments (me, you, it, result).
	CategoryReference = "reference"

	// CategoryProperty marks the possessive implementation.
	CategoryProperty = "property"
)

// PossessiveName is the registry name consulted for non-computed member
// access and possessive expressions.
const PossessiveName = "possessive"

// Implementation is a named, categorized unit the evaluator dispatches
// operators, references and functions to.
type Implementation interface {
	Name() string
	Category() string
	Evaluate(ctx context.Context, ec *ExecutionContext, args ...any) (any, error)
	Validate(args []any) error
}

// EvaluateFunc is the body of an [Expression].
type EvaluateFunc func(
	ctx context.Context,
	ec *ExecutionContext,
	args ...any,
) (any, error)

// ValidateFunc checks the arguments of an [Expression].
type ValidateFunc func(args []any) error

// Expression is a function-backed [Implementation].
type Expression struct {
	name     string
	category string
	eval     EvaluateFunc
	validate ValidateFunc
}

// NewExpr returns an implementation named name. validate may be nil.
func NewExpr(
	name, category string,
	eval EvaluateFunc,
	validate ValidateFunc,
) *Expression {
	return &Expression{
		name:     name,
		category: category,
		eval:     eval,
		validate: validate,
	}
}

func (e *Expression) Name() string     { return e.name }
func (e *Expression) Category() string { return e.category }

// Evaluate implements [Implementation].
func (e *Expression) Evaluate(
	ctx context.Context,
	ec *ExecutionContext,
	args ...any,
) (any, error) {
	return e.eval(ctx, ec, args...)
}

// Validate implements [Implementation].
func (e *Expression) Validate(args []any) error {
	if e.validate == nil {
		return nil
	}

	return e.validate(args)
}

// Arity returns a validator that requires between minArgs and maxArgs
// arguments. A negative maxArgs means unbounded.
func Arity(minArgs, maxArgs int) ValidateFunc {
	return func(args []any) error {
		if len(args) < minArgs || (maxArgs >= 0 && len(args) > maxArgs) {
			return ErrInvalidArguments.With(
				slog.Int("got", len(args)),
				slog.Int("min", minArgs),
				slog.Int("max", maxArgs),
			)
		}

		return nil
	}
}

// Provider supplies implementations on demand. [LazyRegistry] satisfies it.
type Provider interface {
	Has(name string) bool
	Get(ctx context.Context, name string) (Implementation, error)
}

// CategoryProvider is a [Provider] that knows the category of a name
// without loading it.
type CategoryProvider interface {
	Provider
	Category(name string) (string, bool)
}

// Registry maps names to implementations. Registering a name twice keeps
// the later implementation, which is how enhanced implementations are
// layered over base ones. Registration order is therefore significant.
type Registry struct {
	entries cmap.ConcurrentMap[string, Implementation]
	lazy    Provider
}

// NewRegistry returns an empty registry that consults lazy, if non-nil, for
// names not registered eagerly.
func NewRegistry(lazy Provider) *Registry {
	return &Registry{
		entries: cmap.New[Implementation](),
		lazy:    lazy,
	}
}

// Register adds impls under their own names, replacing earlier entries.
func (r *Registry) Register(impls ...Implementation) {
	for _, impl := range impls {
		r.entries.Set(impl.Name(), impl)
	}
}

// RegisterAs adds impl under name regardless of impl.Name().
func (r *Registry) RegisterAs(name string, impl Implementation) {
	r.entries.Set(name, impl)
}

// Unregister removes name.
func (r *Registry) Unregister(name string) {
	r.entries.Remove(name)
}

// Get returns the eagerly registered implementation for name.
func (r *Registry) Get(name string) (Implementation, bool) {
	if r == nil {
		return nil, false
	}

	return r.entries.Get(name)
}

// Has reports whether name is registered eagerly or can be loaded, without
// loading it.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}

	if r.entries.Has(name) {
		return true
	}

	return r.lazy != nil && r.lazy.Has(name)
}

// Lookup returns the implementation for name, loading it through the lazy
// provider when it is not registered eagerly. A loaded implementation is
// registered so later lookups do not reach the provider. ok is false when
// the name is unknown; err reports a failed load.
func (r *Registry) Lookup(
	ctx context.Context,
	name string,
) (impl Implementation, ok bool, err error) {
	if r == nil {
		return nil, false, nil
	}

	if impl, ok = r.entries.Get(name); ok {
		return impl, true, nil
	}

	if r.lazy == nil || !r.lazy.Has(name) {
		return nil, false, nil
	}

	impl, err = r.lazy.Get(ctx, name)
	if err != nil {
		return nil, false, err
	}

	r.entries.SetIfAbsent(name, impl)

	return impl, true, nil
}

// LookupCategory is [Registry.Lookup] restricted to implementations of the
// given category. A lazy entry is loaded only when its provider is a
// [CategoryProvider] reporting that category, or cannot report any.
func (r *Registry) LookupCategory(
	ctx context.Context,
	name, category string,
) (impl Implementation, ok bool, err error) {
	if r == nil {
		return nil, false, nil
	}

	if impl, ok = r.entries.Get(name); ok {
		return impl, impl.Category() == category, nil
	}

	if cp, known := r.lazy.(CategoryProvider); known {
		if c, defined := cp.Category(name); !defined || c != category {
			return nil, false, nil
		}
	}

	impl, ok, err = r.Lookup(ctx, name)
	if !ok || err != nil {
		return nil, false, err
	}

	return impl, impl.Category() == category, nil
}

// Names returns every eagerly registered name in lexical order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}

	names := r.entries.Keys()
	sort.Strings(names)

	return names
}

// ByCategory groups the eagerly registered names by category.
func (r *Registry) ByCategory() map[string][]string {
	out := map[string][]string{}

	if r == nil {
		return out
	}

	for _, name := range r.Names() {
		impl, ok := r.entries.Get(name)
		if !ok {
			continue
		}

		out[impl.Category()] = append(out[impl.Category()], name)
	}

	return out
}

// SetProvider replaces the lazy provider.
func (r *Registry) SetProvider(lazy Provider) { r.lazy = lazy }

// Provider returns the lazy provider, or nil.
func (r *Registry) Provider() Provider {
	if r == nil {
		return nil
	}

	return r.lazy
}

// AllNames returns the eagerly registered names and, when the provider can
// enumerate them, the names it can load, in lexical order without
// duplicates.
func (r *Registry) AllNames() []string {
	names := r.Names()

	if en, ok := r.Provider().(interface{ Keys() []string }); ok {
		names = append(names, en.Keys()...)
		sort.Strings(names)
		names = slices.Compact(names)
	}

	return names
}

// invoke validates args and evaluates impl.
func invoke(
	ctx context.Context,
	ec *ExecutionContext,
	impl Implementation,
	args ...any,
) (any, error) {
	err := impl.Validate(args)
	if err != nil {
		if errors.Is(err, ErrInvalidArguments) {
			return nil, WrapError(err).With(attrName(impl.Name()))
		}

		return nil, ErrInvalidArguments.Wrap(err).With(attrName(impl.Name()))
	}

	return impl.Evaluate(ctx, ec, args...)
}

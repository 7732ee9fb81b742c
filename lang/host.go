package lang

import "context"

// Host is the environment the DSL runs against. The runtime only calls into
// it; how the host stores or renders anything is not its concern.
type Host interface {
	// Query returns every value matching selector, in document order.
	Query(ctx context.Context, selector string) ([]any, error)

	// Global looks up a host-environment global by name.
	Global(name string) (any, bool)
}

// ScopedQuerier is implemented by hosts that can restrict a selector query
// to the descendants of root.
type ScopedQuerier interface {
	QueryWithin(ctx context.Context, root any, selector string) ([]any, error)
}

// Matcher is implemented by hosts that can test a value against a pattern.
// ok is false when the host has no opinion about v.
type Matcher interface {
	Matches(v any, pattern string) (matched, ok bool, err error)
}

// PropertyResolver is implemented by hosts that expose properties of values
// they own.
type PropertyResolver interface {
	Property(v any, name string) (any, bool)
}

// nullHost is the host used when none is configured: no document, no
// globals.
type nullHost struct{}

func (nullHost) Query(context.Context, string) ([]any, error) { return []any{}, nil }

func (nullHost) Global(string) (any, bool) { return nil, false }

// GlobalsHost wraps a host so that [DefaultGlobals] are visible behind the
// host's own globals.
type GlobalsHost struct {
	Host
}

// Global implements [Host].
func (h GlobalsHost) Global(name string) (any, bool) {
	if h.Host != nil {
		if v, ok := h.Host.Global(name); ok {
			return v, true
		}
	}

	v, ok := builtinGlobals()[name]

	return v, ok
}

// Unwrap returns the wrapped host.
func (h GlobalsHost) Unwrap() Host { return h.Host }

// Query implements [Host].
func (h GlobalsHost) Query(ctx context.Context, selector string) ([]any, error) {
	if h.Host == nil {
		return []any{}, nil
	}

	return h.Host.Query(ctx, selector)
}

// hostAs returns h, or the first host it wraps, as a T.
func hostAs[T any](h Host) (T, bool) {
	for h != nil {
		if t, ok := h.(T); ok {
			return t, true
		}

		u, ok := h.(interface{ Unwrap() Host })
		if !ok {
			break
		}

		h = u.Unwrap()
	}

	var zero T

	return zero, false
}

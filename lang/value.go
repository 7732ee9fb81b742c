package lang

import "context"

// absent is the type of [Absent].
type absent struct{}

func (absent) String() string { return "undefined" }

// Absent is the value of an unresolved identifier or missing property.
// It is distinct from nil, which represents an explicit null.
var Absent any = absent{}

// IsAbsent reports whether v is [Absent].
func IsAbsent(v any) bool {
	_, ok := v.(absent)

	return ok
}

// IsNullish reports whether v is nil or [Absent].
func IsNullish(v any) bool {
	return v == nil || IsAbsent(v)
}

// Callable is a function value invocable from the DSL.
// The receiver is nil for plain calls.
type Callable interface {
	Call(ctx context.Context, this any, args []any) (any, error)
}

// Func adapts an ordinary Go function to [Callable].
type Func func(ctx context.Context, this any, args []any) (any, error)

// Call implements [Callable].
func (f Func) Call(ctx context.Context, this any, args []any) (any, error) {
	return f(ctx, this, args)
}

// Constructor is a value usable as the target of a constructor call.
type Constructor interface {
	New(ctx context.Context, args []any) (any, error)
}

// ConstructorFunc adapts an ordinary Go function to [Constructor].
type ConstructorFunc func(ctx context.Context, args []any) (any, error)

// New implements [Constructor].
func (f ConstructorFunc) New(ctx context.Context, args []any) (any, error) {
	return f(ctx, args)
}

// TypeNamer is implemented by host values that report a runtime type name
// for the custom branch of "is a" checks.
type TypeNamer interface {
	TypeName() string
}

// Lengther is implemented by host collection types so that "no" and "some"
// can test them for emptiness.
type Lengther interface {
	Len() int
}

// PropertyReader is implemented by host values that expose named
// properties. The boolean result reports whether the property exists.
type PropertyReader interface {
	Property(name string) (any, bool)
}

// MethodProvider is implemented by host values that expose methods.
type MethodProvider interface {
	Method(name string) (Callable, bool)
}

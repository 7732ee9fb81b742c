package lang

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ardnew/hypereval/log"
)

func evalNode(t *testing.T, rt *Runtime, node Node, ec *ExecutionContext) any {
	t.Helper()

	v, err := rt.Run(t.Context(), node, ec)
	if err != nil {
		t.Fatalf("evaluate error: %v", err)
	}

	return v
}

func TestEvaluate_RegistryOverridesOperator(t *testing.T) {
	expr := Binary(">", Lit(5), Lit(3))

	if v := evalNode(t, NewRuntime(), expr, nil); v != true {
		t.Fatalf("expected builtin 5 > 3 to be true, got %v", v)
	}

	reg := NewRegistry(nil)
	reg.Register(NewExpr(OpGreaterThan, "comparison",
		func(context.Context, *ExecutionContext, ...any) (any, error) {
			return false, nil
		}, nil))

	if v := evalNode(t, NewRuntime(WithRegistry(reg)), expr, nil); v != false {
		t.Errorf("expected overridden 5 > 3 to be false, got %v", v)
	}
}

func TestEvaluate_OverwriteLastWins(t *testing.T) {
	reg := NewRegistry(nil)

	for _, want := range []string{"first", "second"} {
		reg.Register(NewExpr(OpAddition, "arithmetic",
			func(context.Context, *ExecutionContext, ...any) (any, error) {
				return want, nil
			}, nil))
	}

	v := evalNode(t, NewRuntime(WithRegistry(reg)), Binary("+", Lit(1), Lit(2)), nil)
	if v != "second" {
		t.Errorf("expected later registration to win, got %v", v)
	}
}

func TestEvaluate_Addition(t *testing.T) {
	rt := NewRuntime()

	tests := []struct {
		name string
		node Node
		want any
	}{
		{"string and number", Binary("+", Lit("a"), Lit(1)), "a1"},
		{"number and string", Binary("+", Lit(1), Lit("a")), "1a"},
		{"numbers", Binary("+", Lit(2), Lit(3)), float64(5)},
		{"numeric strings", Binary("+", Lit("2"), Lit("3")), "23"},
		{"boolean and number", Binary("+", Lit(true), Lit(1)), float64(2)},
		{"fraction", Binary("+", Lit(0.5), Lit(0.25)), 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalNode(t, rt, tt.node, nil); v != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, v, v)
			}
		})
	}
}

func TestEvaluate_Operators(t *testing.T) {
	rt := NewRuntime()

	tests := []struct {
		name string
		node Node
		want any
	}{
		{"subtraction", Binary("-", Lit(10), Lit(4)), float64(6)},
		{"multiplication", Binary("*", Lit(3), Lit(4)), float64(12)},
		{"division", Binary("/", Lit(9), Lit(2)), 4.5},
		{"modulo", Binary("%", Lit(10), Lit(3)), float64(1)},
		{"mod word", Binary("mod", Lit(10), Lit(4)), float64(2)},
		{"loose equal", Binary("==", Lit("1"), Lit(1)), true},
		{"is", Binary("is", Lit("1"), Lit(1)), true},
		{"strict equal", Binary("===", Lit("1"), Lit(1)), false},
		{"really equal", Binary("is really equal to", Lit(1), Lit(1)), true},
		{"is not", Binary("is not", Lit(1), Lit(2)), true},
		{"null is undefined", Binary("==", Lit(nil), Ident("missing")), true},
		{"null not strictly undefined", Binary("===", Lit(nil), Ident("missing")), false},
		{"less than", Binary("<", Lit(1), Lit(2)), true},
		{"is less than", Binary("is less than", Lit(3), Lit(2)), false},
		{"greater or equal", Binary(">=", Lit(2), Lit(2)), true},
		{"string compare", Binary("<", Lit("a"), Lit("b")), true},
		{"NaN compare", Binary(">", Lit("x"), Lit(1)), false},
		{"and", Binary("and", Lit(1), Lit("yes")), "yes"},
		{"and short value", Binary("and", Lit(0), Lit("yes")), float64(0)},
		{"or", Binary("or", Ident("missing"), Lit("default")), "default"},
		{"contains", Binary("contains", Array(Lit(1), Lit(2)), Lit(2)), true},
		{"string contains", Binary("contains", Lit("hello"), Lit("ell")), true},
		{"is in", Binary("is in", Lit("b"), Array(Lit("a"), Lit("b"))), true},
		{"is not in", Binary("is not in", Lit("c"), Array(Lit("a"))), true},
		{"in", Binary("in", Lit("k"), Object(Prop("k", Lit(1)))), true},
		{"matches", Binary("matches", Lit("abc123"), Lit(`^[a-z]+\d+$`)), true},
		{"does not match", Binary("does not match", Lit("abc"), Lit(`\d`)), true},
		{"is a string", Binary("is a", Lit("s"), Ident("String")), true},
		{"is a number", Binary("is a", Lit(1), Ident("number")), true},
		{"is an array", Binary("is an", Array(), Ident("Array")), true},
		{"is a null", Binary("is a", Lit(nil), Ident("null")), true},
		{"is an undefined", Binary("is an", Ident("missing"), Ident("undefined")), true},
		{"is not a boolean", Binary("is not a", Lit("true"), Ident("boolean")), true},
		{"is a function", Binary("is a", Ident("parseInt"), Ident("function")), true},
		{"as Int", Binary("as", Lit("42.9"), Ident("Int")), float64(42)},
		{"as String", Binary("as", Lit(7), Ident("String")), "7"},
		{"as JSON", Binary("as", Array(Lit(1), Lit("a")), Ident("JSON")), `[1,"a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalNode(t, rt, tt.node, nil); v != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, v, v)
			}
		})
	}
}

type widget struct{ Label string }

func TestEvaluate_IsACustomType(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()
	ec.Locals.Set("w", &widget{Label: "ok"})

	if v := evalNode(t, rt, Binary("is a", Ident("w"), Ident("widget")), ec); v != true {
		t.Errorf("expected w to be a widget, got %v", v)
	}

	if v := evalNode(t, rt, Binary("is a", Ident("w"), Ident("gadget")), ec); v != false {
		t.Errorf("expected w not to be a gadget, got %v", v)
	}

	if v := evalNode(t, rt, Possess(Ident("w"), "label"), ec); v != "ok" {
		t.Errorf("expected struct field read, got %v", v)
	}
}

func TestEvaluate_Unary(t *testing.T) {
	rt := NewRuntime()

	tests := []struct {
		name string
		node Node
		want any
	}{
		{"not", Unary("not", Lit(0)), true},
		{"bang", Unary("!", Lit("x")), false},
		{"no empty array", Unary("no", Array()), true},
		{"no empty string", Unary("no", Lit("")), true},
		{"no missing", Unary("no", Ident("missing")), true},
		{"some array", Unary("some", Array(Lit(1))), true},
		{"some empty object", Unary("some", Object()), false},
		{"exists null", Unary("exists", Lit(nil)), false},
		{"exists zero", Unary("exists", Lit(0)), true},
		{"does not exist", Unary("does not exist", Ident("missing")), true},
		{"negate", Unary("-", Lit("4")), float64(-4)},
		{"positive", Unary("+", Lit("4")), float64(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalNode(t, rt, tt.node, nil); v != tt.want {
				t.Errorf("expected %v, got %v", tt.want, v)
			}
		})
	}
}

func TestEvaluate_ScopeOrder(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()
	ec.Locals.Set("x", float64(1))
	ec.Globals.Set("x", float64(2))

	if v := evalNode(t, rt, Ident("x"), ec); v != float64(1) {
		t.Errorf("expected local x = 1, got %v", v)
	}

	if v := evalNode(t, rt, ScopedIdent("x", ScopeGlobal), ec); v != float64(2) {
		t.Errorf("expected global x = 2, got %v", v)
	}

	if v := evalNode(t, rt, ScopedIdent("y", ScopeLocal), ec); !IsAbsent(v) {
		t.Errorf("expected local-tagged miss to be absent, got %v", v)
	}
}

func TestEvaluate_UnresolvedIdentifierIsAbsent(t *testing.T) {
	v, err := NewRuntime().Run(t.Context(), Ident("doesNotExist"), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !IsAbsent(v) {
		t.Errorf("expected absent, got %v (%T)", v, v)
	}

	v = evalNode(t, NewRuntime(), Member(Ident("doesNotExist"), "deep"), nil)
	if !IsAbsent(v) {
		t.Errorf("expected member of absent to be absent, got %v", v)
	}
}

func TestEvaluate_AssignmentRoundTrip(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()

	if v := evalNode(t, rt, Assign("variableName", Lit(42)), ec); v != float64(42) {
		t.Fatalf("expected assignment to yield 42, got %v", v)
	}

	if v := evalNode(t, rt, Ident("variableName"), ec); v != float64(42) {
		t.Errorf("expected variableName = 42, got %v", v)
	}

	if !rt.Variables().Has("variableName") {
		t.Error("expected assignment to write the variables tier")
	}

	// A fresh context of the same runtime shares variables.
	if v := evalNode(t, rt, Ident("variableName"), rt.NewContext()); v != float64(42) {
		t.Errorf("expected shared variable, got %v", v)
	}
}

func TestEvaluate_AssignmentSlots(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()

	evalNode(t, rt, Assign("result", Lit("r")), ec)
	evalNode(t, rt, Assign("it", Lit("i")), ec)
	evalNode(t, rt, Assign("you", Lit("y")), ec)
	evalNode(t, rt, Binary("=", ScopedIdent("l", ScopeLocal), Lit(1)), ec)
	evalNode(t, rt, Binary("=", ScopedIdent("g", ScopeGlobal), Lit(2)), ec)

	if ec.Result != "r" || ec.It != "i" || ec.You != "y" {
		t.Errorf("expected slots r/i/y, got %v/%v/%v", ec.Result, ec.It, ec.You)
	}

	if rt.Variables().Len() != 0 {
		t.Errorf("expected no variables, got %v", rt.Variables().Keys())
	}

	if v, _ := ec.Locals.Get("l"); v != float64(1) {
		t.Errorf("expected local l = 1, got %v", v)
	}

	if v, _ := rt.Globals().Get("g"); v != float64(2) {
		t.Errorf("expected global g = 2, got %v", v)
	}

	if v := evalNode(t, rt, Ident("it"), ec); v != "i" {
		t.Errorf("expected it = i, got %v", v)
	}
}

func TestEvaluate_AssignmentRequiresIdentifier(t *testing.T) {
	_, err := NewRuntime().Run(t.Context(), Binary("=", Lit(1), Lit(2)), nil)
	if !errors.Is(err, ErrInvalidAssignment) {
		t.Errorf("expected ErrInvalidAssignment, got %v", err)
	}
}

func TestEvaluate_ReferenceImplementation(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(
		NewExpr("me", CategoryReference,
			func(_ context.Context, ec *ExecutionContext, _ ...any) (any, error) {
				return "element:" + ToString(ec.Me), nil
			}, nil),
		NewExpr("total", "arithmetic",
			func(context.Context, *ExecutionContext, ...any) (any, error) {
				return "called", nil
			}, nil),
	)

	rt := NewRuntime(WithRegistry(reg))
	ec := rt.NewContext()
	ec.Me = "button"
	ec.Locals.Set("total", float64(3))

	if v := evalNode(t, rt, Ident("me"), ec); v != "element:button" {
		t.Errorf("expected reference implementation, got %v", v)
	}

	if v := evalNode(t, rt, Ident("total"), ec); v != float64(3) {
		t.Errorf("expected non-reference implementation not to shadow, got %v", v)
	}

	if v := evalNode(t, rt, Call(Ident("total")), ec); v != "called" {
		t.Errorf("expected call to reach the registry, got %v", v)
	}
}

func TestEvaluate_PossessiveImplementation(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewExpr(PossessiveName, CategoryProperty,
		func(_ context.Context, _ *ExecutionContext, args ...any) (any, error) {
			return "P:" + ToString(args[1]), nil
		}, Arity(2, 2)))

	rt := NewRuntime(WithRegistry(reg))

	tests := []struct {
		name string
		node Node
		want any
	}{
		{"member", Member(Object(), "foo"), "P:foo"},
		{"possessive", Possess(Object(), "bar"), "P:bar"},
		{"computed bypasses", Index(Object(Prop("k", Lit(1))), Lit("k")), float64(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalNode(t, rt, tt.node, nil); v != tt.want {
				t.Errorf("expected %v, got %v", tt.want, v)
			}
		})
	}
}

func TestEvaluate_Members(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()
	ec.Locals.Set("user", map[string]any{
		"name": "ada",
		"tags": []any{"x", "y"},
	})
	ec.Locals.Set("rows", []any{
		map[string]any{"id": float64(1)},
		map[string]any{"id": float64(2)},
		map[string]any{},
	})

	tests := []struct {
		name string
		node Node
		want any
	}{
		{"dot", Member(Ident("user"), "name"), "ada"},
		{"possessive", Possess(Ident("user"), "name"), "ada"},
		{"index", Index(Member(Ident("user"), "tags"), Lit(1)), "y"},
		{"out of range", Index(Member(Ident("user"), "tags"), Lit(5)), Absent},
		{"length", Member(Member(Ident("user"), "tags"), "length"), float64(2)},
		{"string length", Member(Lit("héllo"), "length"), float64(5)},
		{"string index", Index(Lit("héllo"), Lit(1)), "é"},
		{"missing", Member(Ident("user"), "age"), Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalNode(t, rt, tt.node, ec); v != tt.want {
				t.Errorf("expected %v, got %v", tt.want, v)
			}
		})
	}

	ids, ok := evalNode(t, rt, Member(Ident("rows"), "id"), ec).([]any)
	if !ok || len(ids) != 2 || ids[0] != float64(1) || ids[1] != float64(2) {
		t.Errorf("expected property mapped over array, got %v", ids)
	}
}

func TestEvaluate_Calls(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()
	ec.Locals.Set("one", []any{"abc"})
	ec.Globals.Set("double", Func(
		func(_ context.Context, _ any, args []any) (any, error) {
			return ToNumber(args[0]) * 2, nil
		}))

	tests := []struct {
		name string
		node Node
		want any
	}{
		{"global function", Call(Ident("double"), Lit(21)), float64(42)},
		{"host global", Call(Ident("parseInt"), Lit("42px")), float64(42)},
		{"object method", Call(Member(Ident("Math"), "floor"), Lit(2.7)), float64(2)},
		{"string method", Call(Member(Lit("abc"), "toUpperCase")), "ABC"},
		{"unwrapped receiver", Call(Member(Ident("one"), "toUpperCase")), "ABC"},
		{"array method", Call(Member(Array(Lit("a"), Lit("b")), "join"), Lit("-")), "a-b"},
		{"array method after unwrap", Call(Member(Ident("one"), "join")), "abc"},
		{"possessive callee", Call(Possess(Lit(" x "), "trim")), "x"},
		{"computed method", Call(Index(Lit("ab"), Lit("toUpperCase"))), "AB"},
		{"new", New("String", Lit(12)), "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalNode(t, rt, tt.node, ec); v != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, v, v)
			}
		})
	}
}

func TestEvaluate_ArgumentsInSourceOrder(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()

	v := evalNode(t, rt, Array(
		Assign("n", Lit(1)),
		Assign("n", Binary("+", Ident("n"), Lit(1))),
		Binary("*", Ident("n"), Lit(10)),
	), ec)

	got, ok := v.([]any)
	if !ok || len(got) != 3 {
		t.Fatalf("expected 3 elements, got %v", v)
	}

	want := []any{float64(1), float64(2), float64(20)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEvaluate_Literals(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()
	ec.Locals.Set("key", "shadowed")
	ec.Locals.Set("n", float64(2))

	obj, ok := evalNode(t, rt, Object(
		Prop("key", Ident("n")),
		Property{Key: Lit(3), Value: Lit("three")},
	), ec).(map[string]any)
	if !ok {
		t.Fatal("expected object")
	}

	if obj["key"] != float64(2) || obj["3"] != "three" {
		t.Errorf("expected keys as written, got %v", obj)
	}

	if _, ok := obj["shadowed"]; ok {
		t.Error("expected key position not to be resolved")
	}

	if v := evalNode(t, rt, Lit("n is ${n}"), ec); v != "n is 2" {
		t.Errorf("expected interpolated string literal, got %v", v)
	}

	if v := evalNode(t, rt, Lit("plain $n"), ec); v != "plain $n" {
		t.Errorf("expected verbatim string literal, got %v", v)
	}

	if v := evalNode(t, rt, Tmpl("${n * 2}"), ec); v != "4" {
		t.Errorf("expected template literal, got %v", v)
	}
}

func TestEvaluate_Conditional(t *testing.T) {
	rt := NewRuntime()

	// The untaken branch would fail if evaluated.
	bad := Call(Ident("noSuchFunction"))

	if v := evalNode(t, rt, Cond(Lit(true), Lit("a"), bad), nil); v != "a" {
		t.Errorf("expected consequent, got %v", v)
	}

	if v := evalNode(t, rt, Cond(Lit(""), bad, Lit("b")), nil); v != "b" {
		t.Errorf("expected alternate, got %v", v)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	rt := NewRuntime()

	tests := []struct {
		name string
		node Node
		want error
	}{
		{"unknown binary operator", Binary("<=>", Lit(1), Lit(2)), ErrUnsupportedOperator},
		{"unknown unary operator", Unary("~", Lit(1)), ErrUnsupportedOperator},
		{"unknown function", Call(Ident("nope")), ErrUnknownFunction},
		{"unknown constructor", New("Nope"), ErrUnknownConstructor},
		{"not callable", Call(Ident("NaN")), ErrNotCallable},
		{"no method", Call(Member(Lit(1), "explode")), ErrNotCallable},
		{"unknown conversion", Binary("as", Lit(1), Ident("Widget")), ErrUnsupportedOperator},
		{"bad pattern", Binary("matches", Lit("a"), Lit("(")), ErrInvalidArguments},
		{"error in child", Array(Lit(1), Call(Ident("nope"))), ErrUnknownFunction},
		{"nil node", nil, ErrMalformedNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := rt.Run(t.Context(), tt.node, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if v != nil {
				t.Errorf("expected no partial result, got %v", v)
			}
		})
	}
}

func TestEvaluate_ValidationFailure(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewExpr("pair", "function",
		func(context.Context, *ExecutionContext, ...any) (any, error) {
			return nil, nil
		}, Arity(2, 2)))

	_, err := NewRuntime(WithRegistry(reg)).Run(t.Context(), Call(Ident("pair"), Lit(1)), nil)
	if !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestEvaluate_IndependentRuntimes(t *testing.T) {
	a, b := NewRuntime(), NewRuntime()

	evalNode(t, a, Assign("shared", Lit(1)), nil)

	if v := evalNode(t, b, Ident("shared"), nil); !IsAbsent(v) {
		t.Errorf("expected runtimes not to share variables, got %v", v)
	}

	if a.ID() == b.ID() {
		t.Error("expected distinct runtime ids")
	}
}

func TestEvaluate_AssignmentRoundTripSlotNames(t *testing.T) {
	for _, name := range []string{"I", "my", "your", "yourself", "its", "me", "event"} {
		t.Run(name, func(t *testing.T) {
			rt := NewRuntime()
			ec := rt.NewContext()

			evalNode(t, rt, Assign(name, Lit(42)), ec)

			if v := evalNode(t, rt, Ident(name), ec); v != float64(42) {
				t.Errorf("expected %s = 42, got %v", name, v)
			}
		})
	}
}

func TestEvaluate_IdentifierDoesNotLoadOtherCategories(t *testing.T) {
	var loads atomic.Int64

	lazy := NewLazyRegistry[Implementation](log.Logger{})
	lazy.Define("contains", "comparison", func(context.Context) (Implementation, error) {
		loads.Add(1)

		return nil, errors.New("module missing")
	})
	lazy.Define("here", CategoryReference, func(context.Context) (Implementation, error) {
		loads.Add(1)

		return NewExpr("here", CategoryReference,
			func(context.Context, *ExecutionContext, ...any) (any, error) {
				return "reference", nil
			}, nil), nil
	})

	rt := NewRuntime(WithLoader(lazy))
	ec := rt.NewContext()
	ec.Locals.Set("contains", "a local value")

	if v := evalNode(t, rt, Ident("contains"), ec); v != "a local value" {
		t.Errorf("expected the local value, got %v", v)
	}

	if n := loads.Load(); n != 0 {
		t.Errorf("expected no load for a non-reference entry, got %d", n)
	}

	if v := evalNode(t, rt, Ident("here"), ec); v != "reference" {
		t.Errorf("expected the lazy reference, got %v", v)
	}

	if n := loads.Load(); n != 1 {
		t.Errorf("expected one load, got %d", n)
	}
}

func TestEvaluate_EmptyArrayIdentity(t *testing.T) {
	rt := NewRuntime()
	ec := rt.NewContext()

	if v := evalNode(t, rt, Binary("===", Array(), Array()), ec); v != false {
		t.Errorf("expected distinct empty arrays to differ, got %v", v)
	}

	evalNode(t, rt, Assign("a", Array()), ec)

	if v := evalNode(t, rt, Binary("===", Ident("a"), Ident("a")), ec); v != true {
		t.Errorf("expected an array to equal itself, got %v", v)
	}
}

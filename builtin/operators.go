package builtin

import (
	"context"

	"github.com/ardnew/hypereval/lang"
)

// binary returns an entry applying the evaluator's semantics for the
// canonical binary operator name.
func binary(name, category string) entry {
	return stock(name, category,
		func(ctx context.Context, ec *lang.ExecutionContext, args ...any) (any, error) {
			return lang.ApplyBinary(ctx, ec, name, args[0], args[1])
		},
		lang.Arity(2, 2),
	)
}

// unary returns an entry applying the evaluator's semantics for the
// canonical unary operator name.
func unary(name, category string) entry {
	return stock(name, category,
		func(_ context.Context, _ *lang.ExecutionContext, args ...any) (any, error) {
			return lang.ApplyUnary(name, args[0])
		},
		lang.Arity(1, 1),
	)
}

func comparisons() []entry {
	names := []string{
		lang.OpEquals,
		lang.OpNotEquals,
		lang.OpStrictEquals,
		lang.OpStrictNotEquals,
		lang.OpGreaterThan,
		lang.OpGreaterThanOrEqual,
		lang.OpLessThan,
		lang.OpLessThanOrEqual,
		lang.OpContains,
		lang.OpNotContains,
		lang.OpIn,
		lang.OpIsIn,
		lang.OpIsNotIn,
		lang.OpMatches,
		lang.OpNotMatches,
		lang.OpIsA,
		lang.OpIsNotA,
	}

	out := make([]entry, 0, len(names))
	for _, name := range names {
		out = append(out, binary(name, CategoryComparison))
	}

	return out
}

func arithmetic() []entry {
	return []entry{
		binary(lang.OpAddition, CategoryArithmetic),
		binary(lang.OpSubtraction, CategoryArithmetic),
		binary(lang.OpMultiplication, CategoryArithmetic),
		binary(lang.OpDivision, CategoryArithmetic),
		binary(lang.OpModulo, CategoryArithmetic),
		unary(lang.OpNegate, CategoryArithmetic),
		unary(lang.OpPositive, CategoryArithmetic),
	}
}

func logical() []entry {
	return []entry{
		binary(lang.OpAnd, CategoryLogical),
		binary(lang.OpOr, CategoryLogical),
		unary(lang.OpNot, CategoryLogical),
		unary(lang.OpNo, CategoryLogical),
		unary(lang.OpSome, CategoryLogical),
		unary(lang.OpExists, CategoryLogical),
		unary(lang.OpDoesNotExist, CategoryLogical),
	}
}

// references returns an entry per context slot name, including the
// possessive and pronoun aliases of each slot. Each takes no arguments and
// yields the slot's current value.
func references() []entry {
	slots := []string{
		"me", "I", "my",
		"you", "your", "yourself",
		"it", "its",
		"result", "event",
	}

	out := make([]entry, 0, len(slots))

	for _, slot := range slots {
		out = append(out, stock(slot, CategoryReference,
			func(_ context.Context, ec *lang.ExecutionContext, _ ...any) (any, error) {
				if ec == nil {
					return lang.Absent, nil
				}

				v, _ := ec.Slot(slot)

				return v, nil
			},
			lang.Arity(0, 0),
		))
	}

	return out
}

// properties returns the possessive implementation consulted for member
// access written with a dot or "'s".
func properties() []entry {
	return []entry{
		stock(lang.PossessiveName, CategoryProperty,
			func(_ context.Context, ec *lang.ExecutionContext, args ...any) (any, error) {
				return lang.GetProperty(ec, args[0], lang.ToString(args[1])), nil
			},
			lang.Arity(2, 2),
		),
	}
}

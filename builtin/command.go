package builtin

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/ardnew/hypereval/lang"
)

func commands() []entry {
	return []entry{
		{name: "log", category: CategoryCommand, make: logCommand},
		stock("increment", CategoryCommand, step(1), validateStep),
		stock("decrement", CategoryCommand, step(-1), validateStep),
	}
}

// logCommand writes its arguments, space separated, as an info record and
// yields the last argument.
func logCommand(o options) lang.Implementation {
	logger := o.logger

	return lang.NewExpr("log", CategoryCommand,
		func(ctx context.Context, _ *lang.ExecutionContext, args ...any) (any, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = lang.ToString(a)
			}

			logger.InfoContext(ctx, strings.Join(parts, " "),
				slog.String("command", "log"),
				attrCount(len(args)),
			)

			if len(args) == 0 {
				return lang.Absent, nil
			}

			return args[len(args)-1], nil
		},
		nil,
	)
}

// validateStep accepts a target name and an optional amount.
func validateStep(args []any) error {
	if err := lang.Arity(1, 2)(args); err != nil {
		return err
	}

	if name, ok := args[0].(string); !ok || strings.TrimSpace(name) == "" {
		return lang.ErrInvalidArguments.With(
			slog.String("issue", "target must be a variable name"),
			slog.String("type", lang.TypeOf(args[0])),
		)
	}

	return nil
}

// step returns a command that adds sign times the optional amount (default
// 1) to the named binding and yields the new value. The binding is written
// back to the tier it was found in. A missing or nullish binding counts
// from zero.
func step(sign float64) lang.EvaluateFunc {
	return func(_ context.Context, ec *lang.ExecutionContext, args ...any) (any, error) {
		if ec == nil {
			return nil, lang.ErrInvalidArguments.With(slog.String("issue", "no execution context"))
		}

		name := strings.TrimSpace(args[0].(string))

		amount := 1.0
		if len(args) > 1 {
			amount = lang.ToNumber(args[1])
		}

		scope := lang.ScopeDefault

		current, ok := ec.Slot(name)
		if !ok {
			var tier lang.Tier

			current, tier = lang.Lookup(ec, name, lang.ScopeDefault)

			switch tier {
			case lang.TierLocal:
				scope = lang.ScopeLocal
			case lang.TierGlobal:
				scope = lang.ScopeGlobal
			}
		}

		n := 0.0
		if !lang.IsNullish(current) {
			n = lang.ToNumber(current)
		}

		next := n + sign*amount
		if next == 0 {
			next = math.Abs(next)
		}

		lang.Bind(ec, name, scope, next)

		return next, nil
	}
}

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/hypereval/builtin"
	"github.com/ardnew/hypereval/lang"
)

// Groups listed by [List] besides the builtin categories.
const (
	groupGlobal         = "global"
	groupStringMethod   = "string method"
	groupArrayMethod    = "array method"
	groupBinaryOperator = "binary operator"
	groupUnaryOperator  = "unary operator"
)

// List prints the builtin names grouped by category.
type List struct {
	Category []string `arg:"" enum:"${builtinCategories}" help:"Categories to list (default all)" optional:""`

	All    bool   `help:"Also list host globals, methods and operators" short:"a"`
	Output string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})" short:"o"`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) error {
	groups := l.groups()

	if l.Output != FormatText {
		out := make(map[string]any, len(groups))
		for k, names := range groups {
			out[k] = anySlice(names)
		}

		return write(ctx, outputFrom(ctx), out, l.Output, 2)
	}

	var sb strings.Builder

	for _, key := range slices.Sorted(maps.Keys(groups)) {
		fmt.Fprintf(&sb, "%s:\n", key)

		for _, name := range groups[key] {
			fmt.Fprintf(&sb, "  %s\n", name)
		}
	}

	_, err := fmt.Fprint(outputFrom(ctx), sb.String())

	return err
}

func (l *List) groups() map[string][]string {
	reg := lang.NewRegistry(nil)
	builtin.Register(reg, builtin.WithCategories(l.Category...))

	groups := reg.ByCategory()

	if l.All {
		strs, arrays := lang.BuiltinMethods()

		groups[groupGlobal] = lang.DefaultGlobalNames()
		groups[groupStringMethod] = strs
		groups[groupArrayMethod] = arrays
		groups[groupBinaryOperator] = lang.BinaryOperators()
		groups[groupUnaryOperator] = lang.UnaryOperators()
	}

	return groups
}

func anySlice[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}

	return out
}

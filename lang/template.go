package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

const (
	markerOpen  = "${"
	markerClose = '}'
)

// errNotRestricted reports an expression outside the restricted template
// grammar; the marker then falls back to a single-value lookup.
var errNotRestricted = errors.New("not a restricted template expression")

// Interpolate replaces every ${...} marker in tmpl with the string form of
// its value. Text outside markers is copied verbatim; a backslash before
// the marker start escapes it.
//
// With a [Parser] configured, marker contents are evaluated as full DSL
// expressions. Otherwise a restricted evaluator handles a ternary, a binary
// arithmetic or comparison form, and single values.
func (r *Runtime) Interpolate(
	ctx context.Context,
	tmpl string,
	ec *ExecutionContext,
) (string, error) {
	ec = r.bind(ec)

	var sb strings.Builder

	sb.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		j := strings.Index(tmpl[i:], markerOpen)
		if j < 0 {
			sb.WriteString(tmpl[i:])

			break
		}

		j += i

		if j > 0 && tmpl[j-1] == '\\' {
			sb.WriteString(tmpl[i : j-1])
			sb.WriteString(markerOpen)

			i = j + len(markerOpen)

			continue
		}

		sb.WriteString(tmpl[i:j])

		start := j + len(markerOpen)

		end := markerEnd(tmpl, start)
		if end < 0 {
			return "", ErrUnterminatedTemplate.With(
				slog.Int("offset", j),
				slog.String("template", tmpl),
			)
		}

		v, err := r.evalMarker(ctx, tmpl[start:end], ec)
		if err != nil {
			return "", err
		}

		sb.WriteString(ToString(v))

		i = end + 1
	}

	return sb.String(), nil
}

// markerEnd returns the index of the brace closing a marker whose contents
// begin at start, or -1. Nested braces are balanced and quoted text is
// skipped.
func markerEnd(s string, start int) int {
	depth := 1

	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '`':
			i = quoteEnd(s, i)
			if i < 0 {
				return -1
			}

		case '{':
			depth++

		case markerClose:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// quoteEnd returns the index of the quote closing the one at open.
func quoteEnd(s string, open int) int {
	q := s[open]

	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}

	return -1
}

func (r *Runtime) evalMarker(
	ctx context.Context,
	src string,
	ec *ExecutionContext,
) (any, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrMalformedNode.With(slog.String("issue", "empty template marker"))
	}

	r.logger.TraceContext(ctx, "template marker", slog.String("source", src))

	if r.parser != nil {
		node, err := r.parser.Parse(src)
		if err != nil {
			return nil, WrapError(err).With(slog.String("marker", src))
		}

		return r.Evaluate(ctx, node, ec)
	}

	tree, err := parser.Parse(src)
	if err != nil {
		return r.lookupText(ctx, src, ec)
	}

	node := tree.Node
	ast.Walk(&node, &hyphenPatcher{ec: ec, logger: r.logger})

	v, err := r.evalRestricted(ctx, node, ec)
	if errors.Is(err, errNotRestricted) {
		return r.lookupText(ctx, src, ec)
	}

	return v, err
}

// lookupText resolves the whole marker text as one name.
func (r *Runtime) lookupText(
	ctx context.Context,
	src string,
	ec *ExecutionContext,
) (any, error) {
	return r.evalIdentifier(ctx, &Identifier{Name: src}, ec)
}

// evalRestricted evaluates the template subset of the expression grammar.
func (r *Runtime) evalRestricted(
	ctx context.Context,
	node ast.Node,
	ec *ExecutionContext,
) (any, error) {
	switch n := node.(type) {
	case *ast.ConditionalNode:
		cond, err := r.evalRestricted(ctx, n.Cond, ec)
		if err != nil {
			return nil, err
		}

		if Truthy(cond) {
			return r.evalRestricted(ctx, n.Exp1, ec)
		}

		return r.evalRestricted(ctx, n.Exp2, ec)

	case *ast.BinaryNode:
		left, err := r.evalRestricted(ctx, n.Left, ec)
		if err != nil {
			return nil, err
		}

		right, err := r.evalRestricted(ctx, n.Right, ec)
		if err != nil {
			return nil, err
		}

		return restrictedBinary(n.Operator, left, right)

	case *ast.UnaryNode:
		v, err := r.evalRestricted(ctx, n.Node, ec)
		if err != nil {
			return nil, err
		}

		switch n.Operator {
		case "!", "not":
			return !Truthy(v), nil
		case "-":
			return -ToNumber(v), nil
		case "+":
			return ToNumber(v), nil
		}

		return nil, errNotRestricted

	case *ast.IdentifierNode:
		return r.evalIdentifier(ctx, &Identifier{Name: n.Value}, ec)

	case *ast.MemberNode:
		obj, err := r.evalRestricted(ctx, n.Node, ec)
		if err != nil {
			return nil, err
		}

		if s, ok := n.Property.(*ast.StringNode); ok {
			return r.possessive(ctx, ec, obj, s.Value)
		}

		key, err := r.evalRestricted(ctx, n.Property, ec)
		if err != nil {
			return nil, err
		}

		return IndexValue(ec, obj, key), nil

	case *ast.ChainNode:
		return r.evalRestricted(ctx, n.Node, ec)

	case *ast.IntegerNode:
		return float64(n.Value), nil

	case *ast.FloatNode:
		return n.Value, nil

	case *ast.StringNode:
		return n.Value, nil

	case *ast.BoolNode:
		return n.Value, nil

	case *ast.NilNode:
		return nil, nil
	}

	return nil, errNotRestricted
}

// restrictedBinary applies a template binary operator. Arithmetic on two
// numeric operands (numbers or numeric strings) is numeric; otherwise the
// resolved values are combined as they are.
func restrictedBinary(op string, left, right any) (any, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		if isNumeric(left) && isNumeric(right) {
			return Arithmetic(op, ToNumber(left), ToNumber(right))
		}

		return Arithmetic(op, left, right)

	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "<", "<=", ">", ">=":
		c, ok := Compare(left, right)
		if !ok {
			return false, nil
		}

		switch op {
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		default:
			return c >= 0, nil
		}

	case "&&", "and":
		if !Truthy(left) {
			return left, nil
		}

		return right, nil
	case "||", "or", "??":
		if op == "??" {
			if IsNullish(left) {
				return right, nil
			}

			return left, nil
		}

		if Truthy(left) {
			return left, nil
		}

		return right, nil
	}

	return nil, errNotRestricted
}

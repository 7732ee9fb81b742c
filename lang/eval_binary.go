package lang

import (
	"context"
	"log/slog"
	"regexp"
)

// Query is the unevaluated text of a selector literal used as the left
// operand of "in". It tells the membership operator to search within the
// right operand instead of testing containment.
type Query string

func (r *Runtime) evalBinary(
	ctx context.Context,
	n *BinaryExpression,
	ec *ExecutionContext,
) (any, error) {
	name, ok := BinaryOperatorName(n.Operator)
	if !ok {
		return nil, ErrUnsupportedOperator.With(attrOperator(n.Operator))
	}

	if name == OpAssign {
		return r.evalAssign(ctx, n, ec)
	}

	left, right, err := r.binaryOperands(ctx, name, n, ec)
	if err != nil {
		return nil, err
	}

	impl, ok, err := r.registry.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	if ok {
		r.logger.TraceContext(ctx, "registry dispatch", attrOperator(name))

		return invoke(ctx, ec, impl, left, right)
	}

	return ApplyBinary(ctx, ec, name, left, right)
}

// binaryOperands evaluates both operands in order, except for the operator
// positions that are read as written: a selector on the left of "in", the
// pattern of "matches", and the type name of "is a" and "as".
func (r *Runtime) binaryOperands(
	ctx context.Context,
	name string,
	n *BinaryExpression,
	ec *ExecutionContext,
) (left, right any, err error) {
	if sel, ok := n.Left.(*Selector); ok && name == OpIn {
		left = Query(NormalizeSelector(sel.Value))
	} else {
		left, err = r.Evaluate(ctx, n.Left, ec)
		if err != nil {
			return nil, nil, err
		}
	}

	switch name {
	case OpMatches, OpNotMatches, OpIsA, OpIsNotA, OpAs:
		text, err := literalText(n.Right)
		if err != nil {
			return nil, nil, WrapError(err).With(attrOperator(n.Operator))
		}

		return left, text, nil
	}

	right, err = r.Evaluate(ctx, n.Right, ec)
	if err != nil {
		return nil, nil, err
	}

	return left, right, nil
}

// literalText returns the source form of a node read as a literal pattern
// or type name.
func literalText(node Node) (string, error) {
	switch t := node.(type) {
	case *Identifier:
		return t.Name, nil
	case *Literal:
		return ToString(Normalize(t.Value)), nil
	case *Selector:
		return NormalizeSelector(t.Value), nil
	case *TemplateLiteral:
		return t.Value, nil
	case nil:
		return "", ErrMalformedNode.With(slog.String("issue", "missing operand"))
	}

	return "", ErrMalformedNode.With(
		slog.String("issue", "operand must be written literally"),
		attrKind(node.Kind()),
	)
}

// evalAssign writes the right operand to the identifier on the left:
// result, it and you go to their context slots, tagged names to their tier,
// anything else to variables. The assigned value is the result.
func (r *Runtime) evalAssign(
	ctx context.Context,
	n *BinaryExpression,
	ec *ExecutionContext,
) (any, error) {
	target, ok := n.Left.(*Identifier)
	if !ok {
		kind := Kind("")
		if n.Left != nil {
			kind = n.Left.Kind()
		}

		return nil, ErrInvalidAssignment.With(attrKind(kind))
	}

	v, err := r.Evaluate(ctx, n.Right, ec)
	if err != nil {
		return nil, err
	}

	Bind(ec, target.Name, target.Scope, v)

	r.logger.TraceContext(ctx, "assign", attrName(target.Name), attrValue(v))

	return v, nil
}

// Bind binds name to v in ec the way an assignment expression does.
func Bind(ec *ExecutionContext, name string, scope ScopeTag, v any) {
	switch scope {
	case ScopeLocal:
		ec.Locals.Set(name, v)
	case ScopeGlobal:
		ec.Globals.Set(name, v)
	default:
		if !ec.assignSlot(name, v) {
			ec.Variables.Set(name, v)
		}
	}
}

// ApplyBinary applies the built-in semantics of the canonical operator name
// to evaluated operands, bypassing the registry.
func ApplyBinary(
	ctx context.Context,
	ec *ExecutionContext,
	name string,
	left, right any,
) (any, error) {
	switch name {
	case OpAddition:
		return Add(left, right), nil
	case OpSubtraction:
		return Arithmetic("-", left, right)
	case OpMultiplication:
		return Arithmetic("*", left, right)
	case OpDivision:
		return Arithmetic("/", left, right)
	case OpModulo:
		return Arithmetic("%", left, right)

	case OpEquals:
		return LooseEqual(left, right), nil
	case OpNotEquals:
		return !LooseEqual(left, right), nil
	case OpStrictEquals:
		return StrictEqual(left, right), nil
	case OpStrictNotEquals:
		return !StrictEqual(left, right), nil

	case OpGreaterThan:
		c, ok := Compare(left, right)

		return ok && c > 0, nil
	case OpGreaterThanOrEqual:
		c, ok := Compare(left, right)

		return ok && c >= 0, nil
	case OpLessThan:
		c, ok := Compare(left, right)

		return ok && c < 0, nil
	case OpLessThanOrEqual:
		c, ok := Compare(left, right)

		return ok && c <= 0, nil

	case OpAnd:
		if !Truthy(left) {
			return left, nil
		}

		return right, nil
	case OpOr:
		if Truthy(left) {
			return left, nil
		}

		return right, nil

	case OpContains:
		return Contains(left, right), nil
	case OpNotContains:
		return !Contains(left, right), nil
	case OpIn:
		if q, ok := left.(Query); ok {
			return QueryWithin(ctx, ec, string(q), right)
		}

		return Contains(right, left), nil
	case OpIsIn:
		return Contains(right, left), nil
	case OpIsNotIn:
		return !Contains(right, left), nil

	case OpMatches:
		return MatchPattern(ec, left, ToString(right))
	case OpNotMatches:
		ok, err := MatchPattern(ec, left, ToString(right))

		return !ok, err

	case OpIsA:
		return IsA(left, ToString(right)), nil
	case OpIsNotA:
		return !IsA(left, ToString(right)), nil

	case OpAs:
		return Convert(left, ToString(right))
	}

	return nil, ErrUnsupportedOperator.With(attrOperator(name))
}

// QueryWithin runs selector against the descendants of every root value.
// A nullish root queries the whole document.
func QueryWithin(
	ctx context.Context,
	ec *ExecutionContext,
	selector string,
	root any,
) (any, error) {
	if IsNullish(root) {
		return ec.Host.Query(ctx, selector)
	}

	sq, ok := hostAs[ScopedQuerier](ec.Host)
	if !ok {
		return nil, ErrUnsupportedOperator.With(
			attrOperator(OpIn),
			slog.String("issue", "host cannot scope queries"),
		)
	}

	found := []any{}

	for _, v := range ToArray(root) {
		m, err := sq.QueryWithin(ctx, v, selector)
		if err != nil {
			return nil, WrapError(err).With(slog.String("selector", selector))
		}

		found = append(found, m...)
	}

	return found, nil
}

// MatchPattern tests v against pattern. The host decides for values it
// owns; strings are matched as regular expressions. A single-element array
// is tested by its element.
func MatchPattern(ec *ExecutionContext, v any, pattern string) (bool, error) {
	if a, ok := v.([]any); ok && len(a) == 1 {
		v = a[0]
	}

	if m, ok := hostAs[Matcher](ec.Host); ok {
		matched, ok, err := m.Matches(v, pattern)
		if err != nil {
			return false, WrapError(err).With(slog.String("pattern", pattern))
		}

		if ok {
			return matched, nil
		}
	}

	s, ok := v.(string)
	if !ok {
		return false, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, ErrInvalidArguments.Wrap(err).
			With(attrOperator(OpMatches), slog.String("pattern", pattern))
	}

	return re.MatchString(s), nil
}

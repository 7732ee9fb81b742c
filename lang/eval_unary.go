package lang

import "context"

func (r *Runtime) evalUnary(
	ctx context.Context,
	n *UnaryExpression,
	ec *ExecutionContext,
) (any, error) {
	name, ok := UnaryOperatorName(n.Operator)
	if !ok {
		return nil, ErrUnsupportedOperator.With(attrOperator(n.Operator))
	}

	v, err := r.Evaluate(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}

	impl, ok, err := r.registry.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	if ok {
		return invoke(ctx, ec, impl, v)
	}

	return ApplyUnary(name, v)
}

// ApplyUnary applies the built-in semantics of a canonical unary operator.
func ApplyUnary(name string, v any) (any, error) {
	switch name {
	case OpNot:
		return !Truthy(v), nil
	case OpNo:
		return IsEmpty(v), nil
	case OpSome:
		return !IsEmpty(v), nil
	case OpExists:
		return !IsNullish(v), nil
	case OpDoesNotExist:
		return IsNullish(v), nil
	case OpNegate:
		return -ToNumber(v), nil
	case OpPositive:
		return ToNumber(v), nil
	}

	return nil, ErrUnsupportedOperator.With(attrOperator(name))
}

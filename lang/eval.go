package lang

import (
	"context"
	"log/slog"
	"strings"
)

// Evaluate walks node and returns its value in ec.
//
// Unresolved identifiers and missing properties evaluate to [Absent]
// rather than failing. Every other failure aborts the walk: the first error
// from any child is returned as is, with no partial result.
func (r *Runtime) Evaluate(
	ctx context.Context,
	node Node,
	ec *ExecutionContext,
) (any, error) {
	if node == nil {
		return nil, ErrMalformedNode.With(slog.String("issue", "nil node"))
	}

	ec = r.bind(ec)

	r.logger.TraceContext(ctx, "evaluate", attrKind(node.Kind()))

	switch n := node.(type) {
	case *Literal:
		return r.evalLiteral(ctx, n, ec)

	case *Identifier:
		return r.evalIdentifier(ctx, n, ec)

	case *MemberExpression:
		return r.evalMember(ctx, n, ec)

	case *PossessiveExpression:
		return r.evalPossessive(ctx, n, ec)

	case *BinaryExpression:
		return r.evalBinary(ctx, n, ec)

	case *UnaryExpression:
		return r.evalUnary(ctx, n, ec)

	case *CallExpression:
		return r.evalCall(ctx, n, ec)

	case *NewExpression:
		return r.evalNew(ctx, n, ec)

	case *Selector:
		return r.evalSelector(ctx, n, ec)

	case *TemplateLiteral:
		return r.Interpolate(ctx, n.Value, ec)

	case *ArrayLiteral:
		return r.evalArray(ctx, n, ec)

	case *ObjectLiteral:
		return r.evalObject(ctx, n, ec)

	case *ConditionalExpression:
		return r.evalConditional(ctx, n, ec)

	default:
		return nil, ErrUnsupportedNode.With(attrKind(node.Kind()))
	}
}

func (r *Runtime) evalLiteral(
	ctx context.Context,
	n *Literal,
	ec *ExecutionContext,
) (any, error) {
	if s, ok := n.Value.(string); ok && strings.Contains(s, markerOpen) {
		return r.Interpolate(ctx, s, ec)
	}

	return Normalize(n.Value), nil
}

// evalIdentifier gives the registry the first chance at an untagged name.
// Only reference implementations are consulted here, and lazy entries of
// other categories are never loaded: an operator or function that happens to
// share a name with a variable must not shadow it.
func (r *Runtime) evalIdentifier(
	ctx context.Context,
	n *Identifier,
	ec *ExecutionContext,
) (any, error) {
	if n.Scope == ScopeDefault {
		impl, ok, err := r.registry.LookupCategory(ctx, n.Name, CategoryReference)
		if err != nil {
			return nil, err
		}

		if ok {
			return invoke(ctx, ec, impl)
		}

		if v, ok := ec.slot(n.Name); ok {
			return v, nil
		}
	}

	v, tier := Lookup(ec, n.Name, n.Scope)
	if tier == TierNone {
		r.logger.TraceContext(ctx, "unresolved identifier", attrName(n.Name))

		return Absent, nil
	}

	return v, nil
}

// evalArgs evaluates nodes left to right.
func (r *Runtime) evalArgs(
	ctx context.Context,
	nodes []Node,
	ec *ExecutionContext,
) ([]any, error) {
	args := make([]any, len(nodes))

	for i, node := range nodes {
		v, err := r.Evaluate(ctx, node, ec)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

func (r *Runtime) evalArray(
	ctx context.Context,
	n *ArrayLiteral,
	ec *ExecutionContext,
) (any, error) {
	elems, err := r.evalArgs(ctx, n.Elements, ec)
	if err != nil {
		return nil, err
	}

	if len(elems) == 0 {
		// Zero-capacity slices share one address; give each empty array
		// its own so that strict equality sees two literals as distinct.
		elems = make([]any, 0, 1)
	}

	return elems, nil
}

// evalObject uses identifier and literal keys as written so that a key
// position never triggers a scope lookup.
func (r *Runtime) evalObject(
	ctx context.Context,
	n *ObjectLiteral,
	ec *ExecutionContext,
) (any, error) {
	obj := make(map[string]any, len(n.Properties))

	for _, p := range n.Properties {
		var key string

		switch k := p.Key.(type) {
		case *Identifier:
			key = k.Name

		case *Literal:
			key = ToString(Normalize(k.Value))

		case nil:
			return nil, ErrMalformedNode.With(
				attrKind(KindObject), slog.String("issue", "missing key"))

		default:
			v, err := r.Evaluate(ctx, k, ec)
			if err != nil {
				return nil, err
			}

			key = ToString(v)
		}

		v, err := r.Evaluate(ctx, p.Value, ec)
		if err != nil {
			return nil, err
		}

		obj[key] = v
	}

	return obj, nil
}

func (r *Runtime) evalConditional(
	ctx context.Context,
	n *ConditionalExpression,
	ec *ExecutionContext,
) (any, error) {
	test, err := r.Evaluate(ctx, n.Test, ec)
	if err != nil {
		return nil, err
	}

	if Truthy(test) {
		return r.Evaluate(ctx, n.Consequent, ec)
	}

	if n.Alternate == nil {
		return Absent, nil
	}

	return r.Evaluate(ctx, n.Alternate, ec)
}

// evalSelector always yields the complete match set.
func (r *Runtime) evalSelector(
	ctx context.Context,
	n *Selector,
	ec *ExecutionContext,
) (any, error) {
	sel := NormalizeSelector(n.Value)

	found, err := ec.Host.Query(ctx, sel)
	if err != nil {
		return nil, WrapError(err).With(slog.String("selector", sel))
	}

	if found == nil {
		found = []any{}
	}

	r.logger.TraceContext(ctx, "query",
		slog.String("selector", sel), slog.Int("matches", len(found)))

	return found, nil
}

// NormalizeSelector strips the element-literal form <tag/> down to a plain
// CSS selector.
func NormalizeSelector(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, "/>") {
		s = strings.TrimSpace(s[1 : len(s)-2])
	}

	return s
}

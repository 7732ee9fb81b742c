package lang

import (
	"context"
	"log/slog"
)

// evalCall dispatches on the shape of the callee. Arguments are always
// evaluated, in order, before anything is invoked.
func (r *Runtime) evalCall(
	ctx context.Context,
	n *CallExpression,
	ec *ExecutionContext,
) (any, error) {
	switch callee := n.Callee.(type) {
	case *MemberExpression:
		recv, err := r.Evaluate(ctx, callee.Object, ec)
		if err != nil {
			return nil, err
		}

		var name string

		if callee.Computed {
			key, err := r.Evaluate(ctx, callee.Property, ec)
			if err != nil {
				return nil, err
			}

			name = ToString(key)
		} else {
			name, err = propertyName(callee.Property)
			if err != nil {
				return nil, err
			}
		}

		return r.callMethod(ctx, ec, recv, name, n.Arguments)

	case *PossessiveExpression:
		recv, err := r.Evaluate(ctx, callee.Object, ec)
		if err != nil {
			return nil, err
		}

		return r.callMethod(ctx, ec, recv, callee.Property, n.Arguments)

	case *Identifier:
		return r.callFunction(ctx, ec, callee, n.Arguments)

	case nil:
		return nil, ErrMalformedNode.With(
			attrKind(KindCall), slog.String("issue", "missing callee"))
	}

	fn, err := r.Evaluate(ctx, n.Callee, ec)
	if err != nil {
		return nil, err
	}

	args, err := r.evalArgs(ctx, n.Arguments, ec)
	if err != nil {
		return nil, err
	}

	return callValue(ctx, fn, nil, args)
}

// callMethod invokes the named method of recv. A single-element array
// receiver (typically a selector result) is unwrapped first; if its element
// has no such method the array's own method is tried.
func (r *Runtime) callMethod(
	ctx context.Context,
	ec *ExecutionContext,
	recv any,
	name string,
	argNodes []Node,
) (any, error) {
	args, err := r.evalArgs(ctx, argNodes, ec)
	if err != nil {
		return nil, err
	}

	this, unwrapped := recv, false
	if a, ok := recv.([]any); ok && len(a) == 1 {
		this, unwrapped = a[0], true
	}

	fn, ok := LookupMethod(ec, this, name)
	if !ok && unwrapped {
		this = recv
		fn, ok = LookupMethod(ec, this, name)
	}

	if !ok {
		return nil, ErrNotCallable.With(attrName(name), attrType(this))
	}

	r.logger.TraceContext(ctx, "call method", attrName(name), attrType(this))

	return callValue(ctx, fn, this, args)
}

// callFunction gives the registry the first chance at a plain call, then
// looks the name up in globals and host globals.
func (r *Runtime) callFunction(
	ctx context.Context,
	ec *ExecutionContext,
	callee *Identifier,
	argNodes []Node,
) (any, error) {
	args, err := r.evalArgs(ctx, argNodes, ec)
	if err != nil {
		return nil, err
	}

	if callee.Scope == ScopeDefault {
		impl, ok, err := r.registry.Lookup(ctx, callee.Name)
		if err != nil {
			return nil, err
		}

		if ok {
			r.logger.TraceContext(ctx, "registry dispatch", attrName(callee.Name))

			return invoke(ctx, ec, impl, args...)
		}
	}

	fn, ok := lookupGlobal(ec, callee.Name)
	if !ok {
		return nil, ErrUnknownFunction.With(attrName(callee.Name))
	}

	if !isCallable(fn) {
		return nil, ErrNotCallable.With(attrName(callee.Name), attrType(fn))
	}

	return callValue(ctx, fn, nil, args)
}

// evalNew resolves a constructor by name in globals and host globals.
func (r *Runtime) evalNew(
	ctx context.Context,
	n *NewExpression,
	ec *ExecutionContext,
) (any, error) {
	args, err := r.evalArgs(ctx, n.Arguments, ec)
	if err != nil {
		return nil, err
	}

	ctor, ok := lookupGlobal(ec, n.Name)
	if !ok {
		return nil, ErrUnknownConstructor.With(attrName(n.Name))
	}

	r.logger.TraceContext(ctx, "construct", attrName(n.Name))

	switch c := ctor.(type) {
	case Constructor:
		return c.New(ctx, args)
	default:
		if isCallable(c) {
			return callValue(ctx, c, nil, args)
		}
	}

	return nil, ErrNotCallable.With(attrName(n.Name), attrType(ctor))
}

func lookupGlobal(ec *ExecutionContext, name string) (any, bool) {
	if v, ok := ec.Globals.Get(name); ok {
		return v, true
	}

	if ec.Host != nil {
		return ec.Host.Global(name)
	}

	return nil, false
}

// LookupMethod finds the method name of recv: methods the value provides
// itself, callable members of objects, then the built-in string and array
// methods.
func LookupMethod(ec *ExecutionContext, recv any, name string) (any, bool) {
	if mp, ok := recv.(MethodProvider); ok {
		if fn, ok := mp.Method(name); ok {
			return fn, true
		}
	}

	switch o := recv.(type) {
	case map[string]any:
		if fn, ok := o[name]; ok && isCallable(fn) {
			return fn, true
		}

	case PropertyReader:
		if fn, ok := o.Property(name); ok && isCallable(fn) {
			return fn, true
		}
	}

	if fn, ok := builtinMethod(recv, name); ok {
		return fn, true
	}

	if ec != nil {
		if pr, ok := hostAs[PropertyResolver](ec.Host); ok {
			if fn, ok := pr.Property(recv, name); ok && isCallable(fn) {
				return fn, true
			}
		}
	}

	return nil, false
}

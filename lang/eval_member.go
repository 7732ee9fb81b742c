package lang

import (
	"context"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

func (r *Runtime) evalMember(
	ctx context.Context,
	n *MemberExpression,
	ec *ExecutionContext,
) (any, error) {
	obj, err := r.Evaluate(ctx, n.Object, ec)
	if err != nil {
		return nil, err
	}

	if n.Computed {
		key, err := r.Evaluate(ctx, n.Property, ec)
		if err != nil {
			return nil, err
		}

		return IndexValue(ec, obj, key), nil
	}

	name, err := propertyName(n.Property)
	if err != nil {
		return nil, err
	}

	return r.possessive(ctx, ec, obj, name)
}

func (r *Runtime) evalPossessive(
	ctx context.Context,
	n *PossessiveExpression,
	ec *ExecutionContext,
) (any, error) {
	obj, err := r.Evaluate(ctx, n.Object, ec)
	if err != nil {
		return nil, err
	}

	return r.possessive(ctx, ec, obj, n.Property)
}

// possessive routes a named property read through the registered
// possessive implementation, if any, so host-specific property rules live
// in one place.
func (r *Runtime) possessive(
	ctx context.Context,
	ec *ExecutionContext,
	obj any,
	name string,
) (any, error) {
	impl, ok, err := r.registry.Lookup(ctx, PossessiveName)
	if err != nil {
		return nil, err
	}

	if ok {
		return invoke(ctx, ec, impl, obj, name)
	}

	return GetProperty(ec, obj, name), nil
}

// propertyName returns the name written in a non-computed property
// position.
func propertyName(node Node) (string, error) {
	switch p := node.(type) {
	case *Identifier:
		return p.Name, nil

	case *Literal:
		return ToString(Normalize(p.Value)), nil

	case nil:
		return "", ErrMalformedNode.With(
			attrKind(KindMember), slog.String("issue", "missing property"))

	default:
		return "", ErrMalformedNode.With(
			attrKind(KindMember),
			slog.String("issue", "non-computed property must be a name"),
			slog.String("property", string(p.Kind())),
		)
	}
}

// IndexValue reads obj[key]. Arrays and strings accept integral numeric keys;
// anything else is read as a named property.
func IndexValue(ec *ExecutionContext, obj, key any) any {
	if n, ok := numberValue(key); ok {
		switch o := obj.(type) {
		case []any:
			return indexArray(o, n)

		case string:
			runes := []rune(o)
			if i := int(n); float64(i) == n && i >= 0 && i < len(runes) {
				return string(runes[i])
			}

			return Absent
		}
	}

	return GetProperty(ec, obj, ToString(key))
}

func indexArray(a []any, n float64) any {
	if n != math.Trunc(n) || n < 0 || n >= float64(len(a)) {
		return Absent
	}

	return a[int(n)]
}

// GetProperty reads the named property of obj. Missing properties, and any
// property of a nullish value, are [Absent].
//
// Reading a property other than length from an array reads it from every
// element and returns the results that are present.
func GetProperty(ec *ExecutionContext, obj any, name string) any {
	switch o := obj.(type) {
	case nil, absent:
		return Absent

	case map[string]any:
		if v, ok := o[name]; ok {
			return v
		}

		return Absent

	case PropertyReader:
		if v, ok := o.Property(name); ok {
			return Normalize(v)
		}

	case []any:
		if name == "length" {
			return float64(len(o))
		}

		if i, err := strconv.Atoi(name); err == nil {
			return indexArray(o, float64(i))
		}

		out := make([]any, 0, len(o))

		for _, e := range o {
			if v := GetProperty(ec, e, name); !IsAbsent(v) {
				out = append(out, v)
			}
		}

		return out

	case string:
		if name == "length" {
			return float64(utf8.RuneCountInString(o))
		}

		if i, err := strconv.Atoi(name); err == nil {
			return IndexValue(ec, o, float64(i))
		}

		return Absent
	}

	if ec != nil {
		if pr, ok := hostAs[PropertyResolver](ec.Host); ok {
			if v, ok := pr.Property(obj, name); ok {
				return Normalize(v)
			}
		}
	}

	return reflectProperty(obj, name)
}

// reflectProperty reads an exported struct field, or a string-keyed map
// entry, matching name case-insensitively.
func reflectProperty(obj any, name string) any {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Absent
		}

		rv = rv.Elem()
	}

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Struct:
		f, ok := rv.Type().FieldByNameFunc(func(s string) bool {
			return strings.EqualFold(s, name)
		})
		if !ok || !f.IsExported() {
			return Absent
		}

		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return Absent
		}

		return Normalize(fv.Interface())

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Absent
		}

		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return Absent
		}

		return Normalize(v.Interface())
	}

	return Absent
}

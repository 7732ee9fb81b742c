package lang

import (
	"context"
	"math"
	"strings"
)

type method func(this any, args []any) (any, error)

var stringMethods = map[string]method{
	"toUpperCase": func(this any, _ []any) (any, error) {
		return strings.ToUpper(this.(string)), nil
	},
	"toLowerCase": func(this any, _ []any) (any, error) {
		return strings.ToLower(this.(string)), nil
	},
	"trim": func(this any, _ []any) (any, error) {
		return strings.TrimSpace(this.(string)), nil
	},
	"includes": func(this any, args []any) (any, error) {
		return strings.Contains(this.(string), ToString(arg(args, 0))), nil
	},
	"startsWith": func(this any, args []any) (any, error) {
		return strings.HasPrefix(this.(string), ToString(arg(args, 0))), nil
	},
	"endsWith": func(this any, args []any) (any, error) {
		return strings.HasSuffix(this.(string), ToString(arg(args, 0))), nil
	},
	"indexOf": func(this any, args []any) (any, error) {
		s, sub := this.(string), ToString(arg(args, 0))

		i := strings.Index(s, sub)
		if i < 0 {
			return float64(-1), nil
		}

		return float64(len([]rune(s[:i]))), nil
	},
	"split": func(this any, args []any) (any, error) {
		sep := ""
		if len(args) > 0 && !IsNullish(args[0]) {
			sep = ToString(args[0])
		}

		part := strings.Split(this.(string), sep)
		out := make([]any, len(part))

		for i, p := range part {
			out[i] = p
		}

		return out, nil
	},
	"slice": func(this any, args []any) (any, error) {
		runes := []rune(this.(string))
		lo, hi := sliceBounds(len(runes), args)

		return string(runes[lo:hi]), nil
	},
	"toString": func(this any, _ []any) (any, error) {
		return this, nil
	},
}

var arrayMethods = map[string]method{
	"join": func(this any, args []any) (any, error) {
		sep := ","
		if len(args) > 0 && !IsNullish(args[0]) {
			sep = ToString(args[0])
		}

		a := this.([]any)
		part := make([]string, len(a))

		for i, e := range a {
			if !IsNullish(e) {
				part[i] = ToString(e)
			}
		}

		return strings.Join(part, sep), nil
	},
	"includes": func(this any, args []any) (any, error) {
		return Contains(this, arg(args, 0)), nil
	},
	"indexOf": func(this any, args []any) (any, error) {
		for i, e := range this.([]any) {
			if StrictEqual(e, arg(args, 0)) {
				return float64(i), nil
			}
		}

		return float64(-1), nil
	},
	"slice": func(this any, args []any) (any, error) {
		a := this.([]any)
		lo, hi := sliceBounds(len(a), args)

		return append([]any{}, a[lo:hi]...), nil
	},
	"concat": func(this any, args []any) (any, error) {
		out := append([]any{}, this.([]any)...)

		for _, a := range args {
			if arr, ok := a.([]any); ok {
				out = append(out, arr...)
			} else {
				out = append(out, a)
			}
		}

		return out, nil
	},
	"reverse": func(this any, _ []any) (any, error) {
		a := this.([]any)
		out := make([]any, len(a))

		for i, e := range a {
			out[len(a)-1-i] = e
		}

		return out, nil
	},
	"toString": func(this any, _ []any) (any, error) {
		return ToString(this), nil
	},
}

// builtinMethod returns the built-in string or array method name bound to
// recv.
func builtinMethod(recv any, name string) (Callable, bool) {
	var (
		m  method
		ok bool
	)

	switch recv.(type) {
	case string:
		m, ok = stringMethods[name]
	case []any:
		m, ok = arrayMethods[name]
	}

	if !ok {
		return nil, false
	}

	return Func(func(_ context.Context, _ any, args []any) (any, error) {
		return m(recv, args)
	}), true
}

// BuiltinMethods returns the names of the built-in methods of strings and
// arrays.
func BuiltinMethods() (strs, arrays []string) {
	return sortedKeys(stringMethods), sortedKeys(arrayMethods)
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}

	return Absent
}

// sliceBounds resolves slice(start, end) arguments against length n.
// Negative positions count from the end.
func sliceBounds(n int, args []any) (lo, hi int) {
	clamp := func(v any, def int) int {
		if IsNullish(v) {
			return def
		}

		f := math.Trunc(ToNumber(v))
		if math.IsNaN(f) {
			return 0
		}

		i := int(f)
		if i < 0 {
			i += n
		}

		return max(0, min(i, n))
	}

	lo, hi = clamp(arg(args, 0), 0), clamp(arg(args, 1), n)
	if hi < lo {
		hi = lo
	}

	return lo, hi
}

package lang

// This file defines the host globals available to every runtime behind the
// configured host's own globals. The table is built once per process and
// cloned by DefaultGlobals so callers may mutate the returned map.

import (
	"context"
	"maps"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

//nolint:gochecknoglobals
var (
	globalsOnce  sync.Once
	globalsCache map[string]any
)

func builtinGlobals() map[string]any {
	globalsOnce.Do(func() {
		globalsCache = map[string]any{
			"Math": map[string]any{
				"PI":     math.Pi,
				"E":      math.E,
				"abs":    mathFunc(math.Abs),
				"ceil":   mathFunc(math.Ceil),
				"floor":  mathFunc(math.Floor),
				"round":  mathFunc(jsRound),
				"sqrt":   mathFunc(math.Sqrt),
				"trunc":  mathFunc(math.Trunc),
				"max":    Func(mathMax),
				"min":    Func(mathMin),
				"pow":    Func(mathPow),
				"random": Func(mathRandom),
			},
			"JSON": map[string]any{
				"stringify": Func(jsonStringify),
				"parse":     Func(jsonParse),
			},

			"parseInt":   Func(parseInt),
			"parseFloat": Func(parseFloat),
			"isNaN":      Func(isNaN),

			"String":  Constructor(ConstructorFunc(newString)),
			"Number":  Constructor(ConstructorFunc(newNumber)),
			"Boolean": Constructor(ConstructorFunc(newBoolean)),
			"Array":   Constructor(ConstructorFunc(newArray)),
			"Object":  Constructor(ConstructorFunc(newObject)),
			"Error":   Constructor(ConstructorFunc(newError)),

			"undefined": Absent,
			"NaN":       math.NaN(),
			"Infinity":  math.Inf(1),
		}
	})

	return globalsCache
}

// DefaultGlobals returns a copy of the built-in host globals.
func DefaultGlobals() map[string]any {
	return maps.Clone(builtinGlobals())
}

// DefaultGlobalNames returns the names of the built-in host globals.
func DefaultGlobalNames() []string {
	return sortedKeys(builtinGlobals())
}

func mathFunc(f func(float64) float64) Func {
	return func(_ context.Context, _ any, args []any) (any, error) {
		return f(ToNumber(arg(args, 0))), nil
	}
}

// jsRound rounds half up, toward positive infinity.
func jsRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

func mathMax(_ context.Context, _ any, args []any) (any, error) {
	out := math.Inf(-1)
	for _, a := range args {
		out = math.Max(out, ToNumber(a))
	}

	return out, nil
}

func mathMin(_ context.Context, _ any, args []any) (any, error) {
	out := math.Inf(1)
	for _, a := range args {
		out = math.Min(out, ToNumber(a))
	}

	return out, nil
}

func mathPow(_ context.Context, _ any, args []any) (any, error) {
	return math.Pow(ToNumber(arg(args, 0)), ToNumber(arg(args, 1))), nil
}

func mathRandom(context.Context, any, []any) (any, error) {
	return rand.Float64(), nil //nolint:gosec
}

func jsonStringify(_ context.Context, _ any, args []any) (any, error) {
	return Convert(arg(args, 0), "JSON")
}

func jsonParse(_ context.Context, _ any, args []any) (any, error) {
	var out any

	err := json.Unmarshal([]byte(ToString(arg(args, 0))), &out)
	if err != nil {
		return nil, ErrInvalidArguments.Wrap(err).With(attrName("JSON.parse"))
	}

	return Normalize(out), nil
}

// parseInt reads the longest integer prefix of its argument in the given
// radix (default 10).
func parseInt(_ context.Context, _ any, args []any) (any, error) {
	s := strings.TrimSpace(ToString(arg(args, 0)))

	radix := 10
	if r := ToNumber(arg(args, 1)); !math.IsNaN(r) && r >= 2 && r <= 36 {
		radix = int(r)
	}

	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	if radix == 16 {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}

	end := 0
	for end < len(s) {
		if _, err := strconv.ParseInt(s[end:end+1], radix, 64); err != nil {
			break
		}

		end++
	}

	if end == 0 {
		return math.NaN(), nil
	}

	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		return math.NaN(), nil //nolint:nilerr
	}

	if neg {
		n = -n
	}

	return float64(n), nil
}

// parseFloat reads the longest decimal prefix of its argument.
func parseFloat(_ context.Context, _ any, args []any) (any, error) {
	s := strings.TrimSpace(ToString(arg(args, 0)))

	for end := len(s); end > 0; end-- {
		if n, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return n, nil
		}
	}

	return math.NaN(), nil
}

func isNaN(_ context.Context, _ any, args []any) (any, error) {
	return math.IsNaN(ToNumber(arg(args, 0))), nil
}

func newString(_ context.Context, args []any) (any, error) {
	if len(args) == 0 {
		return "", nil
	}

	return ToString(args[0]), nil
}

func newNumber(_ context.Context, args []any) (any, error) {
	if len(args) == 0 {
		return float64(0), nil
	}

	return ToNumber(args[0]), nil
}

func newBoolean(_ context.Context, args []any) (any, error) {
	return Truthy(arg(args, 0)), nil
}

func newArray(_ context.Context, args []any) (any, error) {
	if len(args) == 1 {
		if n, ok := numberValue(args[0]); ok && n >= 0 && n == math.Trunc(n) {
			out := make([]any, int(n))
			for i := range out {
				out[i] = Absent
			}

			return out, nil
		}
	}

	return append([]any{}, args...), nil
}

func newObject(_ context.Context, args []any) (any, error) {
	if m, ok := arg(args, 0).(map[string]any); ok {
		return maps.Clone(m), nil
	}

	return map[string]any{}, nil
}

func newError(_ context.Context, args []any) (any, error) {
	msg := ""
	if v := arg(args, 0); !IsNullish(v) {
		msg = ToString(v)
	}

	return map[string]any{"name": "Error", "message": msg}, nil
}

package lang

import (
	"log/slog"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// IsA reports whether v is of the named type. The primitive names (string,
// number, boolean, array, function, object, null, undefined) are matched
// case-insensitively; any other name is compared verbatim against
// [TypeName] of v.
func IsA(v any, typeName string) bool {
	switch strings.ToLower(typeName) {
	case "string":
		return TypeOf(v) == "string"
	case "number":
		return TypeOf(v) == "number"
	case "boolean":
		return TypeOf(v) == "boolean"
	case "array":
		return TypeOf(v) == "array"
	case "function":
		return TypeOf(v) == "function"
	case "object":
		return TypeOf(v) == "object"
	case "null":
		return v == nil
	case "undefined":
		return IsAbsent(v)
	}

	return TypeName(v) == typeName
}

// Convert implements the "as" operator. Type names are matched
// case-insensitively:
//
//	String   ToString
//	Number   ToNumber (also Float)
//	Int      ToNumber truncated toward zero
//	Boolean  Truthy
//	Array    ToArray
//	JSON     JSON text of v
//	Object   v itself if it is an object; a JSON object decoded from a string
func Convert(v any, typeName string) (any, error) {
	switch strings.ToLower(typeName) {
	case "string":
		return ToString(v), nil

	case "number", "float":
		return ToNumber(v), nil

	case "int":
		return math.Trunc(ToNumber(v)), nil

	case "boolean":
		return Truthy(v), nil

	case "array":
		return ToArray(v), nil

	case "json":
		b, err := json.Marshal(jsonValue(v))
		if err != nil {
			return nil, ErrInvalidArguments.Wrap(err).With(slog.String("as", typeName))
		}

		return string(b), nil

	case "object":
		s, ok := v.(string)
		if !ok {
			return v, nil
		}

		var out any

		err := json.Unmarshal([]byte(s), &out)
		if err != nil {
			return nil, ErrInvalidArguments.Wrap(err).With(slog.String("as", typeName))
		}

		return Normalize(out), nil
	}

	return nil, ErrUnsupportedOperator.With(
		attrOperator(OpAs), slog.String("type", typeName))
}

// jsonValue replaces values JSON cannot represent: [Absent] becomes null,
// callables their string form.
func jsonValue(v any) any {
	switch t := v.(type) {
	case absent:
		return nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonValue(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			if !IsAbsent(e) {
				out[k] = jsonValue(e)
			}
		}

		return out
	case Callable, Constructor:
		return ToString(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
	}

	return v
}

package lang

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// numberValue converts any Go numeric kind to float64.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Normalize converts Go numeric kinds to float64 and recursively normalizes
// the members of []any and map[string]any. Values produced by host code or
// decoders should pass through Normalize before entering a context.
func Normalize(v any) any {
	if n, ok := numberValue(v); ok {
		return n
	}

	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}

		return out

	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = Normalize(e)
		}

		return out

	default:
		return v
	}
}

// Truthy reports whether v is considered true in a boolean position.
// nil, Absent, false, 0, NaN and the empty string are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil, absent:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}

	if n, ok := numberValue(v); ok {
		return n != 0 && !math.IsNaN(n)
	}

	return true
}

// ToNumber coerces v to a number. Values with no numeric reading yield NaN.
func ToNumber(v any) float64 {
	if n, ok := numberValue(v); ok {
		return n
	}

	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 1
		}

		return 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0
		}

		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}

		return n
	case []any:
		switch len(t) {
		case 0:
			return 0
		case 1:
			return ToNumber(t[0])
		}
	}

	return math.NaN()
}

// isNumeric reports whether v is a number or a string with a numeric reading.
func isNumeric(v any) bool {
	if _, ok := numberValue(v); ok {
		return true
	}

	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}

	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)

	return err == nil
}

// FormatNumber renders n the way the DSL prints numbers: integral values
// carry no fractional part.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ToString coerces v to its string form.
func ToString(v any) string {
	if n, ok := numberValue(v); ok {
		return FormatNumber(n)
	}

	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case []any:
		part := make([]string, len(t))
		for i, e := range t {
			if !IsNullish(e) {
				part[i] = ToString(e)
			}
		}

		return strings.Join(part, ",")
	case map[string]any:
		return "[object Object]"
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	case Callable, Constructor:
		return "function"
	}

	return fmt.Sprint(v)
}

// TypeOf returns the primitive kind of v: "undefined", "null", "string",
// "number", "boolean", "array", "function" or "object".
func TypeOf(v any) string {
	if _, ok := numberValue(v); ok {
		return "number"
	}

	switch v.(type) {
	case absent:
		return "undefined"
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case Callable, Constructor:
		return "function"
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice ||
		rv.Kind() == reflect.Array {
		return "array"
	} else if rv.Kind() == reflect.Func {
		return "function"
	}

	return "object"
}

// TypeName returns the runtime type name of v as compared by the custom
// branch of "is a". Host values may report their own name via [TypeNamer].
func TypeName(v any) string {
	if tn, ok := v.(TypeNamer); ok {
		return tn.TypeName()
	}

	switch TypeOf(v) {
	case "undefined", "null":
		return ""
	case "string":
		return "String"
	case "number":
		return "Number"
	case "boolean":
		return "Boolean"
	case "function":
		return "Function"
	}

	switch v.(type) {
	case []any:
		return "Array"
	case map[string]any:
		return "Object"
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Name() == "" {
		return "Object"
	}

	return t.Name()
}

// IsEmpty reports whether v is nullish or a zero-length string, array,
// object or host collection.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil, absent:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Lengther:
		return t.Len() == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}

	return false
}

// StrictEqual compares without coercion. Numbers compare by value; arrays,
// objects and functions compare by identity.
func StrictEqual(a, b any) bool {
	if na, ok := numberValue(a); ok {
		nb, ok := numberValue(b)

		return ok && na == nb
	}

	switch ta := a.(type) {
	case nil:
		return b == nil
	case absent:
		return IsAbsent(b)
	case string:
		tb, ok := b.(string)

		return ok && ta == tb
	case bool:
		tb, ok := b.(bool)

		return ok && ta == tb
	}

	if b == nil {
		return false
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() { //nolint:exhaustive
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan:
		return ra.Pointer() == rb.Pointer()
	}

	if ra.Type().Comparable() {
		return a == b
	}

	return false
}

// LooseEqual compares with coercion: null and undefined equal each other,
// and a number compared with a string or boolean compares numerically.
func LooseEqual(a, b any) bool {
	if IsNullish(a) || IsNullish(b) {
		return IsNullish(a) && IsNullish(b)
	}

	if TypeOf(a) == TypeOf(b) {
		return StrictEqual(a, b)
	}

	_, aNum := numberValue(a)
	_, bNum := numberValue(b)
	_, aBool := a.(bool)
	_, bBool := b.(bool)
	_, aStr := a.(string)
	_, bStr := b.(string)

	if (aNum || aBool || aStr) && (bNum || bBool || bStr) {
		return ToNumber(a) == ToNumber(b)
	}

	if aStr || bStr {
		return ToString(a) == ToString(b)
	}

	return StrictEqual(a, b)
}

// Compare orders a and b. Two strings compare lexically, anything else
// numerically. ok is false when the values are unordered (NaN).
func Compare(a, b any) (cmp int, ok bool) {
	sa, aStr := a.(string)
	sb, bStr := b.(string)

	if aStr && bStr {
		return strings.Compare(sa, sb), true
	}

	na, nb := ToNumber(a), ToNumber(b)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return 0, false
	}

	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	default:
		return 0, true
	}
}

// Add implements "+": string concatenation if either operand is a string,
// numeric addition otherwise.
func Add(a, b any) any {
	_, aStr := a.(string)
	_, bStr := b.(string)

	if aStr || bStr {
		return ToString(a) + ToString(b)
	}

	return ToNumber(a) + ToNumber(b)
}

// Arithmetic applies one of "-", "*", "/" or "%" numerically.
// Division by zero yields an infinity (or NaN for 0/0), never an error.
func Arithmetic(op string, a, b any) (any, error) {
	x, y := ToNumber(a), ToNumber(b)

	switch op {
	case "+":
		return Add(a, b), nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/":
		return x / y, nil
	case "%":
		return math.Mod(x, y), nil
	}

	return nil, ErrUnsupportedOperator.With(attrOperator(op))
}

// Contains reports whether collection holds item: membership for arrays,
// key presence for objects, substring for strings.
func Contains(collection, item any) bool {
	switch c := collection.(type) {
	case nil, absent:
		return false
	case string:
		return strings.Contains(c, ToString(item))
	case []any:
		for _, e := range c {
			if LooseEqual(e, item) {
				return true
			}
		}

		return false
	case map[string]any:
		_, ok := c[ToString(item)]

		return ok
	case interface{ Contains(any) bool }:
		return c.Contains(item)
	}

	return false
}

// ToArray returns v as a []any. Nullish values become an empty array,
// scalars become a one-element array.
func ToArray(v any) []any {
	switch t := v.(type) {
	case nil, absent:
		return []any{}
	case []any:
		return t
	case map[string]any:
		out := make([]any, 0, len(t))
		for _, k := range sortedKeys(t) {
			out = append(out, t[k])
		}

		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}

		return out
	}

	return []any{v}
}

// callValue invokes fn with receiver this. Plain Go functions of shape
// func(...any) any are accepted alongside [Callable].
func callValue(ctx context.Context, fn, this any, args []any) (any, error) {
	switch f := fn.(type) {
	case Callable:
		return f.Call(ctx, this, args)
	case func(args ...any) any:
		return f(args...), nil
	case func(args ...any) (any, error):
		return f(args...)
	}

	return nil, ErrNotCallable.With(attrType(fn))
}

// isCallable reports whether callValue accepts fn.
func isCallable(fn any) bool {
	switch fn.(type) {
	case Callable, func(args ...any) any, func(args ...any) (any, error):
		return true
	}

	return false
}

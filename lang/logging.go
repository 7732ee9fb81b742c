package lang

import (
	"log/slog"
	"sort"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func attrName(name string) slog.Attr   { return slog.String("name", name) }
func attrKind(kind Kind) slog.Attr     { return slog.String("kind", string(kind)) }
func attrOperator(op string) slog.Attr { return slog.String("operator", op) }
func attrKey(key string) slog.Attr     { return slog.String("key", key) }

func attrType(v any) slog.Attr {
	return slog.String("type", TypeName(v))
}

// attrValue renders v for trace records without forcing large values
// through the handler.
func attrValue(v any) slog.Attr {
	s := ToString(v)
	if len(s) > 64 {
		s = s[:61] + "..."
	}

	return slog.String("value", s)
}

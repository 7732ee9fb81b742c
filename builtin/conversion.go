package builtin

import (
	"context"

	"github.com/ardnew/hypereval/lang"
)

// conversionTargets maps the call form of each conversion to the type name
// accepted by the "as" operator.
var conversionTargets = map[string]string{
	"toString":  "String",
	"toNumber":  "Number",
	"toInt":     "Int",
	"toFloat":   "Float",
	"toBoolean": "Boolean",
	"toArray":   "Array",
	"toJSON":    "JSON",
	"toObject":  "Object",
}

func conversions() []entry {
	out := []entry{binary(lang.OpAs, CategoryConversion)}

	for name, target := range conversionTargets {
		out = append(out, stock(name, CategoryConversion,
			func(_ context.Context, _ *lang.ExecutionContext, args ...any) (any, error) {
				return lang.Convert(args[0], target)
			},
			lang.Arity(1, 1),
		))
	}

	return out
}

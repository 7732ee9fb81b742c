package lang

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Export converts a value to plain data for serialization: [Absent]
// becomes nil and host values are rendered through [ToString] unless they
// implement json.Marshaler.
func Export(v any) any {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t
	case absent:
		return nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Export(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Export(e)
		}

		return out
	case json.Marshaler:
		return t
	}

	if n, ok := numberValue(v); ok {
		return jsonValue(n)
	}

	return ToString(v)
}

// FormatText writes v in its DSL string form followed by a newline.
func FormatText(_ context.Context, w io.Writer, v any) error {
	_, err := fmt.Fprintln(w, ToString(v))

	return err
}

// FormatJSON writes v as JSON. A positive indent pretty-prints.
func FormatJSON(_ context.Context, w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(jsonValue(Export(v)), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(jsonValue(Export(v)))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes v as YAML. A zero indent writes flow style.
func FormatYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, Export(v), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

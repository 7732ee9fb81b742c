package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/hypereval/lang"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// write renders v to w in the named format.
func write(ctx context.Context, w io.Writer, v any, format string, indent int) error {
	switch format {
	case FormatText, "":
		return lang.FormatText(ctx, w, v)

	case FormatJSON:
		return lang.FormatJSON(ctx, w, v, indent)

	case FormatYAML:
		return lang.FormatYAML(ctx, w, v, indent)
	}

	return ErrUnknownFormat.With(slog.String("format", format))
}

package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// Fmt re-encodes a syntax tree in canonical form. Aliased kind tags are
// rewritten to their canonical names and unknown keys are dropped.
type Fmt struct {
	JSON JSON `cmd:"" default:"withargs" help:"Format as JSON (default)."`
	YAML YAML `cmd:""                    help:"Format as YAML."`
}

// JSON formats a syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width, 0 for a single line" short:"i"`

	Source string `arg:"" default:"-" help:"Syntax tree file or '-' for stdin" name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return reformat(ctx, j.Source, FormatJSON, j.Indent)
}

// YAML formats a syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width, 0 for flow style" short:"i"`

	Source string `arg:"" default:"-" help:"Syntax tree file or '-' for stdin" name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return reformat(ctx, y.Source, FormatYAML, y.Indent)
}

func reformat(ctx context.Context, source, format string, indent int) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	in, err := openInput(ctx, source)
	if err != nil {
		return err
	}
	defer in.Close()

	node, err := lang.DecodeReader(ctx, in, log.Default())
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", format))
	}

	return write(ctx, outputFrom(ctx), lang.EncodeNode(node), format, indent)
}

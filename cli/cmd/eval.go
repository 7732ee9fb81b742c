package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// Eval evaluates a syntax tree read as JSON or YAML.
type Eval struct {
	Env `embed:""`

	Output string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})" short:"o"`
	Indent int    `default:"2"                          help:"Indent width for json and yaml output" short:"i"`

	Source string `arg:"" default:"-" help:"Syntax tree file or '-' for stdin" name:"source"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	in, err := openInput(ctx, e.Source)
	if err != nil {
		return err
	}
	defer in.Close()

	node, err := lang.DecodeReader(ctx, in, logger)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	s, err := e.Open(ctx, logger)
	if err != nil {
		return err
	}

	v, err := s.Runtime.Run(ctx, node, s.Context)
	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "eval"),
				slog.String("source", e.Source),
			)
	}

	return write(ctx, outputFrom(ctx), v, e.Output, e.Indent)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/hypereval/lang"
	"github.com/ardnew/hypereval/log"
)

// Interp interpolates ${...} markers in a template.
type Interp struct {
	Env `embed:""`

	Expr  string   `help:"Template text, used instead of files" short:"e"`
	Files []string `arg:"" help:"Template files or '-' for stdin, read in order" name:"file" optional:"" type:"existingfile"`
}

// Run executes the interp command.
func (i *Interp) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	tmpl, err := i.template(ctx)
	if err != nil {
		return err
	}

	s, err := i.Open(ctx, logger)
	if err != nil {
		return err
	}

	out, err := s.Runtime.Interpolate(ctx, tmpl, s.Context)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "interp"))
	}

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	_, err = fmt.Fprint(outputFrom(ctx), out)

	return err
}

// template returns the inline template, or the content of the template
// files. Without either, the template is read from the context's input.
func (i *Interp) template(ctx context.Context) (string, error) {
	if i.Expr != "" {
		return i.Expr, nil
	}

	paths := i.Files
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	src := OpenSources(paths, inputFrom(ctx))
	if src == nil {
		return "", ErrNoTemplate.With(slog.Any("files", i.Files))
	}
	defer src.Close()

	var sb strings.Builder
	if _, err := io.Copy(&sb, src); err != nil {
		return "", lang.ErrReadInput.Wrap(err)
	}

	return sb.String(), nil
}

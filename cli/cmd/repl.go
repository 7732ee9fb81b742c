package cmd

import (
	"context"

	"github.com/ardnew/hypereval/cli/cmd/repl"
	"github.com/ardnew/hypereval/log"
)

// Repl starts an interactive session over a runtime assembled from [Env].
type Repl struct {
	Env `embed:""`

	History string `default:"${cache}/history" help:"History file (empty disables history)" placeholder:"FILE" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	s, err := r.Open(ctx, logger)
	if err != nil {
		return err
	}

	return repl.Run(ctx, s.Runtime, s.Context, r.History, logger)
}

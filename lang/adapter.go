package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/hypereval/log"
)

// Adapter wraps a loaded [Implementation] behind the uniform invocation
// surface the command dispatcher uses.
type Adapter struct {
	impl Implementation
}

// NewAdapter wraps impl.
func NewAdapter(impl Implementation) *Adapter {
	return &Adapter{impl: impl}
}

func (a *Adapter) Name() string     { return a.impl.Name() }
func (a *Adapter) Category() string { return a.impl.Category() }

// Implementation returns the wrapped implementation.
func (a *Adapter) Implementation() Implementation { return a.impl }

// Execute validates args and evaluates the wrapped implementation.
func (a *Adapter) Execute(
	ctx context.Context,
	ec *ExecutionContext,
	args ...any,
) (any, error) {
	return invoke(ctx, ec, a.impl, args...)
}

// Commands resolves command adapters by name through a [LazyRegistry], so a
// command's implementation is loaded once, on first use, and every caller
// shares the same adapter.
type Commands struct {
	lazy   *LazyRegistry[*Adapter]
	logger log.Logger
}

// NewCommands returns an empty command set.
func NewCommands(logger log.Logger) *Commands {
	return &Commands{
		lazy:   NewLazyRegistry[*Adapter](logger),
		logger: logger,
	}
}

// Define declares a command whose implementation is produced by load.
func (c *Commands) Define(
	name, category string,
	load LoadFunc[Implementation],
) {
	c.lazy.Define(name, category, func(ctx context.Context) (*Adapter, error) {
		impl, err := load(ctx)
		if err != nil {
			return nil, err
		}

		return NewAdapter(impl), nil
	})
}

// GetAdapter returns the adapter for name, loading it on first request.
func (c *Commands) GetAdapter(ctx context.Context, name string) (*Adapter, error) {
	return c.lazy.GetEntry(ctx, name)
}

// Has reports whether name is a defined command, without loading it.
func (c *Commands) Has(name string) bool { return c.lazy.Has(name) }

// IsValid reports whether name is defined and has not failed to load.
func (c *Commands) IsValid(name string) bool { return c.lazy.IsValid(name) }

// CommandNames returns every defined command name in lexical order.
func (c *Commands) CommandNames() []string { return c.lazy.Keys() }

// Warmup loads the named commands concurrently. With no names, every
// defined command is loaded.
func (c *Commands) Warmup(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = c.lazy.Keys()
	}

	c.logger.DebugContext(ctx, "warm up commands", slog.Int("count", len(names)))

	return c.lazy.WarmUp(ctx, names...)
}

// Execute resolves name and runs it with args.
func (c *Commands) Execute(
	ctx context.Context,
	ec *ExecutionContext,
	name string,
	args ...any,
) (any, error) {
	a, err := c.GetAdapter(ctx, name)
	if err != nil {
		return nil, err
	}

	return a.Execute(ctx, ec, args...)
}

// Loader exposes the underlying registry for status and statistics.
func (c *Commands) Loader() *LazyRegistry[*Adapter] { return c.lazy }

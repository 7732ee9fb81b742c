package cli

import (
	"context"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hypereval/builtin"
	"github.com/ardnew/hypereval/cli/cmd"
	"github.com/ardnew/hypereval/pkg"
)

// defaultDirMode is the permission mode of created runtime directories.
const defaultDirMode os.FileMode = 0o700

// CLI is the top-level command-line interface for hypereval.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Eval   cmd.Eval   `cmd:"" default:"withargs" help:"Evaluate a syntax tree"`
	Interp cmd.Interp `cmd:""                    help:"Interpolate a template"`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session"`
	List   cmd.List   `cmd:""                    help:"List builtins and operators"`
	Fmt    cmd.Fmt    `cmd:""                    help:"Format a syntax tree"`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the hypereval CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) (err error) {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		"version":                pkg.Version(),
		cmd.ConfigIdentifier:     pkg.ConfigFile(),
		cmd.CacheIdentifier:      pkg.CacheDir(),
		cmd.CategoriesIdentifier: strings.Join(builtin.Categories(), ","),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancelCause(ctx)
	defer func(err *error) { cancel(*err) }(&err)

	// Pre-scan for logger flags so that they apply regardless of position,
	// including to messages reported while loading the config file.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx), pkg.ConfigFile()),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Apply settings without an UnmarshalText hook, such as the time layout,
	// now that the config file and command line are both parsed.
	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// Package cli contains the command line interface for hypereval.
//
// # Usage
//
// With no command, arguments are passed to eval:
//
//	hypereval tree.json --document page.html --context ctx.yaml
//	hypereval interp -e 'Hello, ${user.name}' --context ctx.yaml
//	hypereval repl --document page.html
//
// # Configuration
//
// Flags are read from $XDG_CONFIG_HOME/hypereval/config.yaml before the
// command line. The file is YAML: top-level keys name application flags and
// a mapping keyed by a command name holds that command's flags.
//
//	log-level: debug
//	eval:
//	  output: json
//
// The init command writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (rfc3339, kitchen, ms, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Logger flags are applied before the command line is parsed, so they
// affect messages reported while parsing.
//
// # Profiling Options
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default
//     ~/.cache/hypereval/pprof)
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o hypereval .
package cli

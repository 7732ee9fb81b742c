package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/hypereval/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// Top-level keys name application flags. A mapping keyed by a command name
// holds flags of that command, and takes precedence over the top level:
//
//	log-level: debug
//	log-pretty: true
//	repl:
//	  history: ~/.hypereval_history
//
// Flag names may use underscores in place of hyphens (log_level).
// Command-line flags override config file values.
//
// A config file that does not decode is reported and otherwise ignored so
// that a broken file can be replaced with init --force.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		values := map[string]any{}

		err := yaml.NewDecoder(r).DecodeContext(ctx, &values)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid configuration",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		return config(values), nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	for _, section := range c.sections(parent) {
		if v, ok := section.lookup(flag.Name); ok {
			return flagValue(v), nil
		}
	}

	// Not found: kong uses the default.
	return nil, nil //nolint:nilnil
}

// sections returns the mappings that may hold flags of the command at
// parent, innermost command first and the top level last.
func (c config) sections(parent *kong.Path) []config {
	var names []string

	if parent != nil {
		for node := parent.Node(); node != nil && node.Type == kong.CommandNode; node = node.Parent {
			names = append([]string{node.Name}, names...)
		}
	}

	out := []config{c}

	section := c
	for _, name := range names {
		sub, ok := section.lookup(name)
		if !ok {
			break
		}

		m, ok := sub.(map[string]any)
		if !ok {
			break
		}

		section = config(m)
		out = append([]config{section}, out...)
	}

	return out
}

func (c config) lookup(name string) (any, bool) {
	if v, ok := c[name]; ok {
		return v, true
	}

	v, ok := c[strings.ReplaceAll(name, "-", "_")]

	return v, ok
}

// flagValue converts a decoded YAML value to a form kong's mappers accept.
// Numbers become strings and sequences become comma-separated lists.
// Mappings are ignored.
func flagValue(v any) any {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := flagValue(item).(string); ok {
				items = append(items, s)
			} else if b, ok := item.(bool); ok {
				items = append(items, strconv.FormatBool(b))
			}
		}

		return strings.Join(items, ",")
	case map[string]any:
		return nil
	}

	return v
}

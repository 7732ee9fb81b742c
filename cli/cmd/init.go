package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/hypereval/log"
	"github.com/ardnew/hypereval/profile"
)

// ConfigIdentifier is the kong variable holding the configuration file path.
const ConfigIdentifier = "config"

// CacheIdentifier is the kong variable holding the cache directory path.
const CacheIdentifier = "cache"

// defaultConfigIndent is the indent width of the generated configuration.
const defaultConfigIndent = 2

// Init writes a configuration file holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrConfigPath
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok || confPath == "" {
		return ErrConfigPath
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, settings(ktx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// settings collects the application-level flag values worth persisting.
func settings(ktx *kong.Context) map[string]any {
	ignore := []string{"help", "version", profile.Tag}

	out := map[string]any{}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := settingValue(ktx.FlagValue(flag)); ok {
			out[flag.Name] = v
		}
	}

	return out
}

// settingValue returns the YAML value of a flag, or false when the flag is
// unset or empty.
func settingValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false

	case string:
		return t, t != ""

	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return t, true

	case []string:
		return t, len(t) > 0

	case []int:
		return t, len(t) > 0

	case []float64:
		return t, len(t) > 0

	case []bool:
		return t, len(t) > 0

	case interface{ String() string }:
		s := t.String()

		return s, s != ""
	}

	// Named string and bool types, such as enumerated flag values.
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0
	case reflect.Bool:
		return rv.Bool(), true
	}

	return nil, false
}

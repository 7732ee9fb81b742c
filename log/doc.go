// Package log provides a concurrency-safe structured logger built on
// [log/slog].
//
// A [Logger] is a small value that can be copied freely. Its zero value
// discards every record, which lets library types embed a Logger without
// forcing callers to configure one.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("evaluation finished", slog.Int("nodes", 12))
//
// # Configuration
//
// Loggers are configured at creation time using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("ms"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a new logger from an existing configuration, and
// [Config] does the same for the package default logger used by the
// package-level functions such as [Info] and [ErrorContext].
//
// # Levels
//
// In addition to the four [slog] levels, the package defines [LevelTrace]
// for high-volume diagnostics. Records render it as "TRACE".
//
// # Output Formats
//
// Records are written as [FormatText] (default) or [FormatJSON]. With
// [WithPretty] enabled, the same formats are styled with lipgloss for
// display in a terminal.
package log

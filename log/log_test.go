package log

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

func decodeRecord(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var rec map[string]any
	if err := json.Unmarshal(b, &rec); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", b, err)
	}

	return rec
}

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(nil)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Error("expected caller and pretty defaults")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger, string, ...slog.Attr)
		minLevel Level
		logged   bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at debug", Logger.Debug, LevelDebug, true},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at warn", Logger.Info, LevelWarn, false},
		{"warn at warn", Logger.Warn, LevelWarn, true},
		{"error at debug", Logger.Error, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.logFunc(Make(&buf, WithLevel(tt.minLevel)), "filtered")

			if logged := buf.Len() > 0; logged != tt.logged {
				t.Errorf("expected logged=%v, got output %q", tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_JSON_LevelNames(t *testing.T) {
	tests := []struct {
		logFunc func(Logger, string, ...slog.Attr)
		want    string
	}{
		{Logger.Trace, "TRACE"},
		{Logger.Debug, "DEBUG"},
		{Logger.Info, "INFO"},
		{Logger.Warn, "WARN"},
		{Logger.Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
			tt.logFunc(logger, "named", slog.Int("n", 1))

			rec := decodeRecord(t, buf.Bytes())
			if rec["level"] != tt.want {
				t.Errorf("expected level %q, got %v", tt.want, rec["level"])
			}

			if rec["msg"] != "named" || rec["n"] != float64(1) {
				t.Errorf("unexpected record %v", rec)
			}
		})
	}
}

func TestLogger_WithCaller_ReportsCallSite(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithCaller(true)).Info("here")

	rec := decodeRecord(t, buf.Bytes())

	src, ok := rec["source"].(map[string]any)
	if !ok {
		t.Fatalf("expected source in record, got %v", rec)
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("expected caller in log_test.go, got %v", src["file"])
	}

	buf.Reset()
	Make(&buf, WithFormat(FormatJSON)).Info("here")

	if _, ok := decodeRecord(t, buf.Bytes())["source"]; ok {
		t.Error("expected no source when caller is disabled")
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var first, second bytes.Buffer

	base := Make(&first, WithLevel(LevelWarn), WithFormat(FormatJSON))
	wrapped := base.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	base.Debug("dropped")
	wrapped.Debug("kept")

	if first.Len() != 0 {
		t.Errorf("expected base to keep its level, got %q", first.String())
	}

	if rec := decodeRecord(t, second.Bytes()); rec["msg"] != "kept" {
		t.Errorf("expected wrapped output, got %v", rec)
	}

	if wrapped.Format() != FormatJSON {
		t.Error("expected wrapped logger to inherit its format")
	}

	var zero Logger
	if zero.Wrap(WithLevel(LevelError)).Level() != LevelError {
		t.Error("expected zero value to wrap into a configured logger")
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON)).
		With(slog.String("runtime", "r1")).
		WithGroup("node")

	logger.Info("visit", slog.String("type", "literal"))

	rec := decodeRecord(t, buf.Bytes())
	if rec["runtime"] != "r1" {
		t.Errorf("expected runtime attribute, got %v", rec)
	}

	node, ok := rec["node"].(map[string]any)
	if !ok || node["type"] != "literal" {
		t.Errorf("expected grouped attribute, got %v", rec)
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var l Logger

	l.Trace("test")
	l.Debug("test")
	l.Info("test")
	l.Warn("test")
	l.Error("test")
	l.TraceContext(t.Context(), "test")
	l.DebugContext(t.Context(), "test")

	if l.Enabled(t.Context(), LevelError) {
		t.Error("expected zero value to be disabled")
	}

	if l.With(slog.String("key", "value")).Logger != nil {
		t.Error("expected nil logger from zero value With")
	}

	if l.WithGroup("g").Logger != nil {
		t.Error("expected nil logger from zero value WithGroup")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("expected zero value to report defaults")
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON))

	var wg sync.WaitGroup

	for i := range 100 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("concurrent message", slog.Int("id", i))
		})
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	b.Run("plain", func(b *testing.B) {
		var buf bytes.Buffer

		logger := Make(&buf)

		for b.Loop() {
			logger.Info("benchmark message", slog.Int("iteration", 1))
		}
	})

	b.Run("caller", func(b *testing.B) {
		var buf bytes.Buffer

		logger := Make(&buf, WithCaller(true))

		for b.Loop() {
			logger.Info("benchmark message", slog.Int("iteration", 1))
		}
	})

	b.Run("disabled", func(b *testing.B) {
		logger := Make(nil, WithLevel(LevelError))

		for b.Loop() {
			logger.Trace("benchmark message", slog.Int("iteration", 1))
		}
	})
}

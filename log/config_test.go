package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_Options_SetFields(t *testing.T) {
	c := apply(config{},
		WithLevel(LevelWarn),
		WithFormat(FormatJSON),
		WithCaller(true),
		WithPretty(true),
		nil,
	)

	if c.level != LevelWarn {
		t.Errorf("expected level %v, got %v", LevelWarn, c.level)
	}

	if c.format != FormatJSON {
		t.Errorf("expected format %v, got %v", FormatJSON, c.format)
	}

	if !c.caller || !c.pretty {
		t.Errorf("expected caller and pretty enabled, got %v %v", c.caller, c.pretty)
	}

	if c.mutex == nil {
		t.Error("expected options to allocate a mutex")
	}
}

func TestConfig_Clone_IsIndependent(t *testing.T) {
	base := makeConfig(nil, WithLevel(LevelDebug))
	derived := base.clone(WithLevel(LevelError))

	if base.level != LevelDebug || derived.level != LevelError {
		t.Errorf("expected independent levels, got %v and %v", base.level, derived.level)
	}

	if base.mutex == derived.mutex {
		t.Error("expected clone to allocate its own mutex")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{" TRACE ", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"Error", LevelError},
		{"info+2", LevelInfo + 2},
		{"verbose", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" JSON\n", FormatJSON},
		{"text", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestLevels_Formats_Names(t *testing.T) {
	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("unexpected levels %v", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("unexpected formats %v", got)
	}

	if got := Level(2).String(); got != "Level(2)" {
		t.Errorf("expected fallback name, got %q", got)
	}

	// early break
	for range Levels() {
		break
	}
}

func TestConfig_FormatTime(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"rfc3339", "RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc3339 nano", "rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"kitchen", "Kitchen", "2:30PM"},
		{"milliseconds shorthand", "ms", "Oct 15 14:30:45.123"},
		{"custom layout verbatim", "  2006-01-02 15:04:05.000", "  2023-10-15 14:30:45.123"},
		{"none", "none", ""},
		{"empty", "", ""},
		{"whitespace only", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := WithTimeLayout(tt.layout)(config{})

			if got := c.formatTime(now); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConfig_Handler_OmitsDisabledTimestamp(t *testing.T) {
	var sb strings.Builder

	l := Make(&sb, WithTimeLayout("none"), WithFormat(FormatText))
	l.Info("stamp")

	if strings.Contains(sb.String(), "time=") {
		t.Errorf("expected no time field, got %s", sb.String())
	}
}

func BenchmarkConfig_FormatTime(b *testing.B) {
	for _, layout := range []string{"RFC3339", "RFC3339Nano"} {
		b.Run(layout, func(b *testing.B) {
			c := WithTimeLayout(layout)(config{})
			now := time.Now()

			for b.Loop() {
				_ = c.formatTime(now)
			}
		})
	}
}

package cli

import (
	"os"
	"testing"

	"github.com/ardnew/hypereval/log"
)

func TestLogConfig_Scan(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "assigned",
			args: []string{"--log-level=debug", "--log-format=json", "eval"},
			want: logConfig{Level: "debug", Format: "json"},
		},
		{
			name: "separate values",
			args: []string{"eval", "--log-level", "trace", "--log-time-layout", "none"},
			want: logConfig{Level: "trace", TimeLayout: "none"},
		},
		{
			name: "booleans",
			args: []string{"--log-pretty", "--log-caller=false"},
			want: logConfig{Pretty: true},
		},
		{
			name: "negated",
			args: []string{"--log-caller", "--no-log-caller", "--no-log-pretty=false"},
			want: logConfig{Pretty: true},
		},
		{
			name: "stops at terminator",
			args: []string{"--", "--log-level=error"},
			want: logConfig{},
		},
		{
			name: "ignores other flags",
			args: []string{"--level=warn", "-o", "json", "--logs"},
			want: logConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got logConfig

			got.scan(tt.args)

			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLogConfig_Start(t *testing.T) {
	t.Cleanup(func() { log.Config(log.WithDefaults(os.Stderr)) })

	cfg := logConfig{Level: "warn", Format: "json", TimeLayout: "none"}
	cfg.start(t.Context())

	if got := log.Default().Level(); got != log.LevelWarn {
		t.Errorf("expected level %v, got %v", log.LevelWarn, got)
	}

	if got := log.Default().Format(); got != log.FormatJSON {
		t.Errorf("expected format %v, got %v", log.FormatJSON, got)
	}
}

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "WARNING", "Test")

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warning("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARNING were written: %q", out)
	}
	if !strings.Contains(out, "[Test] WARNING: warn 3") {
		t.Errorf("missing warning line: %q", out)
	}
	if !strings.Contains(out, "[Test] ERROR: error 4") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestNamedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "DEBUG", "Root").Named("Child")
	l.Debug("hello")
	if !strings.Contains(buf.String(), "[Child] DEBUG: hello") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarning,
		"WARNING": LevelWarning,
		"Error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

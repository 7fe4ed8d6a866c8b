package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelWarn, &buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below level were written:\n%s", out)
	}
	if !strings.Contains(out, `msg="warn 3"`) || !strings.Contains(out, "level=WARN") {
		t.Errorf("warn missing:\n%s", out)
	}
	if !strings.Contains(out, `msg="error 4"`) || !strings.Contains(out, "level=ERROR") {
		t.Errorf("error missing:\n%s", out)
	}

	buf.Reset()
	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("SetLevel(LevelDebug) did not enable debug")
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelInfo, &buf).With("component", "logserver")

	l.Info("listening on %s", ":3001")

	out := buf.String()
	if !strings.Contains(out, "component=logserver") {
		t.Errorf("attribute missing:\n%s", out)
	}
	if !strings.Contains(out, "listening on :3001") {
		t.Errorf("message missing:\n%s", out)
	}
}

func TestLogger_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := NewWithWriter(LevelInfo, &first)
	child := l.With("k", "v")

	l.SetOutput(&second)
	child.Info("moved")

	if first.Len() != 0 {
		t.Errorf("old writer got %q", first.String())
	}
	if !strings.Contains(second.String(), "moved") {
		t.Error("child logger did not follow SetOutput")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
	if l.Slog().Enabled(context.Background(), LevelError.slog()) {
		t.Error("Discard logger enabled at error level")
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "WARN" || Level(42).String() != "UNKNOWN" {
		t.Error("unexpected Level.String output")
	}
}

// ABOUTME: Tests for the levelled logger: filtering, output redirection, level parsing
// ABOUTME: Not parallel; the logger is process-global

package log

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T, l int64) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	savedLevel := GetLevel()
	level.Store(l)
	t.Cleanup(func() {
		SetOutput(prev)
		SetLevel(savedLevel)
	})
	return &buf
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := capture(t, int64(LevelInfo))

	Debug("hidden %s", "line")
	Info("shown %d", 1)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug line leaked at info level: %q", got)
	}
	if !strings.Contains(got, "[INFO] shown 1") {
		t.Errorf("info line missing: %q", got)
	}
}

func TestErrorAlwaysEmitted(t *testing.T) {
	buf := capture(t, int64(LevelError)+4)

	Warn("quiet")
	Error("loud %s", "failure")

	got := buf.String()
	if strings.Contains(got, "quiet") {
		t.Errorf("warn emitted above its level: %q", got)
	}
	if !strings.Contains(got, "[ERROR] loud failure") {
		t.Errorf("error line missing: %q", got)
	}
}

func TestAllLevelsAtDebug(t *testing.T) {
	buf := capture(t, int64(LevelDebug))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4: %q", len(lines), buf.String())
	}
	for i, prefix := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %s", i, lines[i], prefix)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"WARN", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in).String(); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSetOutputNilDiscards(t *testing.T) {
	prev := SetOutput(nil)
	defer SetOutput(prev)

	Error("goes nowhere")
}

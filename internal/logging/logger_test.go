package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{" warning ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: FormatJSON, Output: &buf})

	l.Info().Msg("dropped")
	l.Warn().Str("key", "property:1").Msg("cache set failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["level"] != "warn" || entry["key"] != "property:1" || entry["message"] != "cache set failed" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestNew_ConsoleAndCaller(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: FormatConsole, Caller: true, Output: &buf})

	l.Debug().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("output %q does not contain the message", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console output looks like JSON: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("output %q has no caller", out)
	}
}

func TestInit_ReplacesGlobal(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	})

	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	l := Logger()
	l.Info().Msg("global")

	if !strings.Contains(buf.String(), `"message":"global"`) {
		t.Errorf("global logger wrote %q", buf.String())
	}
}

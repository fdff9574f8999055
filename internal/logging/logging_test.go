package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNew_WithoutFile(t *testing.T) {
	log, closer, err := New(slog.LevelInfo, "")
	if err != nil {
		t.Fatal(err)
	}
	defer closer()
	if log == nil {
		t.Fatal("expected logger")
	}
	if log.Enabled(nil, slog.LevelDebug) {
		t.Error("debug should be suppressed at info level")
	}
}

func TestNew_WithFile(t *testing.T) {
	path := t.TempDir() + "/app.log"
	log, closer, err := New(slog.LevelDebug, path)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello", "key", "value")
	if err := closer(); err != nil {
		t.Fatal(err)
	}
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"":      log.InfoLevel,
		"debug": log.DebugLevel,
		"info":  log.InfoLevel,
		"warn":  log.WarnLevel,
		"error": log.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	l, c, err := New(Options{Level: "loud"})
	if err == nil || l != nil {
		t.Fatalf("logger %v err %v", l, err)
	}
	if c == nil || c.Close() != nil {
		t.Error("closer must be usable on error")
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "maccis.log")
	l, c, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("shader reloaded", "name", "3d")
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"maccis", "shader reloaded", "name=3d"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestNewLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maccis.log")
	l, c, err := New(Options{Level: "warn", File: path, Prefix: "test"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if l.GetLevel() != log.WarnLevel || l.GetPrefix() != "test" {
		t.Errorf("level %v prefix %q", l.GetLevel(), l.GetPrefix())
	}
	l.Info("hidden")
	l.Warn("shown")
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Errorf("log = %q", data)
	}
}

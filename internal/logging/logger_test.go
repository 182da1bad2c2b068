package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestNewJSON_WritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, LevelInfo)

	l.Debug("hidden")
	l.With("component", "feed").Warn("fetch failed", "match_id", "m1", "error", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := sonic.UnmarshalString(lines[0], &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	want := map[string]any{
		"level":     "WARN",
		"msg":       "fetch failed",
		"component": "feed",
		"match_id":  "m1",
		"error":     "boom",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Fatalf("entry[%q] = %v, want %v", k, entry[k], v)
		}
	}
}

func TestZapFields_OddArgs(t *testing.T) {
	fields := zapFields([]any{"a", 1, 2, "b", "dangling"})
	if len(fields) != 3 {
		t.Fatalf("len(fields) = %d, want 3", len(fields))
	}
	if fields[1].Key != "arg" {
		t.Fatalf("non-string key = %q, want arg", fields[1].Key)
	}
	if fields[2].Key != "dangling" {
		t.Fatalf("dangling key = %q, want dangling", fields[2].Key)
	}
}

func TestNewFile_CreatesDirAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pitchside.log")

	l, err := NewFile(path, LevelDebug)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	l.Info("hello")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("log file = %q, want hello entry", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

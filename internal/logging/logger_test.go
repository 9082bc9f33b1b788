package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "prod", slog.LevelInfo, "temperature-quilt")

	logger.Debug("hidden")
	logger.Info("hello", "k", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "hello" || rec["app"] != "temperature-quilt" || rec["env"] != "prod" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "dev", slog.LevelDebug, "temperature-quilt")
	logger.Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}

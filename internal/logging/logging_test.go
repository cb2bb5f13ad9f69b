package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, true)
	Component("eda").Info("chart written", "step", "heatmap")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log %q: %v", buf.String(), err)
	}
	if rec["component"] != "eda" || rec["step"] != "heatmap" || rec["msg"] != "chart written" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, false)
	Component("x").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line leaked at info level: %q", buf.String())
	}
	Component("x").Warn("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestWithContextRunID(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, false)
	ctx := ContextWithRunID(context.Background(), "run-1")
	WithContext(ctx, "cli").Info("start")
	if !strings.Contains(buf.String(), "run_id=run-1") || !strings.Contains(buf.String(), "component=cli") {
		t.Fatalf("missing attrs: %q", buf.String())
	}
	if RunID(context.Background()) != "" {
		t.Fatal("expected empty run id")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "warning": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
}

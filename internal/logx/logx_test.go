package logx

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"reelforge/internal/paths"
)

func TestBuildSplitsLevels(t *testing.T) {
	var file, console bytes.Buffer
	logger := build(&file, &console, false)
	logger.Info("placed clip", zap.String("section", "intro"))
	logger.Warn("music degraded", zap.String("reason", "probe failed"))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 file lines, got %d: %q", len(lines), file.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("file line is not JSON: %v", err)
	}
	if entry["section"] != "intro" {
		t.Fatalf("expected section field, got %v", entry)
	}

	if strings.Contains(console.String(), "placed clip") {
		t.Fatalf("info should not reach console: %q", console.String())
	}
	if !strings.Contains(console.String(), "music degraded") {
		t.Fatalf("warn should reach console: %q", console.String())
	}
}

func TestNewCreatesLogFile(t *testing.T) {
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	logger, closer, err := New(pp, false)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()
	closer.Close()

	entries, err := os.ReadDir(pp.LogsDir)
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".log") {
		t.Fatalf("expected one .log file, got %v", entries)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected non-nil logger")
	}
}

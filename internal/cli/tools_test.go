package cli

import (
	"bytes"
	"strings"
	"testing"

	"reelforge/internal/tools"
)

func TestWriteToolsTable(t *testing.T) {
	report := toolsReport{
		Tools: []tools.Status{
			{Tool: "ffmpeg", Version: "6.1.1", Minimum: "4.4", Path: "/usr/bin/ffmpeg", Satisfied: true},
			{Tool: "ffprobe", Minimum: "4.4", Error: "ffprobe not found", Notes: []string{"install: brew install ffmpeg"}},
		},
		Encoder: &encoderReport{Preferred: "h264_nvenc", Resolved: "libx264", FellBack: true},
	}

	var buf bytes.Buffer
	writeToolsTable(&buf, report)
	out := buf.String()

	for _, want := range []string{
		"/usr/bin/ffmpeg",
		"(missing)",
		"ffprobe: ffprobe not found",
		"hint: install: brew install ffmpeg",
		"encoder: libx264 (h264_nvenc unavailable), libass no",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

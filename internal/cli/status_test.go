package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/assets"
	"reelforge/internal/render/state"
	"reelforge/pkg/contentplan"
)

func TestBuildStatusRows(t *testing.T) {
	root := "/proj"
	plan := contentplan.Plan{
		Sections: []contentplan.Section{
			{ID: "hook", Title: "Hook", HighlightKeywords: []string{"sky"}},
			{ID: "body"},
		},
		CTAScript: "Follow.",
	}
	manifest := assets.Manifest{
		Narration: []assets.NarrationSegment{
			{SectionID: "hook", Path: filepath.Join(root, "audio", "hook.wav")},
		},
		Visuals: []assets.VisualCandidate{
			{SectionID: "hook", Path: "/proj/a.mp4"},
			{SectionID: "hook", Path: "/proj/b.mp4"},
			{SectionID: "cta", Path: "/proj/c.jpg"},
		},
		WordTimings: map[string][]assets.WordTiming{
			"hook": {{Word: "hi", Start: 0, End: 0.3}},
		},
	}

	rows := buildStatusRows(root, plan, manifest)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (cta included), got %d", len(rows))
	}
	if rows[0].Section != "hook" || rows[0].Visuals != 2 || rows[0].Words != 1 {
		t.Fatalf("unexpected hook row %+v", rows[0])
	}
	if rows[0].Narration != filepath.Join("audio", "hook.wav") {
		t.Fatalf("narration path should be project relative, got %q", rows[0].Narration)
	}
	if rows[1].Narration != "" || rows[1].Visuals != 0 {
		t.Fatalf("body has no assets, got %+v", rows[1])
	}
	if rows[2].Section != contentplan.CTASectionID || rows[2].Visuals != 1 {
		t.Fatalf("unexpected cta row %+v", rows[2])
	}
}

func TestStatusCommandReportsNewOutput(t *testing.T) {
	root := withProject(t)
	writeDemoProject(t, root)
	outputJSON = true

	out, _, err := execute(t, newStatusCmd())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Action != state.ActionRender || report.Reason != state.ReasonNew {
		t.Fatalf("expected render/new output, got %s/%s", report.Action, report.Reason)
	}
	if len(report.Rows) != 2 || report.Rows[1].Section != "cta" {
		t.Fatalf("unexpected rows %+v", report.Rows)
	}

	outputJSON = false
	out, _, err = execute(t, newStatusCmd())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "SECTION") || !strings.Contains(out, "new output") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}

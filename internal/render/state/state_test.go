package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/pkg/contentplan"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	rs, err := Load(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.ConfigHash != "" || len(rs.Outputs) != 0 {
		t.Errorf("expected empty state, got %+v", rs)
	}
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs.Outputs) != 0 {
		t.Errorf("expected empty outputs, got %d", len(rs.Outputs))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	now := time.Now().Truncate(time.Second)
	rs := &RenderState{ConfigHash: "sha256:abc"}
	rs.Record("/output/final.mp4", OutputState{InputHash: "sha256:def", RenderedAt: now, DurationS: 9, Codec: "libx264"})

	if err := rs.Save(path); err != nil {
		t.Fatalf("save error: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file should be renamed away, dir has %d entries", len(entries))
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	got := loaded.Outputs["/output/final.mp4"]
	if got.InputHash != "sha256:def" || got.DurationS != 9 || !got.RenderedAt.Equal(now) {
		t.Fatalf("unexpected round trip %+v", got)
	}
}

func TestHashesAreDeterministic(t *testing.T) {
	cfg := config.Default()
	if ConfigHash(cfg) != ConfigHash(cfg) {
		t.Fatal("config hash should be stable")
	}
	changed := cfg
	changed.Music.Volume = 0.2
	if ConfigHash(cfg) == ConfigHash(changed) {
		t.Fatal("config hash should change with music volume")
	}
	moved := cfg
	moved.Tools.FFmpeg = "/opt/ffmpeg"
	if ConfigHash(cfg) != ConfigHash(moved) {
		t.Fatal("tool paths should not affect the config hash")
	}
}

func TestInputHashTracksAssetFiles(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(audio, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	plan := contentplan.Plan{Sections: []contentplan.Section{{ID: "a"}}}
	manifest := assets.Manifest{Narration: []assets.NarrationSegment{{SectionID: "a", Path: audio, Duration: 1}}}

	before := InputHash(plan, manifest)
	if err := os.WriteFile(audio, []byte("longer contents"), 0o644); err != nil {
		t.Fatal(err)
	}
	if after := InputHash(plan, manifest); after == before {
		t.Fatal("input hash should change when an asset file changes")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "final.mp4")
	if err := os.WriteFile(output, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs := &RenderState{ConfigHash: "cfg"}
	rs.Record(output, OutputState{InputHash: "in"})

	tests := []struct {
		name   string
		output string
		cfg    string
		input  string
		force  bool
		action string
		reason string
	}{
		{"forced", output, "cfg", "in", true, ActionRender, ReasonForced},
		{"new", filepath.Join(dir, "other.mp4"), "cfg", "in", false, ActionRender, ReasonNew},
		{"config", output, "cfg2", "in", false, ActionRender, ReasonConfigChanged},
		{"input", output, "cfg", "in2", false, ActionRender, ReasonInputChanged},
		{"up to date", output, "cfg", "in", false, ActionSkip, ReasonUpToDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(rs, tt.output, tt.cfg, tt.input, tt.force)
			if got.Action != tt.action || got.Reason != tt.reason {
				t.Fatalf("Detect = %+v, want %s/%s", got, tt.action, tt.reason)
			}
		})
	}

	if err := os.Remove(output); err != nil {
		t.Fatal(err)
	}
	if got := Detect(rs, output, "cfg", "in", false); got.Reason != ReasonOutputMissing {
		t.Fatalf("expected output missing, got %+v", got)
	}
}

func TestLoadIgnoresOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	data := `{"version": 0, "config_hash": "cfg", "outputs": {"/out.mp4": {"input_hash": "in"}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if rs.ConfigHash != "" || len(rs.Outputs) != 0 {
		t.Fatalf("outdated state should load empty, got %+v", rs)
	}
}

func TestPruneDropsMissingOutputs(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.mp4")
	if err := os.WriteFile(kept, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs := &RenderState{}
	rs.Record(kept, OutputState{InputHash: "a"})
	rs.Record(filepath.Join(dir, "gone.mp4"), OutputState{InputHash: "b"})

	if n := rs.Prune(); n != 1 {
		t.Fatalf("Prune() = %d, want 1", n)
	}
	if _, ok := rs.Outputs[kept]; !ok || len(rs.Outputs) != 1 {
		t.Fatalf("unexpected outputs %v", rs.Outputs)
	}
}

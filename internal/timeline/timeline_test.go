package timeline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/assets"
	"reelforge/pkg/contentplan"
)

func sections(ids ...string) []contentplan.Section {
	out := make([]contentplan.Section, 0, len(ids))
	for _, id := range ids {
		out = append(out, contentplan.Section{ID: id})
	}
	return out
}

func narration(durations map[string]float64, order ...string) []assets.NarrationSegment {
	var out []assets.NarrationSegment
	for _, id := range order {
		out = append(out, assets.NarrationSegment{SectionID: id, Path: id + ".wav", Duration: durations[id]})
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildAudioContiguousOffsets(t *testing.T) {
	track, err := BuildAudio(narration(map[string]float64{"a": 3, "b": 4, "c": 2}, "a", "b", "c"))
	if err != nil {
		t.Fatalf("BuildAudio error: %v", err)
	}
	wantStarts := []float64{0, 3, 7}
	for i, e := range track.Entries {
		if !almostEqual(e.Start, wantStarts[i]) {
			t.Fatalf("entry %d start = %v, want %v", i, e.Start, wantStarts[i])
		}
		if i > 0 && !almostEqual(e.Start, track.Entries[i-1].End()) {
			t.Fatalf("entry %d not contiguous with previous", i)
		}
	}
	if !almostEqual(track.Total, 9) {
		t.Fatalf("total = %v, want 9", track.Total)
	}
	if track.Offsets["b"] != 3 {
		t.Fatalf("offset b = %v, want 3", track.Offsets["b"])
	}
}

func TestBuildAudioEmpty(t *testing.T) {
	track, err := BuildAudio(nil)
	if err != nil {
		t.Fatalf("BuildAudio error: %v", err)
	}
	if track.Total != 0 || len(track.Entries) != 0 {
		t.Fatalf("expected empty track, got %+v", track)
	}
}

func TestBuildAudioRejectsBadSegments(t *testing.T) {
	if _, err := BuildAudio([]assets.NarrationSegment{{SectionID: "a", Duration: -1}}); err == nil {
		t.Fatal("expected error for negative duration")
	}
	dup := []assets.NarrationSegment{{SectionID: "a", Duration: 1}, {SectionID: "a", Duration: 2}}
	if _, err := BuildAudio(dup); err == nil {
		t.Fatal("expected error for duplicate section")
	}
}

func TestOrderNarrationFollowsSections(t *testing.T) {
	segs := narration(map[string]float64{"a": 1, "b": 2}, "b", "a")
	ordered, missing := OrderNarration(sections("a", "b", "cta"), segs)
	if len(ordered) != 2 || ordered[0].SectionID != "a" || ordered[1].SectionID != "b" {
		t.Fatalf("unexpected order %+v", ordered)
	}
	if len(missing) != 1 || missing[0] != "cta" {
		t.Fatalf("unexpected missing %v", missing)
	}
}

func TestResolverFirstMatchAndAbsent(t *testing.T) {
	r := NewResolver(0)
	if r.MinClipDuration != DefaultMinClipDuration {
		t.Fatalf("expected default floor, got %v", r.MinClipDuration)
	}
	candidates := []assets.VisualCandidate{
		{SectionID: "b", Path: "b1.mp4", Kind: assets.KindVideo},
		{SectionID: "a", Path: "a1.mp4", Kind: assets.KindVideo},
		{SectionID: "a", Path: "a2.mp4", Kind: assets.KindVideo},
	}
	got := r.Resolve(contentplan.Section{ID: "a"}, candidates)
	if got.Absent() || got.Candidate.Path != "a1.mp4" {
		t.Fatalf("expected first candidate for a, got %+v", got)
	}
	missing := r.Resolve(contentplan.Section{ID: "z"}, candidates)
	if !missing.Absent() || missing.SectionID != "z" {
		t.Fatalf("expected absent resolution, got %+v", missing)
	}
}

func TestTargetDurationFloor(t *testing.T) {
	r := NewResolver(2)
	if got := r.TargetDuration(0.5); got != 2 {
		t.Fatalf("TargetDuration(0.5) = %v, want 2", got)
	}
	if got := r.TargetDuration(4); got != 4 {
		t.Fatalf("TargetDuration(4) = %v, want 4", got)
	}
}

func TestBuildVisualPlacesAtOffsets(t *testing.T) {
	secs := sections("a", "b", "c")
	track, err := BuildAudio(narration(map[string]float64{"a": 3, "b": 4, "c": 2}, "a", "b", "c"))
	if err != nil {
		t.Fatalf("BuildAudio error: %v", err)
	}
	candidates := []assets.VisualCandidate{
		{SectionID: "a", Path: "a.mp4", Kind: assets.KindVideo, Duration: 10},
		{SectionID: "b", Path: "b.mp4", Kind: assets.KindVideo, Duration: 1.5},
		{SectionID: "c", Path: "c.jpg", Kind: assets.KindImage},
	}
	r := NewResolver(2)
	clips, err := BuildVisual(secs, r.ResolveAll(secs, candidates), track, r)
	if err != nil {
		t.Fatalf("BuildVisual error: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(clips))
	}

	want := []struct {
		start, dur float64
		loop       bool
	}{
		{0, 3, false},
		{3, 4, true},
		{7, 2, false},
	}
	for i, w := range want {
		c := clips[i]
		if !almostEqual(c.Start, w.start) || !almostEqual(c.Duration, w.dur) || c.Loop != w.loop {
			t.Fatalf("clip %d = %+v, want start=%v dur=%v loop=%v", i, c, w.start, w.dur, w.loop)
		}
	}
	if end := VisualEnd(clips); !almostEqual(end, 9) {
		t.Fatalf("visual end = %v, want 9", end)
	}
}

func TestBuildVisualFloorExtendsShortNarration(t *testing.T) {
	secs := sections("a", "b")
	track, _ := BuildAudio(narration(map[string]float64{"a": 3, "b": 0.5}, "a", "b"))
	candidates := []assets.VisualCandidate{
		{SectionID: "a", Path: "a.mp4", Kind: assets.KindVideo, Duration: 5},
		{SectionID: "b", Path: "b.mp4", Kind: assets.KindVideo, Duration: 5},
	}
	r := NewResolver(2)
	clips, err := BuildVisual(secs, r.ResolveAll(secs, candidates), track, r)
	if err != nil {
		t.Fatalf("BuildVisual error: %v", err)
	}
	if !almostEqual(clips[1].Duration, 2) {
		t.Fatalf("expected floor of 2s, got %v", clips[1].Duration)
	}
	if end := VisualEnd(clips); !almostEqual(end, 5) || end <= track.Total {
		t.Fatalf("expected trailing visual past narration, got end=%v total=%v", end, track.Total)
	}
}

func TestBuildVisualSkipsAbsentAndUnnarrated(t *testing.T) {
	secs := sections("a", "b", "c")
	track, _ := BuildAudio(narration(map[string]float64{"a": 3, "c": 2}, "a", "c"))
	candidates := []assets.VisualCandidate{
		{SectionID: "b", Path: "b.mp4", Kind: assets.KindVideo, Duration: 5},
		{SectionID: "c", Path: "c.mp4", Kind: assets.KindVideo, Duration: 5},
	}
	r := NewResolver(2)
	clips, err := BuildVisual(secs, r.ResolveAll(secs, candidates), track, r)
	if err != nil {
		t.Fatalf("BuildVisual error: %v", err)
	}
	if len(clips) != 1 || clips[0].SectionID != "c" || clips[0].Start != 3 {
		t.Fatalf("unexpected clips %+v", clips)
	}
}

func TestBuildVisualNoClipsIsFatal(t *testing.T) {
	secs := sections("a")
	track, _ := BuildAudio(narration(map[string]float64{"a": 3}, "a"))
	r := NewResolver(2)
	_, err := BuildVisual(secs, r.ResolveAll(secs, nil), track, r)
	if !errors.Is(err, ErrNoVisuals) {
		t.Fatalf("expected ErrNoVisuals, got %v", err)
	}
	var fatal *FatalAssemblyError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalAssemblyError, got %T", err)
	}
}

type stubProber struct {
	duration float64
	err      error
	calls    int
}

func (s *stubProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	s.calls++
	return s.duration, s.err
}

func musicFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bed.mp3")
	if err := os.WriteFile(path, []byte("id3"), 0o644); err != nil {
		t.Fatalf("write music: %v", err)
	}
	return path
}

func TestBuildMusicLoopsAndTrims(t *testing.T) {
	prober := &stubProber{duration: 5}
	out := BuildMusic(context.Background(), prober, &assets.MusicAsset{Path: musicFile(t)}, 9, MusicPolicy{FadeIn: 1, Volume: 0.07})
	if !out.IsOk() {
		t.Fatalf("expected ok outcome, got %+v", out)
	}
	plan := out.Value
	if plan.Loops != 2 || !almostEqual(plan.Duration, 9) {
		t.Fatalf("expected 2 loops trimmed to 9s, got %+v", plan)
	}
	if plan.Volume != 0.07 || plan.FadeIn != 1 {
		t.Fatalf("unexpected shaping %+v", plan)
	}
	if prober.calls != 1 {
		t.Fatalf("expected one probe, got %d", prober.calls)
	}
}

func TestBuildMusicLongSourceTrims(t *testing.T) {
	out := BuildMusic(context.Background(), nil, &assets.MusicAsset{Path: musicFile(t), Duration: 120}, 9, MusicPolicy{FadeIn: 20, Volume: 0.07})
	if !out.IsOk() {
		t.Fatalf("expected ok outcome, got %+v", out)
	}
	if out.Value.Loops != 1 || out.Value.Duration != 9 {
		t.Fatalf("expected single pass trimmed to 9s, got %+v", out.Value)
	}
	if out.Value.FadeIn != 9 {
		t.Fatalf("fade-in should clamp to total, got %v", out.Value.FadeIn)
	}
}

func TestBuildMusicDegrades(t *testing.T) {
	policy := MusicPolicy{FadeIn: 1, Volume: 0.07}
	tests := []struct {
		name   string
		asset  *assets.MusicAsset
		prober DurationProber
	}{
		{"no asset", nil, nil},
		{"missing file", &assets.MusicAsset{Path: "/nonexistent/bed.mp3", Duration: 30}, nil},
		{"probe failure", &assets.MusicAsset{Path: musicFile(t)}, &stubProber{err: errors.New("invalid data")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := BuildMusic(context.Background(), tt.prober, tt.asset, 9, policy)
			if !out.IsDegraded() {
				t.Fatalf("expected degraded outcome, got %+v", out)
			}
			if out.Reason == "" {
				t.Fatal("expected a reason")
			}
			if out.Value.Path != "" {
				t.Fatalf("degraded outcome should not carry a plan, got %+v", out.Value)
			}
		})
	}
}

func TestOutcomeStatus(t *testing.T) {
	ok := Ok(3)
	if !ok.IsOk() || ok.Value != 3 || ok.Status.String() != "ok" {
		t.Fatalf("unexpected ok outcome %+v", ok)
	}
	fatal := Fatal[int](ErrNoNarration)
	if fatal.Status != StatusFatal || !errors.Is(fatal.Err, ErrNoNarration) {
		t.Fatalf("unexpected fatal outcome %+v", fatal)
	}
}

package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/media"
	"reelforge/internal/paths"
	"reelforge/pkg/contentplan"
)

// encodeRunner stands in for ffmpeg. It writes whatever output path the
// encode targets, snapshots the filter script, and optionally fails.
type encodeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	scripts []string
	fail    error
	stderr  string
}

func (r *encodeRunner) Run(ctx context.Context, command string, args []string, opts media.RunOptions) (media.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), args...))
	for i, a := range args {
		if a == "-filter_complex_script" && i+1 < len(args) {
			data, err := os.ReadFile(args[i+1])
			if err != nil {
				return media.RunResult{}, err
			}
			r.scripts = append(r.scripts, string(data))
		}
	}
	if out := args[len(args)-1]; strings.HasSuffix(out, ".partial") {
		if err := os.WriteFile(out, []byte("mp4"), 0o644); err != nil {
			return media.RunResult{}, err
		}
	}
	if r.fail != nil {
		return media.RunResult{Stderr: []byte(r.stderr)}, r.fail
	}
	return media.RunResult{}, nil
}

func (r *encodeRunner) lastArgs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

type fakeProber struct {
	mu        sync.Mutex
	durations map[string]float64
	probed    []string
}

func (p *fakeProber) ProbeDuration(ctx context.Context, path string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, path)
	d, ok := p.durations[path]
	if !ok {
		return 0, errors.New("no such media")
	}
	return d, nil
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []Stage
}

func (s *stageRecorder) Stage(stage Stage, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, stage)
}

func newTestService(t *testing.T, runner media.Runner, prober *fakeProber, logger *zap.Logger) *Service {
	t.Helper()
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}
	// The visuals threeSectionManifest points at.
	for _, name := range []string{"intro.mp4", "body.jpg", "outro.mp4"} {
		touch(t, filepath.Join(pp.Root, name))
	}
	if prober == nil {
		prober = &fakeProber{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Paths:      pp,
		Config:     config.Default(),
		Runner:     runner,
		Prober:     prober,
		Logger:     logger,
		ffmpegPath: "ffmpeg",
		codec:      "libx264",
		burnASS:    true,
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func threeSectionPlan() contentplan.Plan {
	return contentplan.Plan{
		Title: "Demo",
		Sections: []contentplan.Section{
			{ID: "intro", HighlightKeywords: []string{"Forge"}},
			{ID: "body"},
			{ID: "outro"},
		},
	}
}

func threeSectionManifest(dir string) assets.Manifest {
	at := func(name string) string { return filepath.Join(dir, name) }
	return assets.Manifest{
		Narration: []assets.NarrationSegment{
			{SectionID: "intro", Path: at("intro.wav"), Duration: 3},
			{SectionID: "body", Path: at("body.wav"), Duration: 4},
			{SectionID: "outro", Path: at("outro.wav"), Duration: 2},
		},
		Visuals: []assets.VisualCandidate{
			{SectionID: "intro", Path: at("intro.mp4"), Kind: assets.KindVideo, Duration: 10},
			{SectionID: "body", Path: at("body.jpg"), Kind: assets.KindImage},
			{SectionID: "outro", Path: at("outro.mp4"), Kind: assets.KindVideo, Duration: 1},
		},
		WordTimings: map[string][]assets.WordTiming{
			"intro": {{Word: "Welcome", Start: 0, End: 0.5}, {Word: "forge", Start: 0.5, End: 1}},
		},
	}
}

func contains(args []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(args); i++ {
		match := true
		for j := range seq {
			if args[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

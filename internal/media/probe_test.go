package media

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout  string
	stderr  string
	err     error
	command string
	args    []string
}

func (r *stubRunner) Run(_ context.Context, command string, args []string, _ RunOptions) (RunResult, error) {
	r.command = command
	r.args = args
	return RunResult{Stdout: []byte(r.stdout), Stderr: []byte(r.stderr)}, r.err
}

func TestProbeParsesStreams(t *testing.T) {
	runner := &stubRunner{stdout: `{
  "format": {"format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "12.480000"},
  "streams": [
    {"codec_type": "video", "width": 1080, "height": 1920},
    {"codec_type": "audio"}
  ]
}`}
	p := NewProber(runner, "/opt/ffprobe")

	meta, err := p.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe error: %v", err)
	}
	if runner.command != "/opt/ffprobe" {
		t.Errorf("expected ffprobe path to be used, got %q", runner.command)
	}
	if meta.DurationSeconds != 12.48 {
		t.Errorf("expected duration 12.48, got %v", meta.DurationSeconds)
	}
	if !meta.HasVideo || !meta.HasAudio {
		t.Errorf("expected video and audio streams, got %+v", meta)
	}
	if meta.Width != 1080 || meta.Height != 1920 {
		t.Errorf("unexpected dimensions %dx%d", meta.Width, meta.Height)
	}
}

func TestProbeDurationFallsBackToStream(t *testing.T) {
	runner := &stubRunner{stdout: `{"format": {"duration": "N/A"}, "streams": [{"codec_type": "audio", "duration": "3.5"}]}`}
	p := NewProber(runner, "")

	got, err := p.ProbeDuration(context.Background(), "narration.wav")
	if err != nil {
		t.Fatalf("ProbeDuration error: %v", err)
	}
	if got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
}

func TestProbeDurationMissing(t *testing.T) {
	runner := &stubRunner{stdout: `{"format": {}, "streams": [{"codec_type": "video"}]}`}
	p := NewProber(runner, "")

	if _, err := p.ProbeDuration(context.Background(), "still.png"); err == nil {
		t.Fatal("expected error when no duration is reported")
	}
}

func TestProbeRunnerError(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1"), stderr: "No such file or directory"}
	p := NewProber(runner, "")

	_, err := p.Probe(context.Background(), "missing.mp3")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "No such file") {
		t.Fatalf("expected stderr in error, got %q", got)
	}
}

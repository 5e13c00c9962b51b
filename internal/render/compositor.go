package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"reelforge/internal/logx"
	"reelforge/internal/media"
	"reelforge/internal/timeline"
)

// Stage is a Compositor state.
type Stage int

const (
	StageIdle Stage = iota
	StageTracksBuilt
	StageAudioMixed
	StageVisuallyComposited
	StageCaptionsOverlaid
	StageEncoding
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:               "idle",
	StageTracksBuilt:        "tracks built",
	StageAudioMixed:         "audio mixed",
	StageVisuallyComposited: "visuals composited",
	StageCaptionsOverlaid:   "captions overlaid",
	StageEncoding:           "encoding",
	StageDone:               "done",
	StageFailed:             "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Stages lists the forward path through the Compositor.
func Stages() []Stage {
	return []Stage{StageTracksBuilt, StageAudioMixed, StageVisuallyComposited, StageCaptionsOverlaid, StageEncoding, StageDone}
}

// ProgressReporter receives Compositor state transitions.
type ProgressReporter interface {
	Stage(stage Stage, detail string)
}

// EncodeError reports a failure while building or running the final encode.
type EncodeError struct {
	Stage  Stage
	Err    error
	Stderr string
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("encode failed while %s: %v", e.Stage, e.Err)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Artifact is the finished composite and its timing metadata.
type Artifact struct {
	Path              string                `json:"path"`
	Duration          float64               `json:"duration"`
	NarrationDuration float64               `json:"narration_duration"`
	VisualDuration    float64               `json:"visual_duration"`
	Narration         []timeline.Entry      `json:"narration"`
	Placements        []timeline.PlacedClip `json:"placements"`
	Music             *timeline.MusicPlan   `json:"music,omitempty"`
	MusicStatus       string                `json:"music_status"`
	MusicReason       string                `json:"music_reason,omitempty"`
	CaptionEvents     int                   `json:"caption_events"`
	Codec             string                `json:"codec"`
	Warnings          []string              `json:"warnings,omitempty"`
}

// Compositor merges built tracks into one ffmpeg filter graph, runs the encode
// and releases every intermediate resource. A Compositor assembles once.
type Compositor struct {
	Runner   media.Runner
	FFmpeg   string
	Logger   *zap.Logger
	Reporter ProgressReporter
	Stderr   io.Writer

	state Stage
}

// NewCompositor returns an idle compositor.
func NewCompositor(runner media.Runner, ffmpegPath string, logger *zap.Logger) *Compositor {
	if runner == nil {
		runner = media.CmdRunner{}
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Compositor{Runner: runner, FFmpeg: ffmpegPath, Logger: logx.OrNop(logger)}
}

// State returns the current stage.
func (c *Compositor) State() Stage { return c.state }

func (c *Compositor) advance(next Stage, detail string) {
	c.state = next
	c.Logger.Debug("compositor stage", zap.Stringer("stage", next), zap.String("detail", detail))
	if c.Reporter != nil {
		c.Reporter.Stage(next, detail)
	}
}

func (c *Compositor) fail(err error) error {
	c.advance(StageFailed, err.Error())
	return err
}

// Assemble composes tracks into target.OutputPath. The output is first
// written to a .partial sibling that is renamed on success and removed on
// failure. tracks.Resources is released on every exit path.
func (c *Compositor) Assemble(ctx context.Context, tracks Tracks, target Target) (Artifact, error) {
	if c.state != StageIdle {
		return Artifact{}, fmt.Errorf("compositor already %s", c.state)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	scope := tracks.Resources
	if scope == nil {
		scope = NewScope()
	}
	defer func() {
		if rerr := scope.Release(); rerr != nil {
			c.Logger.Warn("release intermediates", zap.Error(rerr))
		}
	}()

	if tracks.Narration.Total <= 0 || len(tracks.Narration.Segments) == 0 {
		return Artifact{}, c.fail(timeline.Fatalf("", timeline.ErrNoNarration))
	}
	if len(tracks.Clips) == 0 {
		return Artifact{}, c.fail(timeline.Fatalf("", timeline.ErrNoVisuals))
	}
	if err := target.Validate(); err != nil {
		return Artifact{}, c.fail(&EncodeError{Stage: StageTracksBuilt, Err: err})
	}
	c.advance(StageTracksBuilt, fmt.Sprintf("%d clips, %d narration segments", len(tracks.Clips), len(tracks.Narration.Segments)))

	graph := Graph{Duration: tracks.CompositeDuration()}
	music := tracks.MusicPlan()

	// Narration inputs come first so their indexes match section order.
	audioLabel, err := AudioGraph(&graph, tracks.Narration, music, target.Codec)
	if err != nil {
		return Artifact{}, c.fail(err)
	}
	c.advance(StageAudioMixed, fmt.Sprintf("narration %.2fs", tracks.Narration.Total))

	videoLabel, err := VisualGraph(&graph, tracks.Clips, target)
	if err != nil {
		return Artifact{}, c.fail(err)
	}
	c.advance(StageVisuallyComposited, fmt.Sprintf("composite %.2fs", graph.Duration))

	videoLabel = CaptionOverlay(&graph, videoLabel, tracks.CaptionFile, target)
	c.advance(StageCaptionsOverlaid, fmt.Sprintf("%d caption events, %d overlays", len(tracks.Captions), len(tracks.Overlays)))

	workDir := tracks.WorkDir
	if workDir == "" {
		workDir = filepath.Dir(target.OutputPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return Artifact{}, c.fail(&EncodeError{Stage: StageEncoding, Err: fmt.Errorf("prepare work dir: %w", err)})
	}
	scriptPath := filepath.Join(workDir, "composite.filtergraph")
	if err := os.WriteFile(scriptPath, []byte(graph.Script()), 0o644); err != nil {
		return Artifact{}, c.fail(&EncodeError{Stage: StageEncoding, Err: fmt.Errorf("write filter script: %w", err)})
	}
	_ = scope.Add(FileResource(scriptPath))

	if err := os.MkdirAll(filepath.Dir(target.OutputPath), 0o755); err != nil {
		return Artifact{}, c.fail(&EncodeError{Stage: StageEncoding, Err: fmt.Errorf("prepare output dir: %w", err)})
	}
	partial := target.OutputPath + ".partial"
	_ = scope.Add(FileResource(partial))

	args, err := BuildEncodeArgs(graph, scriptPath, videoLabel, audioLabel, partial, target)
	if err != nil {
		return Artifact{}, c.fail(&EncodeError{Stage: StageEncoding, Err: err})
	}

	c.advance(StageEncoding, target.Codec.VideoCodec)
	c.Logger.Info("encoding composite",
		zap.String("output", target.OutputPath),
		zap.Float64("duration", graph.Duration),
		zap.String("codec", target.Codec.VideoCodec),
		zap.Int("inputs", graph.inputs))

	res, runErr := c.Runner.Run(ctx, c.FFmpeg, args, media.RunOptions{Stderr: c.Stderr})
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = errors.Join(runErr, ctxErr)
		}
		return Artifact{}, c.fail(&EncodeError{Stage: StageEncoding, Err: runErr, Stderr: tail(string(res.Stderr), 8)})
	}
	if err := os.Rename(partial, target.OutputPath); err != nil {
		return Artifact{}, c.fail(&EncodeError{Stage: StageEncoding, Err: fmt.Errorf("finalize output: %w", err)})
	}

	artifact := Artifact{
		Path:              target.OutputPath,
		Duration:          graph.Duration,
		NarrationDuration: tracks.Narration.Total,
		VisualDuration:    timeline.VisualEnd(tracks.Clips),
		Narration:         tracks.Narration.Entries,
		Placements:        tracks.Clips,
		Music:             music,
		MusicStatus:       tracks.Music.Status.String(),
		MusicReason:       tracks.Music.Reason,
		CaptionEvents:     len(tracks.Captions),
		Codec:             target.Codec.VideoCodec,
		Warnings:          tracks.Warnings,
	}
	c.advance(StageDone, target.OutputPath)
	return artifact, nil
}

func tail(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

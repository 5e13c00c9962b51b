package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reelforge/internal/assets"
	"reelforge/internal/captions"
	"reelforge/internal/config"
	"reelforge/internal/logx"
	"reelforge/internal/media"
	"reelforge/internal/paths"
	"reelforge/internal/timeline"
	"reelforge/internal/tools"
	"reelforge/pkg/contentplan"
)

// Service is the engine entry point. It validates inputs, probes durations,
// builds the tracks concurrently and hands them to a Compositor.
type Service struct {
	Paths  paths.ProjectPaths
	Config config.Config
	Runner media.Runner
	Prober timeline.DurationProber
	Logger *zap.Logger

	stderr io.Writer

	encoderOnce sync.Once
	encoderErr  error
	ffmpegPath  string
	codec       string
	burnASS     bool
}

// Options controls a single assembly.
type Options struct {
	OutputPath string
	Reporter   ProgressReporter
}

// NewService prepares an engine bound to a project. ffprobe is located
// eagerly; ffmpeg and its encoders are resolved on first assembly.
func NewService(pp paths.ProjectPaths, cfg config.Config, runner media.Runner, logger *zap.Logger) (*Service, error) {
	logger = logx.OrNop(logger)
	if runner == nil {
		runner = media.CmdRunner{Logger: logger}
	}
	ffprobePath, err := tools.Lookup("ffprobe", cfg.Tools.FFprobe)
	if err != nil {
		return nil, fmt.Errorf("locate ffprobe: %w", err)
	}
	return &Service{
		Paths:  pp,
		Config: cfg,
		Runner: runner,
		Prober: media.NewProber(runner, ffprobePath),
		Logger: logger,
	}, nil
}

// SetStderr mirrors ffmpeg's stderr to w.
func (s *Service) SetStderr(w io.Writer) {
	s.stderr = w
}

// ensureEncoder locates ffmpeg and resolves the configured codec against the
// encoders it was built with. A missing hardware encoder falls back to the
// family's software encoder before any encode starts.
func (s *Service) ensureEncoder(ctx context.Context) error {
	s.encoderOnce.Do(func() {
		if s.ffmpegPath != "" && s.codec != "" {
			return
		}
		path, err := tools.Lookup("ffmpeg", s.Config.Tools.FFmpeg)
		if err != nil {
			s.encoderErr = fmt.Errorf("locate ffmpeg: %w", err)
			return
		}
		s.ffmpegPath = path

		preferred := s.Config.Encoding.VideoCodec
		available, err := tools.ProbeEncoders(ctx, s.Runner, path)
		if err != nil {
			s.Logger.Warn("could not list encoders; using configured codec", zap.String("codec", preferred), zap.Error(err))
			s.codec = preferred
		} else {
			codec, fellBack := tools.ResolveCodec(preferred, available)
			if fellBack {
				s.Logger.Warn("video encoder unavailable; using software encoder",
					zap.String("requested", preferred), zap.String("codec", codec))
			}
			s.codec = codec
		}

		s.burnASS = true
		if ok, err := tools.HasFilter(ctx, s.Runner, path, "ass"); err == nil && !ok {
			s.Logger.Warn("ffmpeg built without libass; captions will not be burned")
			s.burnASS = false
		}
	})
	return s.encoderErr
}

// Codec returns the resolved video encoder, or "" before the first assembly.
func (s *Service) Codec() string { return s.codec }

// prepared is the validated, duration-complete input to track building.
type prepared struct {
	sections   []contentplan.Section
	narration  timeline.NarrationTrack
	candidates []assets.VisualCandidate
	warnings   []string
}

func (s *Service) prepare(ctx context.Context, plan contentplan.Plan, manifest assets.Manifest) (prepared, error) {
	if err := plan.Validate(); err != nil {
		return prepared{}, err
	}
	if err := manifest.Validate(); err != nil {
		return prepared{}, fmt.Errorf("invalid asset manifest: %w", err)
	}

	var p prepared
	p.sections = plan.OrderedSections()

	ordered, missing := timeline.OrderNarration(p.sections, manifest.Narration)
	for _, id := range missing {
		s.Logger.Warn("section has no narration; skipping", zap.String("section", id))
		p.warnings = append(p.warnings, fmt.Sprintf("section %q has no narration", id))
	}

	for i := range ordered {
		seg := &ordered[i]
		if seg.Duration > 0 {
			continue
		}
		d, err := s.Prober.ProbeDuration(ctx, seg.Path)
		if err != nil {
			return prepared{}, timeline.Fatalf(seg.SectionID, fmt.Errorf("unreadable narration: %w", err))
		}
		seg.Duration = d
	}

	track, err := timeline.BuildAudio(ordered)
	if err != nil {
		return prepared{}, timeline.Fatalf("", err)
	}
	if track.Total <= 0 {
		return prepared{}, timeline.Fatalf("", timeline.ErrNoNarration)
	}
	p.narration = track

	// A candidate whose fetch failed upstream is skipped so the resolver can
	// fall through to the next one, or to Absent.
	p.candidates = make([]assets.VisualCandidate, 0, len(manifest.Visuals))
	for _, c := range manifest.Visuals {
		if _, err := os.Stat(c.Path); err != nil {
			s.Logger.Warn("visual candidate unavailable; skipping",
				zap.String("section", c.SectionID), zap.String("path", c.Path), zap.Error(err))
			if _, narrated := track.Offsets[c.SectionID]; narrated {
				p.warnings = append(p.warnings, fmt.Sprintf("section %q visual %s is missing", c.SectionID, filepath.Base(c.Path)))
			}
			continue
		}
		p.candidates = append(p.candidates, c)
	}
	for i := range p.candidates {
		c := &p.candidates[i]
		if c.Kind != assets.KindVideo || c.Duration > 0 {
			continue
		}
		if _, ok := track.Offsets[c.SectionID]; !ok {
			continue
		}
		d, err := s.Prober.ProbeDuration(ctx, c.Path)
		if err != nil {
			s.Logger.Warn("could not probe visual; it will be looped", zap.String("section", c.SectionID), zap.String("path", c.Path), zap.Error(err))
			continue
		}
		c.Duration = d
	}
	return p, nil
}

// BuildTracks validates the inputs and builds the visual, music and caption
// tracks concurrently. When workDir is empty no intermediate files are
// written, which makes the call a pure dry run.
func (s *Service) BuildTracks(ctx context.Context, plan contentplan.Plan, manifest assets.Manifest, workDir string) (Tracks, error) {
	p, err := s.prepare(ctx, plan, manifest)
	if err != nil {
		return Tracks{}, err
	}

	opts := s.Config.EngineOptions()
	resolver := timeline.NewResolver(opts.MinClipDuration)
	scope := NewScope()
	if workDir != "" {
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return Tracks{}, fmt.Errorf("create work dir: %w", err)
		}
		_ = scope.Add(DirResource(workDir))
	}

	tracks := Tracks{Narration: p.narration, WorkDir: workDir, Resources: scope}
	var visualWarn, musicWarn, captionWarn []string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resolutions := resolver.ResolveAll(p.sections, p.candidates)
		for _, r := range resolutions {
			if r.Absent() {
				s.Logger.Warn("no visual for section", zap.String("section", r.SectionID))
				visualWarn = append(visualWarn, fmt.Sprintf("section %q has no visual", r.SectionID))
			}
		}
		clips, err := timeline.BuildVisual(p.sections, resolutions, p.narration, resolver)
		if err != nil {
			return err
		}
		tracks.Clips = clips
		return nil
	})

	g.Go(func() error {
		out := timeline.BuildMusic(gctx, s.Prober, manifest.Music, p.narration.Total, timeline.MusicPolicy{
			FadeIn: opts.MusicFadeIn,
			Volume: opts.MusicVolume,
		})
		if out.IsDegraded() {
			s.Logger.Warn("background music degraded", zap.String("reason", out.Reason))
			musicWarn = append(musicWarn, "music: "+out.Reason)
		}
		tracks.Music = out
		return nil
	})

	g.Go(func() error {
		policy, err := captions.ParsePolicy(s.Config.Captions.Match)
		if err != nil {
			return err
		}
		keywords := make(map[string][]string, len(p.sections))
		for _, sec := range p.sections {
			keywords[sec.ID] = sec.HighlightKeywords
		}
		events, report := captions.Build(p.narration.Entries, manifest.WordTimings, keywords, captions.NewMatcher(policy))
		for _, id := range report.Untimed {
			s.Logger.Warn("section has no word timings", zap.String("section", id))
			captionWarn = append(captionWarn, fmt.Sprintf("section %q has no word timings", id))
		}
		if report.Dropped > 0 {
			s.Logger.Warn("dropped malformed word timings", zap.Int("count", report.Dropped))
			captionWarn = append(captionWarn, fmt.Sprintf("dropped %d malformed word timings", report.Dropped))
		}
		tracks.Captions = events
		tracks.Overlays = captions.CTAOverlays(p.sections, p.narration.Entries)

		if workDir == "" || (len(events) == 0 && len(tracks.Overlays) == 0) {
			return nil
		}
		path := filepath.Join(workDir, "captions.ass")
		if err := captions.WriteASS(path, events, s.captionStyle(), tracks.Overlays...); err != nil {
			return err
		}
		_ = scope.Add(FileResource(path))
		tracks.CaptionFile = path
		return nil
	})

	if err := g.Wait(); err != nil {
		if rerr := scope.Release(); rerr != nil {
			s.Logger.Warn("release intermediates", zap.Error(rerr))
		}
		return Tracks{}, err
	}

	tracks.Warnings = append(tracks.Warnings, p.warnings...)
	tracks.Warnings = append(tracks.Warnings, visualWarn...)
	tracks.Warnings = append(tracks.Warnings, musicWarn...)
	tracks.Warnings = append(tracks.Warnings, captionWarn...)
	return tracks, nil
}

// Assemble builds the tracks in a fresh work directory and composes them into
// the output file.
func (s *Service) Assemble(ctx context.Context, plan contentplan.Plan, manifest assets.Manifest, opts Options) (Artifact, error) {
	if s == nil {
		return Artifact{}, errors.New("render service is nil")
	}
	if err := s.ensureEncoder(ctx); err != nil {
		return Artifact{}, err
	}

	output := opts.OutputPath
	if output == "" {
		output = s.Paths.OutputFile
	}

	runID := uuid.NewString()
	logger := s.Logger.With(zap.String("run", runID))
	workDir := s.Paths.RunWorkDir(runID)

	tracks, err := s.BuildTracks(ctx, plan, manifest, workDir)
	if err != nil {
		if opts.Reporter != nil {
			opts.Reporter.Stage(StageFailed, err.Error())
		}
		return Artifact{}, err
	}
	if !s.burnASS && tracks.CaptionFile != "" {
		tracks.CaptionFile = ""
		tracks.Warnings = append(tracks.Warnings, "captions not burned: ffmpeg lacks libass")
	}

	comp := NewCompositor(s.Runner, s.ffmpegPath, logger)
	comp.Reporter = opts.Reporter
	comp.Stderr = s.stderr

	target := TargetFromOptions(output, s.Config.EngineOptions())
	target.Codec.VideoCodec = s.codec

	return comp.Assemble(ctx, tracks, target)
}

func (s *Service) captionStyle() captions.Style {
	c := s.Config.Captions
	return captions.Style{
		Mode:         c.Mode,
		Font:         c.Font,
		FontSize:     c.FontSize,
		Bold:         s.Config.BoldCaptions(),
		Color:        c.Color,
		AccentColor:  c.AccentColor,
		OutlineColor: c.OutlineColor,
		OutlineWidth: c.OutlineWidth,
		MarginV:      c.MarginV,
		Width:        s.Config.Video.Width,
		Height:       s.Config.Video.Height,
		WordsPerLine: c.WordsPerLine,
	}
}

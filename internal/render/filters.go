package render

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/timeline"
)

// Target describes the output the Compositor produces.
type Target struct {
	OutputPath  string
	Width       int
	Height      int
	FPS         int
	CanvasColor string
	Transition  float64
	FadeOut     float64
	Codec       config.CodecProfile
}

// TargetFromOptions builds a Target from engine options.
func TargetFromOptions(outputPath string, opts config.EngineOptions) Target {
	return Target{
		OutputPath:  outputPath,
		Width:       opts.Width,
		Height:      opts.Height,
		FPS:         opts.FPS,
		CanvasColor: opts.CanvasColor,
		Transition:  opts.Transition,
		FadeOut:     opts.FadeOut,
		Codec:       opts.Codec,
	}
}

// Validate checks the target before any work is done.
func (t Target) Validate() error {
	if strings.TrimSpace(t.OutputPath) == "" {
		return errors.New("output path is empty")
	}
	if t.Width <= 0 || t.Height <= 0 {
		return errors.New("invalid video dimensions")
	}
	if t.Width%2 != 0 || t.Height%2 != 0 {
		return fmt.Errorf("video dimensions %dx%d must be even", t.Width, t.Height)
	}
	if t.FPS <= 0 {
		return errors.New("invalid video fps")
	}
	return nil
}

// Graph is a complete ffmpeg invocation plan: input arguments in input index
// order plus the filter_complex script joining them.
type Graph struct {
	Inputs   []string
	Filters  []string
	Duration float64

	inputs int
}

// addInput appends an input with its leading options and returns its index.
func (g *Graph) addInput(path string, opts ...string) int {
	idx := g.inputs
	g.Inputs = append(g.Inputs, opts...)
	g.Inputs = append(g.Inputs, "-i", path)
	g.inputs++
	return idx
}

// Script renders the filter chains separated by ";\n".
func (g Graph) Script() string {
	return strings.Join(g.Filters, ";\n")
}

// AudioGraph appends narration and music inputs and returns the label of the
// mixed audio stream. Every narration segment is trimmed and padded to its
// declared duration so the audible timeline matches the computed offsets.
func AudioGraph(g *Graph, narration timeline.NarrationTrack, music *timeline.MusicPlan, codec config.CodecProfile) (string, error) {
	if len(narration.Segments) == 0 {
		return "", timeline.Fatalf("", timeline.ErrNoNarration)
	}

	sampleRate := codec.SampleRate
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	layout := "stereo"
	if codec.Channels == 1 {
		layout = "mono"
	}
	normalize := fmt.Sprintf("aresample=%d,aformat=sample_fmts=fltp:channel_layouts=%s", sampleRate, layout)

	var concatIn strings.Builder
	for i, seg := range narration.Segments {
		idx := g.addInput(seg.Path)
		d := formatFloat(seg.Duration)
		label := fmt.Sprintf("n%d", i)
		g.Filters = append(g.Filters, fmt.Sprintf("[%d:a]%s,atrim=end=%s,asetpts=PTS-STARTPTS,apad=whole_dur=%s[%s]", idx, normalize, d, d, label))
		concatIn.WriteString("[" + label + "]")
	}
	g.Filters = append(g.Filters, fmt.Sprintf("%sconcat=n=%d:v=0:a=1[narr]", concatIn.String(), len(narration.Segments)))

	mixed := "narr"
	if music != nil {
		var opts []string
		if music.Loops > 1 {
			opts = append(opts, "-stream_loop", "-1")
		}
		idx := g.addInput(music.Path, opts...)

		chain := []string{
			normalize,
			"atrim=end=" + formatFloat(music.Duration),
			"asetpts=PTS-STARTPTS",
		}
		if music.FadeIn > 0 {
			chain = append(chain, "afade=t=in:st=0:d="+formatFloat(music.FadeIn))
		}
		chain = append(chain, "volume="+formatFloat(music.Volume))
		g.Filters = append(g.Filters, fmt.Sprintf("[%d:a]%s[music]", idx, strings.Join(chain, ",")))
		g.Filters = append(g.Filters, "[narr][music]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[mix]")
		mixed = "mix"
	}

	var post []string
	if codec.Loudnorm {
		post = append(post, "loudnorm=I=-14:TP=-1.5:LRA=11", fmt.Sprintf("aresample=%d", sampleRate))
	}
	if g.Duration > narration.Total {
		post = append(post, "apad=whole_dur="+formatFloat(g.Duration))
	}
	if len(post) == 0 {
		post = append(post, "anull")
	}
	g.Filters = append(g.Filters, fmt.Sprintf("[%s]%s[aout]", mixed, strings.Join(post, ",")))
	return "aout", nil
}

// VisualGraph appends one input per placed clip and overlays each clip on a
// solid canvas at its start offset. Later clips are drawn above earlier ones.
func VisualGraph(g *Graph, clips []timeline.PlacedClip, target Target) (string, error) {
	if len(clips) == 0 {
		return "", timeline.Fatalf("", timeline.ErrNoVisuals)
	}
	if g.Duration <= 0 {
		return "", errors.New("composite duration is zero")
	}

	canvas := target.CanvasColor
	if canvas == "" {
		canvas = "black"
	}
	g.Filters = append(g.Filters, fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%s,format=yuv420p[base]",
		canvas, target.Width, target.Height, target.FPS, formatFloat(g.Duration)))

	prev := "base"
	for i, clip := range clips {
		var opts []string
		switch clip.Kind {
		case assets.KindImage:
			opts = []string{"-loop", "1", "-framerate", strconv.Itoa(target.FPS)}
		default:
			if clip.Loop {
				opts = []string{"-stream_loop", "-1"}
			}
		}
		idx := g.addInput(clip.Path, opts...)

		chain := []string{
			"trim=duration=" + formatFloat(clip.Duration),
			"setpts=PTS-STARTPTS",
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", target.Width, target.Height),
			fmt.Sprintf("crop=%d:%d", target.Width, target.Height),
			"setsar=1",
			fmt.Sprintf("fps=%d", target.FPS),
			"format=yuva420p",
		}
		if fade := math.Min(target.Transition, clip.Duration); i > 0 && fade > 0 {
			chain = append(chain, fmt.Sprintf("fade=t=in:st=0:d=%s:alpha=1", formatFloat(fade)))
		}
		chain = append(chain, fmt.Sprintf("setpts=PTS+%s/TB", formatFloat(clip.Start)))

		label := fmt.Sprintf("v%d", i)
		g.Filters = append(g.Filters, fmt.Sprintf("[%d:v]%s[%s]", idx, strings.Join(chain, ","), label))

		out := fmt.Sprintf("o%d", i)
		g.Filters = append(g.Filters, fmt.Sprintf("[%s][%s]overlay=eof_action=pass:enable='between(t,%s,%s)'[%s]",
			prev, label, formatFloat(clip.Start), formatFloat(clip.End()), out))
		prev = out
	}
	return prev, nil
}

// CaptionOverlay burns the ASS file over the composited video and applies the
// final fade-out. It returns the label of the finished video stream.
func CaptionOverlay(g *Graph, videoLabel, captionFile string, target Target) string {
	var chain []string
	if captionFile != "" {
		chain = append(chain, "ass=filename="+quoteFilterPath(captionFile))
	}
	if fade := math.Min(target.FadeOut, g.Duration); fade > 0 {
		chain = append(chain, fmt.Sprintf("fade=t=out:st=%s:d=%s", formatFloat(g.Duration-fade), formatFloat(fade)))
	}
	chain = append(chain, "format=yuv420p")
	g.Filters = append(g.Filters, fmt.Sprintf("[%s]%s[vout]", videoLabel, strings.Join(chain, ",")))
	return "vout"
}

// BuildEncodeArgs assembles the ffmpeg CLI arguments for the final encode.
func BuildEncodeArgs(g Graph, scriptPath, videoLabel, audioLabel, outputPath string, target Target) ([]string, error) {
	if strings.TrimSpace(scriptPath) == "" {
		return nil, errors.New("filter script path is empty")
	}
	if strings.TrimSpace(outputPath) == "" {
		return nil, errors.New("output path is empty")
	}
	if g.Duration <= 0 {
		return nil, errors.New("composite duration is zero")
	}

	args := []string{"-hide_banner", "-nostdin", "-y"}
	args = append(args, g.Inputs...)
	args = append(args,
		"-filter_complex_script", scriptPath,
		"-map", "["+videoLabel+"]",
		"-map", "["+audioLabel+"]",
	)
	args = append(args, videoCodecArgs(target.Codec)...)
	if target.Codec.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(target.Codec.Threads))
	}
	args = append(args,
		"-r", strconv.Itoa(target.FPS),
		"-pix_fmt", "yuv420p",
	)

	acodec := strings.TrimSpace(target.Codec.AudioCodec)
	if acodec == "" {
		acodec = "aac"
	}
	args = append(args, "-c:a", acodec)
	if target.Codec.AudioBitrateKbps > 0 {
		args = append(args, "-b:a", fmt.Sprintf("%dk", target.Codec.AudioBitrateKbps))
	}
	if target.Codec.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(target.Codec.SampleRate))
	}
	if target.Codec.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(target.Codec.Channels))
	}

	args = append(args,
		"-t", formatFloat(g.Duration),
		"-movflags", "+faststart",
		"-f", "mp4",
		outputPath,
	)
	return args, nil
}

func videoCodecArgs(codec config.CodecProfile) []string {
	name := strings.TrimSpace(codec.VideoCodec)
	if name == "" {
		name = "libx264"
	}
	args := []string{"-c:v", name}
	preset := strings.TrimSpace(codec.Preset)

	switch {
	case name == "libx264" || name == "libx265":
		if preset != "" {
			args = append(args, "-preset", preset)
		}
		if codec.CRF > 0 {
			args = append(args, "-crf", strconv.Itoa(codec.CRF))
		}
	case strings.HasSuffix(name, "_nvenc"):
		if preset != "" {
			args = append(args, "-preset", preset)
		}
		if codec.CRF > 0 {
			args = append(args, "-rc", "vbr", "-cq", strconv.Itoa(codec.CRF))
		}
	default:
		args = append(args, "-b:v", "8M")
	}
	return args
}

// formatFloat prints seconds with millisecond precision and no trailing zeros.
func formatFloat(value float64) string {
	return strconv.FormatFloat(math.Round(value*1000)/1000, 'f', -1, 64)
}

// quoteFilterPath escapes a path for a filter option value, then quotes it
// for the graph parser. A quote cannot appear inside a quoted run, so each one
// closes the run, is escaped, and reopens it.
func quoteFilterPath(value string) string {
	value = filepath.Clean(value)
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ":", `\:`)
	value = strings.ReplaceAll(value, "'", `\'`)
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

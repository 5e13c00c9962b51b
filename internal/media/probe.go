package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Metadata is the subset of ffprobe output the engine relies on.
type Metadata struct {
	FormatName      string
	DurationSeconds float64
	Width           int
	Height          int
	HasVideo        bool
	HasAudio        bool
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// Prober inspects media files with ffprobe.
type Prober struct {
	Runner  Runner
	FFprobe string
}

// NewProber returns a prober bound to the given ffprobe binary.
func NewProber(runner Runner, ffprobePath string) *Prober {
	if runner == nil {
		runner = CmdRunner{}
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{Runner: runner, FFprobe: ffprobePath}
}

// Probe returns format and stream information for path.
func (p *Prober) Probe(ctx context.Context, path string) (Metadata, error) {
	if p == nil {
		return Metadata{}, errors.New("prober is nil")
	}
	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		path,
	}

	result, err := p.Runner.Run(ctx, p.FFprobe, args, RunOptions{})
	if err != nil {
		if stderr := strings.TrimSpace(string(result.Stderr)); stderr != "" {
			return Metadata{}, fmt.Errorf("ffprobe %s: %w (stderr: %s)", path, err, stderr)
		}
		return Metadata{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	if len(result.Stdout) == 0 {
		return Metadata{}, fmt.Errorf("ffprobe %s produced no output", path)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return Metadata{}, fmt.Errorf("decode ffprobe output: %w", err)
	}

	meta := Metadata{FormatName: parsed.Format.FormatName}
	meta.DurationSeconds = parseSeconds(parsed.Format.Duration)
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if !meta.HasVideo {
				meta.Width, meta.Height = s.Width, s.Height
			}
			meta.HasVideo = true
		case "audio":
			meta.HasAudio = true
		}
		if meta.DurationSeconds <= 0 {
			meta.DurationSeconds = parseSeconds(s.Duration)
		}
	}
	return meta, nil
}

// ProbeDuration returns the container duration of path in seconds.
func (p *Prober) ProbeDuration(ctx context.Context, path string) (float64, error) {
	meta, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	if meta.DurationSeconds <= 0 {
		return 0, fmt.Errorf("ffprobe %s: no duration reported", path)
	}
	return meta.DurationSeconds, nil
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return v
}

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the assembly and encoding configuration for a project.
type Config struct {
	Version  int            `yaml:"version"`
	Files    FilesConfig    `yaml:"files,omitempty"`
	Video    VideoConfig    `yaml:"video"`
	Audio    AudioConfig    `yaml:"audio"`
	Music    MusicConfig    `yaml:"music"`
	Assembly AssemblyConfig `yaml:"assembly"`
	Captions CaptionsConfig `yaml:"captions"`
	Encoding EncodingConfig `yaml:"encoding"`
	Tools    ToolsConfig    `yaml:"tools,omitempty"`
}

// FilesConfig overrides the default project file locations.
type FilesConfig struct {
	Plan   string `yaml:"plan,omitempty"`
	Assets string `yaml:"assets,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// VideoConfig contains canvas sizing, framerate and transition timing.
type VideoConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	FPS         int     `yaml:"fps"`
	TransitionS float64 `yaml:"transition_s"`
	FadeOutS    float64 `yaml:"fade_out_s"`
	CanvasColor string  `yaml:"canvas_color"`
}

// AudioConfig describes audio encoding parameters.
type AudioConfig struct {
	ACodec      string `yaml:"acodec"`
	BitrateKbps int    `yaml:"bitrate_kbps"`
	SampleRate  int    `yaml:"sample_rate"`
	Channels    int    `yaml:"channels"`
	Loudnorm    *bool  `yaml:"loudnorm,omitempty"`
}

// MusicConfig shapes the background music bed.
type MusicConfig struct {
	FadeInS float64 `yaml:"fade_in_s"`
	Volume  float64 `yaml:"volume"`
}

// AssemblyConfig holds timeline placement policy.
type AssemblyConfig struct {
	MinClipDurationS float64 `yaml:"min_clip_duration_s"`
}

// CaptionsConfig styles the burned-in captions.
type CaptionsConfig struct {
	Mode         string `yaml:"mode"`
	Match        string `yaml:"match"`
	Font         string `yaml:"font"`
	FontSize     int    `yaml:"font_size"`
	Bold         *bool  `yaml:"bold,omitempty"`
	Color        string `yaml:"color"`
	AccentColor  string `yaml:"accent_color"`
	OutlineColor string `yaml:"outline_color"`
	OutlineWidth int    `yaml:"outline_width"`
	MarginV      int    `yaml:"margin_v"`
	WordsPerLine int    `yaml:"words_per_line"`
}

// EncodingConfig selects the video encoder.
type EncodingConfig struct {
	VideoCodec string `yaml:"video_codec"`
	Preset     string `yaml:"preset"`
	CRF        int    `yaml:"crf"`
	Threads    int    `yaml:"threads"`
}

// ToolsConfig pins explicit binary locations.
type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg,omitempty"`
	FFprobe string `yaml:"ffprobe,omitempty"`
}

// Caption modes.
const (
	CaptionModeWord    = "word"
	CaptionModeKaraoke = "karaoke"
)

// Keyword match policies.
const (
	MatchExact = "exact"
	MatchFold  = "fold"
	MatchStem  = "stem"
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:       1080,
			Height:      1920,
			FPS:         24,
			TransitionS: 0.3,
			FadeOutS:    0.3,
			CanvasColor: "black",
		},
		Audio: AudioConfig{
			ACodec:      "aac",
			BitrateKbps: 192,
			SampleRate:  48000,
			Channels:    2,
			Loudnorm:    boolPtr(false),
		},
		Music: MusicConfig{
			FadeInS: 1.0,
			Volume:  0.07,
		},
		Assembly: AssemblyConfig{
			MinClipDurationS: 2.0,
		},
		Captions: CaptionsConfig{
			Mode:         CaptionModeWord,
			Match:        MatchFold,
			Font:         "Arial",
			FontSize:     90,
			Bold:         boolPtr(true),
			Color:        "#FFFFFF",
			AccentColor:  "#FFFF00",
			OutlineColor: "#000000",
			OutlineWidth: 5,
			MarginV:      480,
			WordsPerLine: 3,
		},
		Encoding: EncodingConfig{
			VideoCodec: "libx264",
			Preset:     "medium",
			CRF:        20,
			Threads:    0,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.CanvasColor == "" {
		c.Video.CanvasColor = defaults.Video.CanvasColor
	}
	if c.Audio.ACodec == "" {
		c.Audio.ACodec = defaults.Audio.ACodec
	}
	if c.Audio.BitrateKbps == 0 {
		c.Audio.BitrateKbps = defaults.Audio.BitrateKbps
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = defaults.Audio.Channels
	}
	if c.Audio.Loudnorm == nil {
		c.Audio.Loudnorm = boolPtr(false)
	}
	if c.Music.Volume == 0 {
		c.Music.Volume = defaults.Music.Volume
	}
	if c.Assembly.MinClipDurationS == 0 {
		c.Assembly.MinClipDurationS = defaults.Assembly.MinClipDurationS
	}
	if c.Captions.Mode == "" {
		c.Captions.Mode = defaults.Captions.Mode
	}
	if c.Captions.Match == "" {
		c.Captions.Match = defaults.Captions.Match
	}
	if c.Captions.Font == "" {
		c.Captions.Font = defaults.Captions.Font
	}
	if c.Captions.FontSize == 0 {
		c.Captions.FontSize = defaults.Captions.FontSize
	}
	if c.Captions.Bold == nil {
		c.Captions.Bold = boolPtr(true)
	}
	if c.Captions.Color == "" {
		c.Captions.Color = defaults.Captions.Color
	}
	if c.Captions.AccentColor == "" {
		c.Captions.AccentColor = defaults.Captions.AccentColor
	}
	if c.Captions.OutlineColor == "" {
		c.Captions.OutlineColor = defaults.Captions.OutlineColor
	}
	if c.Captions.WordsPerLine == 0 {
		c.Captions.WordsPerLine = defaults.Captions.WordsPerLine
	}
	if c.Encoding.VideoCodec == "" {
		c.Encoding.VideoCodec = defaults.Encoding.VideoCodec
	}
	if c.Encoding.Preset == "" {
		c.Encoding.Preset = defaults.Encoding.Preset
	}
	if c.Encoding.CRF == 0 {
		c.Encoding.CRF = defaults.Encoding.CRF
	}
}

// LoudnormEnabled returns the effective loudness normalisation flag.
func (c Config) LoudnormEnabled() bool {
	return c.Audio.Loudnorm != nil && *c.Audio.Loudnorm
}

// BoldCaptions returns the effective caption weight.
func (c Config) BoldCaptions() bool {
	if c.Captions.Bold == nil {
		return true
	}
	return *c.Captions.Bold
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}

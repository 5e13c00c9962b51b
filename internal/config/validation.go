package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// HasErrors reports whether any result is an error.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	errorf := func(format string, args ...any) {
		results = append(results, ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(format string, args ...any) {
		results = append(results, ValidationResult{Level: "warning", Message: fmt.Sprintf(format, args...)})
	}

	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		errorf("video dimensions must be positive, got %dx%d", c.Video.Width, c.Video.Height)
	} else if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		errorf("video dimensions must be even for yuv420p, got %dx%d", c.Video.Width, c.Video.Height)
	} else if c.Video.Width > c.Video.Height {
		warnf("video is landscape (%dx%d); portrait output expects height > width", c.Video.Width, c.Video.Height)
	}
	if c.Video.FPS <= 0 {
		errorf("video fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.TransitionS < 0 {
		errorf("video transition_s must be >= 0")
	}
	if c.Video.FadeOutS < 0 {
		errorf("video fade_out_s must be >= 0")
	}

	if c.Audio.SampleRate <= 0 {
		errorf("audio sample_rate must be positive")
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		errorf("audio channels must be 1 or 2, got %d", c.Audio.Channels)
	}

	if c.Music.Volume < 0 || c.Music.Volume > 1 {
		errorf("music volume must be within [0,1], got %v", c.Music.Volume)
	}
	if c.Music.FadeInS < 0 {
		errorf("music fade_in_s must be >= 0")
	}

	if c.Assembly.MinClipDurationS < 0 {
		errorf("assembly min_clip_duration_s must be >= 0")
	}

	switch c.Captions.Mode {
	case CaptionModeWord, CaptionModeKaraoke:
	default:
		errorf("captions mode %q is not one of %s, %s", c.Captions.Mode, CaptionModeWord, CaptionModeKaraoke)
	}
	switch c.Captions.Match {
	case MatchExact, MatchFold, MatchStem:
	default:
		errorf("captions match %q is not one of %s, %s, %s", c.Captions.Match, MatchExact, MatchFold, MatchStem)
	}
	if c.Captions.FontSize <= 0 {
		errorf("captions font_size must be positive")
	}
	for name, value := range map[string]string{
		"color":         c.Captions.Color,
		"accent_color":  c.Captions.AccentColor,
		"outline_color": c.Captions.OutlineColor,
	} {
		if !isHexColor(value) {
			errorf("captions %s %q must be #RRGGBB", name, value)
		}
	}

	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		errorf("encoding crf must be within [0,51], got %d", c.Encoding.CRF)
	}
	if c.Encoding.Threads < 0 {
		errorf("encoding threads must be >= 0")
	}

	return results
}

// ValidateStrict runs Validate and additionally checks that referenced files
// exist relative to projectRoot.
func (c Config) ValidateStrict(projectRoot string) []ValidationResult {
	results := c.Validate()
	for name, path := range map[string]string{
		"plan":   c.Files.Plan,
		"assets": c.Files.Assets,
	} {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		resolved := path
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(projectRoot, resolved)
		}
		if _, err := os.Stat(resolved); err != nil {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("%s file %q not found", name, path),
			})
		}
	}
	return results
}

func isHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}
	for _, r := range value[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

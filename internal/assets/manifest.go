// Package assets describes the media produced by the collaborator steps
// (narration synthesis, stock search, music search, word timing) that the
// assembly engine consumes.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes moving visuals from stills.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

// NarrationSegment is one section's synthesized narration.
type NarrationSegment struct {
	SectionID string  `json:"section_id" yaml:"section_id"`
	Path      string  `json:"path" yaml:"path"`
	Duration  float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// VisualCandidate is a downloaded visual that may illustrate a section.
type VisualCandidate struct {
	SectionID string  `json:"section_id" yaml:"section_id"`
	Path      string  `json:"path" yaml:"path"`
	Kind      Kind    `json:"kind" yaml:"kind"`
	Duration  float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// MusicAsset is the optional background-music track.
type MusicAsset struct {
	Path     string  `json:"path" yaml:"path"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// WordTiming is a word's interval relative to its own section's audio.
type WordTiming struct {
	Word  string  `json:"word" yaml:"word"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Manifest groups every asset handed to the engine.
type Manifest struct {
	Narration   []NarrationSegment      `json:"narration" yaml:"narration"`
	Visuals     []VisualCandidate       `json:"visuals" yaml:"visuals"`
	Music       *MusicAsset             `json:"music,omitempty" yaml:"music,omitempty"`
	WordTimings map[string][]WordTiming `json:"word_timings,omitempty" yaml:"word_timings,omitempty"`
}

// Load reads a manifest from disk and resolves relative asset paths against
// the manifest's directory.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read asset manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("parse YAML asset manifest: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("parse JSON asset manifest: %w", err)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("resolve manifest path: %w", err)
	}
	m.ResolvePaths(filepath.Dir(abs))
	return m, nil
}

// ResolvePaths makes every relative asset path absolute under base.
func (m *Manifest) ResolvePaths(base string) {
	for i := range m.Narration {
		m.Narration[i].Path = resolve(base, m.Narration[i].Path)
	}
	for i := range m.Visuals {
		m.Visuals[i].Path = resolve(base, m.Visuals[i].Path)
		if m.Visuals[i].Kind == "" {
			m.Visuals[i].Kind = GuessKind(m.Visuals[i].Path)
		}
	}
	if m.Music != nil {
		m.Music.Path = resolve(base, m.Music.Path)
	}
}

// Validate reports structural problems that make the manifest unusable.
func (m Manifest) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(m.Narration))
	for i, seg := range m.Narration {
		switch {
		case strings.TrimSpace(seg.SectionID) == "":
			errs = append(errs, fmt.Errorf("narration[%d]: section_id is required", i))
		case seen[seg.SectionID]:
			errs = append(errs, fmt.Errorf("narration[%d]: duplicate narration for section %q", i, seg.SectionID))
		}
		seen[seg.SectionID] = true
		if strings.TrimSpace(seg.Path) == "" {
			errs = append(errs, fmt.Errorf("narration[%d]: path is required", i))
		}
		if seg.Duration < 0 {
			errs = append(errs, fmt.Errorf("narration[%d]: negative duration %v", i, seg.Duration))
		}
	}

	for i, v := range m.Visuals {
		if strings.TrimSpace(v.SectionID) == "" {
			errs = append(errs, fmt.Errorf("visuals[%d]: section_id is required", i))
		}
		if strings.TrimSpace(v.Path) == "" {
			errs = append(errs, fmt.Errorf("visuals[%d]: path is required", i))
		}
		if v.Kind != KindVideo && v.Kind != KindImage {
			errs = append(errs, fmt.Errorf("visuals[%d]: unknown kind %q", i, v.Kind))
		}
	}

	if m.Music != nil && strings.TrimSpace(m.Music.Path) == "" {
		errs = append(errs, errors.New("music: path is required when music is set"))
	}

	return errors.Join(errs...)
}

// NarrationFor returns the narration segment for a section.
func (m Manifest) NarrationFor(sectionID string) (NarrationSegment, bool) {
	for _, seg := range m.Narration {
		if seg.SectionID == sectionID {
			return seg, true
		}
	}
	return NarrationSegment{}, false
}

// GuessKind infers the visual kind from a file extension.
func GuessKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp", ".gif":
		return KindImage
	default:
		return KindVideo
	}
}

func resolve(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

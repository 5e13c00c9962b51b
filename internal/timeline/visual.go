package timeline

import (
	"reelforge/internal/assets"
	"reelforge/pkg/contentplan"
)

// PlacedClip is a visual positioned on the composite timeline.
type PlacedClip struct {
	SectionID      string      `json:"section_id"`
	Path           string      `json:"path"`
	Kind           assets.Kind `json:"kind"`
	Start          float64     `json:"start"`
	Duration       float64     `json:"duration"`
	SourceDuration float64     `json:"source_duration,omitempty"`
	Loop           bool        `json:"loop"`
}

// End returns the exclusive end of the clip.
func (c PlacedClip) End() float64 { return c.Start + c.Duration }

// BuildVisual places each resolved visual at its section's narration offset,
// held for the resolver's target duration. Videos shorter than the target
// loop; longer ones are trimmed; images are held still.
func BuildVisual(sections []contentplan.Section, resolutions []Resolution, narration NarrationTrack, resolver Resolver) ([]PlacedClip, error) {
	byID := make(map[string]Resolution, len(resolutions))
	for _, r := range resolutions {
		byID[r.SectionID] = r
	}

	var clips []PlacedClip
	for _, s := range sections {
		res, ok := byID[s.ID]
		if !ok || res.Absent() {
			continue
		}
		entry, ok := narration.Entry(s.ID)
		if !ok {
			continue
		}

		c := res.Candidate
		target := resolver.TargetDuration(entry.Duration)
		clip := PlacedClip{
			SectionID:      s.ID,
			Path:           c.Path,
			Kind:           c.Kind,
			Start:          entry.Start,
			Duration:       target,
			SourceDuration: c.Duration,
		}
		if c.Kind == assets.KindVideo {
			clip.Loop = c.Duration <= 0 || c.Duration < target
		}
		clips = append(clips, clip)
	}

	if len(clips) == 0 {
		return nil, Fatalf("", ErrNoVisuals)
	}
	return clips, nil
}

// VisualEnd returns the latest clip end.
func VisualEnd(clips []PlacedClip) float64 {
	var end float64
	for _, c := range clips {
		if e := c.End(); e > end {
			end = e
		}
	}
	return end
}

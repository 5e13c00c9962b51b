package timeline

import (
	"math"

	"reelforge/internal/assets"
	"reelforge/pkg/contentplan"
)

// DefaultMinClipDuration is the shortest span a visual is held on screen.
const DefaultMinClipDuration = 2.0

// Resolution is the visual chosen for one section. The zero value is absent.
type Resolution struct {
	SectionID string
	Candidate assets.VisualCandidate
	found     bool
}

// Absent reports that no candidate matched the section.
func (r Resolution) Absent() bool { return !r.found }

// Resolver selects visuals and owns the minimum clip duration floor.
type Resolver struct {
	MinClipDuration float64
}

// NewResolver returns a resolver with the given floor; non-positive values
// use DefaultMinClipDuration.
func NewResolver(minClip float64) Resolver {
	if minClip <= 0 {
		minClip = DefaultMinClipDuration
	}
	return Resolver{MinClipDuration: minClip}
}

// Resolve picks the first candidate tagged with the section's id. Candidates
// are taken in caller order and are not scored.
func (r Resolver) Resolve(section contentplan.Section, candidates []assets.VisualCandidate) Resolution {
	for _, c := range candidates {
		if c.SectionID == section.ID {
			return Resolution{SectionID: section.ID, Candidate: c, found: true}
		}
	}
	return Resolution{SectionID: section.ID}
}

// ResolveAll resolves every section, preserving section order.
func (r Resolver) ResolveAll(sections []contentplan.Section, candidates []assets.VisualCandidate) []Resolution {
	out := make([]Resolution, 0, len(sections))
	for _, s := range sections {
		out = append(out, r.Resolve(s, candidates))
	}
	return out
}

// TargetDuration is how long a visual covering narration of the given length
// stays on screen.
func (r Resolver) TargetDuration(narration float64) float64 {
	return math.Max(narration, r.MinClipDuration)
}

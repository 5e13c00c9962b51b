package captions

import (
	"strings"

	"reelforge/internal/timeline"
	"reelforge/pkg/contentplan"
)

// Overlay is a block of on-screen text held across a span of the composite,
// independent of the spoken words.
type Overlay struct {
	SectionID string  `json:"section_id"`
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

// CTAOverlays puts each call-to-action section's script on screen for the
// whole of that section's narration. A CTA section without narration gets
// nothing.
func CTAOverlays(sections []contentplan.Section, entries []timeline.Entry) []Overlay {
	spans := make(map[string]timeline.Entry, len(entries))
	for _, e := range entries {
		spans[e.SectionID] = e
	}

	var out []Overlay
	for _, sec := range sections {
		if !sec.CTA {
			continue
		}
		text := strings.Join(strings.Fields(sec.NarrativeScript), " ")
		span, ok := spans[sec.ID]
		if text == "" || !ok || span.Duration <= 0 {
			continue
		}
		out = append(out, Overlay{SectionID: sec.ID, Text: text, Start: span.Start, End: span.End()})
	}
	return out
}

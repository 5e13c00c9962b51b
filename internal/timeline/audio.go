package timeline

import (
	"fmt"

	"reelforge/internal/assets"
	"reelforge/pkg/contentplan"
)

// Entry is one section's span on the narration timeline.
type Entry struct {
	SectionID string  `json:"section_id"`
	Start     float64 `json:"start"`
	Duration  float64 `json:"duration"`
}

// End returns the exclusive end of the span.
func (e Entry) End() float64 { return e.Start + e.Duration }

// NarrationTrack is the concatenated narration with per-section offsets.
type NarrationTrack struct {
	Segments []assets.NarrationSegment
	Entries  []Entry
	Offsets  map[string]float64
	Total    float64
}

// Entry returns the timeline entry for a section.
func (t NarrationTrack) Entry(sectionID string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.SectionID == sectionID {
			return e, true
		}
	}
	return Entry{}, false
}

// BuildAudio lays segments end to end in the given order. Each start is the
// running sum of the preceding durations.
func BuildAudio(segments []assets.NarrationSegment) (NarrationTrack, error) {
	track := NarrationTrack{
		Segments: make([]assets.NarrationSegment, 0, len(segments)),
		Entries:  make([]Entry, 0, len(segments)),
		Offsets:  make(map[string]float64, len(segments)),
	}

	var cursor float64
	for _, seg := range segments {
		if seg.Duration < 0 {
			return NarrationTrack{}, fmt.Errorf("section %q: negative narration duration %v", seg.SectionID, seg.Duration)
		}
		if _, dup := track.Offsets[seg.SectionID]; dup {
			return NarrationTrack{}, fmt.Errorf("section %q: duplicate narration segment", seg.SectionID)
		}
		track.Segments = append(track.Segments, seg)
		track.Entries = append(track.Entries, Entry{SectionID: seg.SectionID, Start: cursor, Duration: seg.Duration})
		track.Offsets[seg.SectionID] = cursor
		cursor += seg.Duration
	}
	track.Total = cursor
	return track, nil
}

// OrderNarration arranges segments in section order. Sections with no segment
// are returned in missing.
func OrderNarration(sections []contentplan.Section, segments []assets.NarrationSegment) (ordered []assets.NarrationSegment, missing []string) {
	byID := make(map[string]assets.NarrationSegment, len(segments))
	for _, seg := range segments {
		if _, ok := byID[seg.SectionID]; !ok {
			byID[seg.SectionID] = seg
		}
	}
	for _, s := range sections {
		seg, ok := byID[s.ID]
		if !ok {
			missing = append(missing, s.ID)
			continue
		}
		ordered = append(ordered, seg)
	}
	return ordered, missing
}

// Package captions turns per-section word timings into a single ordered
// caption track and renders it as an ASS subtitle script.
package captions

import (
	"sort"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/timeline"
)

// Event is one caption word on the composite timeline.
type Event struct {
	SectionID string  `json:"section_id"`
	Word      string  `json:"word"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Highlight bool    `json:"highlight"`
}

// Report summarises what Build skipped.
type Report struct {
	Dropped int
	Untimed []string
}

// Build re-bases each section's word timings by the section's start offset,
// flags words found in the section's keyword set, and returns events ordered
// by start with no overlaps.
func Build(entries []timeline.Entry, timings map[string][]assets.WordTiming, keywords map[string][]string, m Matcher) ([]Event, Report) {
	var (
		events []Event
		report Report
	)

	for _, entry := range entries {
		words := timings[entry.SectionID]
		if len(words) == 0 {
			report.Untimed = append(report.Untimed, entry.SectionID)
			continue
		}
		set := m.KeywordSet(keywords[entry.SectionID])
		for _, w := range words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.Start < 0 || w.End <= w.Start {
				report.Dropped++
				continue
			}
			events = append(events, Event{
				SectionID: entry.SectionID,
				Word:      text,
				Start:     entry.Start + w.Start,
				End:       entry.Start + w.End,
				Highlight: set[m.Normalize(text)],
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Start < events[j].Start })

	out := events[:0]
	for i := range events {
		ev := events[i]
		if i+1 < len(events) && ev.End > events[i+1].Start {
			ev.End = events[i+1].Start
		}
		if ev.End <= ev.Start {
			report.Dropped++
			continue
		}
		out = append(out, ev)
	}
	return out, report
}

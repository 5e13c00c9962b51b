package render

import (
	"math"

	"reelforge/internal/captions"
	"reelforge/internal/timeline"
)

// Tracks is the set of independently built, time-aligned tracks handed to the
// Compositor. Resources holds every intermediate the builders created;
// ownership moves to the Compositor with the Tracks value.
type Tracks struct {
	Narration   timeline.NarrationTrack
	Clips       []timeline.PlacedClip
	Music       timeline.Outcome[timeline.MusicPlan]
	Captions    []captions.Event
	Overlays    []captions.Overlay
	CaptionFile string
	WorkDir     string
	Resources   *Scope
	Warnings    []string
}

// CompositeDuration is the longer of the visual track and the narration.
func (t Tracks) CompositeDuration() float64 {
	return math.Max(timeline.VisualEnd(t.Clips), t.Narration.Total)
}

// MusicPlan returns the music plan when the music track built successfully.
func (t Tracks) MusicPlan() *timeline.MusicPlan {
	if !t.Music.IsOk() {
		return nil
	}
	plan := t.Music.Value
	return &plan
}

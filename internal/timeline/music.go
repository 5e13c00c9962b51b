package timeline

import (
	"context"
	"fmt"
	"math"
	"os"

	"reelforge/internal/assets"
)

// DurationProber reports the playable length of a media file.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// MusicPolicy holds the fixed shaping applied to background music.
type MusicPolicy struct {
	FadeIn float64
	Volume float64
}

// MusicPlan describes how the music source is looped, trimmed and shaped to
// cover the narration exactly.
type MusicPlan struct {
	Path           string  `json:"path"`
	SourceDuration float64 `json:"source_duration"`
	Loops          int     `json:"loops"`
	Duration       float64 `json:"duration"`
	FadeIn         float64 `json:"fade_in"`
	Volume         float64 `json:"volume"`
}

// BuildMusic fits the music asset to total seconds. Any problem degrades to a
// narration-only mix; it never fails assembly.
func BuildMusic(ctx context.Context, prober DurationProber, asset *assets.MusicAsset, total float64, policy MusicPolicy) Outcome[MusicPlan] {
	if asset == nil || asset.Path == "" {
		return Degraded[MusicPlan]("no background music")
	}
	if total <= 0 {
		return Degraded[MusicPlan]("no narration to score")
	}
	if policy.Volume <= 0 {
		return Degraded[MusicPlan]("music volume is zero")
	}
	if _, err := os.Stat(asset.Path); err != nil {
		return Degraded[MusicPlan](fmt.Sprintf("music file unavailable: %v", err))
	}

	source := asset.Duration
	if source <= 0 {
		if prober == nil {
			return Degraded[MusicPlan]("music duration unknown")
		}
		d, err := prober.ProbeDuration(ctx, asset.Path)
		if err != nil {
			return Degraded[MusicPlan](fmt.Sprintf("probe music: %v", err))
		}
		source = d
	}

	loops := 1
	if source < total {
		loops = int(math.Ceil(total / source))
	}

	return Ok(MusicPlan{
		Path:           asset.Path,
		SourceDuration: source,
		Loops:          loops,
		Duration:       total,
		FadeIn:         math.Min(math.Max(policy.FadeIn, 0), total),
		Volume:         policy.Volume,
	})
}

package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelforge/internal/captions"
	"reelforge/internal/render"
	"reelforge/internal/timeline"
	"reelforge/internal/tui"
)

func newTimelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show the computed placements without encoding (dry run)",
		RunE:  runTimeline,
	}
}

type timelineJSON struct {
	Project           string                `json:"project"`
	Duration          float64               `json:"duration"`
	NarrationDuration float64               `json:"narration_duration"`
	VisualDuration    float64               `json:"visual_duration"`
	Narration         []timeline.Entry      `json:"narration"`
	Placements        []timeline.PlacedClip `json:"placements"`
	Music             *timeline.MusicPlan   `json:"music,omitempty"`
	MusicStatus       string                `json:"music_status"`
	MusicReason       string                `json:"music_reason,omitempty"`
	CaptionEvents     int                   `json:"caption_events"`
	Overlays          []captions.Overlay    `json:"overlays,omitempty"`
	Warnings          []string              `json:"warnings,omitempty"`
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, cfg, err := openProject()
	if err != nil {
		return err
	}
	logger, cleanup, err := openLogger(pp)
	if err != nil {
		return err
	}
	defer cleanup()

	plan, manifest, err := loadInputs(pp)
	if err != nil {
		return err
	}

	svc, err := render.NewService(pp, cfg, nil, logger)
	if err != nil {
		return err
	}

	var status *tui.StatusWriter
	if tui.DetectMode(cmd.ErrOrStderr(), false, outputJSON) == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr())
		status.Update("probing media durations")
	}
	tracks, err := svc.BuildTracks(ctx, plan, manifest, "")
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}

	summary := summarizeTracks(pp.Root, tracks)
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	writeTimelineTable(cmd.OutOrStdout(), summary)
	return nil
}

func summarizeTracks(project string, tracks render.Tracks) timelineJSON {
	return timelineJSON{
		Project:           project,
		Duration:          tracks.CompositeDuration(),
		NarrationDuration: tracks.Narration.Total,
		VisualDuration:    timeline.VisualEnd(tracks.Clips),
		Narration:         tracks.Narration.Entries,
		Placements:        tracks.Clips,
		Music:             tracks.MusicPlan(),
		MusicStatus:       tracks.Music.Status.String(),
		MusicReason:       tracks.Music.Reason,
		CaptionEvents:     len(tracks.Captions),
		Overlays:          tracks.Overlays,
		Warnings:          tracks.Warnings,
	}
}

func writeTimelineTable(out io.Writer, s timelineJSON) {
	fmt.Fprintf(out, "Project: %s\n", s.Project)

	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tSTART\tDURATION\tEND\tKIND\tLOOP\tSOURCE")
	for _, c := range s.Placements {
		loop := "no"
		if c.Loop {
			loop = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.SectionID,
			formatSeconds(c.Start),
			formatSeconds(c.Duration),
			formatSeconds(c.End()),
			c.Kind,
			loop,
			relPath(s.Project, c.Path),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nnarration %s, visuals %s, composite %s\n",
		formatSeconds(s.NarrationDuration), formatSeconds(s.VisualDuration), formatSeconds(s.Duration))
	if s.Music != nil {
		fmt.Fprintf(out, "music: %d loop(s) of %s source trimmed to %s\n", s.Music.Loops, formatSeconds(s.Music.SourceDuration), formatSeconds(s.Music.Duration))
	} else {
		fmt.Fprintf(out, "music: %s (%s)\n", s.MusicStatus, tui.NonEmptyOrDash(s.MusicReason))
	}
	fmt.Fprintf(out, "captions: %d events\n", s.CaptionEvents)
	for _, ov := range s.Overlays {
		fmt.Fprintf(out, "overlay: %s %s-%s %q\n", ov.SectionID, formatSeconds(ov.Start), formatSeconds(ov.End), ov.Text)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
}

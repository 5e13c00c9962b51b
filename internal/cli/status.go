package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelforge/internal/assets"
	"reelforge/internal/render/state"
	"reelforge/internal/tui"
	"reelforge/pkg/contentplan"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show plan sections, their assets and whether the output is current",
		RunE:  runStatus,
	}
}

type statusRow struct {
	Section   string   `json:"section"`
	Title     string   `json:"title"`
	Narration string   `json:"narration,omitempty"`
	Visuals   int      `json:"visuals"`
	Words     int      `json:"words"`
	Keywords  []string `json:"keywords,omitempty"`
}

type statusReport struct {
	Project string      `json:"project"`
	Output  string      `json:"output"`
	Action  string      `json:"action"`
	Reason  string      `json:"reason"`
	Rows    []statusRow `json:"rows"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := openProject()
	if err != nil {
		return err
	}
	plan, manifest, err := loadInputs(pp)
	if err != nil {
		return err
	}

	rs, _ := state.Load(pp.StateFile)
	d := state.Detect(rs, pp.OutputFile, state.ConfigHash(cfg), state.InputHash(plan, manifest), false)

	report := statusReport{
		Project: pp.Root,
		Output:  pp.OutputFile,
		Action:  d.Action,
		Reason:  d.Reason,
		Rows:    buildStatusRows(pp.Root, plan, manifest),
	}

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project: %s\n", report.Project)
	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tTITLE\tNARRATION\tVISUALS\tWORDS\tKEYWORDS")
	for _, r := range report.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Section,
			tui.NonEmptyOrDash(r.Title),
			tui.NonEmptyOrDash(r.Narration),
			r.Visuals,
			r.Words,
			tui.NonEmptyOrDash(strings.Join(r.Keywords, ",")),
		)
	}
	w.Flush()
	fmt.Fprintf(out, "\noutput %s: %s\n", relPath(pp.Root, report.Output), report.Reason)
	return nil
}

func buildStatusRows(root string, plan contentplan.Plan, manifest assets.Manifest) []statusRow {
	visuals := make(map[string]int, len(manifest.Visuals))
	for _, v := range manifest.Visuals {
		visuals[v.SectionID]++
	}

	sections := plan.OrderedSections()
	rows := make([]statusRow, 0, len(sections))
	for _, sec := range sections {
		row := statusRow{
			Section:  sec.ID,
			Title:    sec.Title,
			Visuals:  visuals[sec.ID],
			Words:    len(manifest.WordTimings[sec.ID]),
			Keywords: sec.HighlightKeywords,
		}
		if seg, ok := manifest.NarrationFor(sec.ID); ok {
			row.Narration = relPath(root, seg.Path)
		}
		rows = append(rows, row)
	}
	return rows
}

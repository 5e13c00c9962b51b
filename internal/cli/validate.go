package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/paths"
	"reelforge/pkg/contentplan"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config, content plan and asset manifest without probing media",
		RunE:  runValidate,
	}
}

type validationReport struct {
	Project string                    `json:"project"`
	Results []config.ValidationResult `json:"results"`
}

func runValidate(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := openProject()
	if err != nil {
		return err
	}

	report := validationReport{Project: pp.Root, Results: collectValidation(pp, cfg)}

	if outputJSON {
		if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		writeValidationTable(cmd, report)
	}

	if config.HasErrors(report.Results) {
		return errors.New("validation failed")
	}
	return nil
}

// collectValidation gathers every finding for the project. It never probes
// media, so it is safe to run before ffprobe is installed.
func collectValidation(pp paths.ProjectPaths, cfg config.Config) []config.ValidationResult {
	results := cfg.ValidateStrict(pp.Root)
	errorf := func(format string, args ...any) {
		results = append(results, config.ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)})
	}
	warnf := func(format string, args ...any) {
		results = append(results, config.ValidationResult{Level: "warning", Message: fmt.Sprintf(format, args...)})
	}

	plan, planErr := contentplan.Load(pp.PlanFile)
	if planErr != nil {
		errorf("plan: %v", planErr)
	} else if err := plan.Validate(); err != nil {
		var verrs contentplan.ValidationErrors
		if errors.As(err, &verrs) {
			for _, issue := range verrs.Issues() {
				errorf("plan: %s", issue.Error())
			}
		} else {
			errorf("plan: %v", err)
		}
	}

	manifest, manifestErr := assets.Load(pp.AssetsFile)
	if manifestErr != nil {
		errorf("assets: %v", manifestErr)
		return results
	}
	if err := manifest.Validate(); err != nil {
		for _, e := range unwrapJoined(err) {
			errorf("assets: %v", e)
		}
	}

	for _, path := range manifestFiles(manifest) {
		if _, err := os.Stat(path); err != nil {
			errorf("assets: %s not found", relPath(pp.Root, path))
		}
	}

	if planErr != nil {
		return results
	}
	visuals := make(map[string]bool, len(manifest.Visuals))
	for _, v := range manifest.Visuals {
		visuals[v.SectionID] = true
	}
	for _, sec := range plan.OrderedSections() {
		if _, ok := manifest.NarrationFor(sec.ID); !ok {
			warnf("section %q has no narration and will be skipped", sec.ID)
			continue
		}
		if !visuals[sec.ID] {
			warnf("section %q has no visual candidate", sec.ID)
		}
		if len(manifest.WordTimings[sec.ID]) == 0 {
			warnf("section %q has no word timings; it will have no captions", sec.ID)
		}
	}
	if manifest.Music == nil {
		warnf("no background music; narration will play alone")
	}
	return results
}

func manifestFiles(m assets.Manifest) []string {
	var files []string
	for _, n := range m.Narration {
		if n.Path != "" {
			files = append(files, n.Path)
		}
	}
	for _, v := range m.Visuals {
		if v.Path != "" {
			files = append(files, v.Path)
		}
	}
	if m.Music != nil && m.Music.Path != "" {
		files = append(files, m.Music.Path)
	}
	return files
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func writeValidationTable(cmd *cobra.Command, report validationReport) {
	out := cmd.OutOrStdout()
	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)

	fmt.Fprintln(out, bold.Render("VALIDATION:")+" "+report.Project)
	if len(report.Results) == 0 {
		fmt.Fprintln(out, "  "+green.Render("OK")+"    no issues found")
		return
	}
	for _, r := range report.Results {
		label := yellow.Render("WARN ")
		if r.Level == "error" {
			label = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %s  %s\n", label, r.Message)
	}
}

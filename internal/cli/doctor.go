package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reelforge/internal/config"
	"reelforge/internal/media"
	"reelforge/internal/paths"
	"reelforge/internal/render/state"
	"reelforge/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check project health and the local ffmpeg build",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"` // "ok", "warning", "error"
	Summary string   `json:"summary"`
	Notes   []string `json:"notes,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := ensureProjectDir(pp); err != nil {
		return err
	}

	cfg, cfgErr := config.LoadProject(pp.ConfigFile, pp.Root)
	runner := media.CmdRunner{}

	var checks []healthCheck
	checks = append(checks, checkTools(ctx, runner, cfg))
	checks = append(checks, checkEncoder(ctx, runner, cfg))
	checks = append(checks, checkConfig(pp, cfg, cfgErr))
	if cfgErr == nil {
		pp = paths.ApplyConfig(pp, cfg)
		checks = append(checks, checkInputs(pp, cfg))
		checks = append(checks, checkOutput(pp, cfg))
	}

	return writeDoctorResult(cmd, pp.Root, checks)
}

func checkTools(ctx context.Context, runner media.Runner, cfg config.Config) healthCheck {
	statuses := tools.Detect(ctx, runner, map[string]string{
		"ffmpeg":  cfg.Tools.FFmpeg,
		"ffprobe": cfg.Tools.FFprobe,
	})

	var satisfied int
	var info []string
	for _, st := range statuses {
		if st.Satisfied {
			satisfied++
			info = append(info, st.Tool+" "+st.Version)
		}
	}
	if satisfied == len(statuses) {
		return healthCheck{Name: "Tools", Status: "ok", Summary: joinComma(info)}
	}
	return healthCheck{
		Name:    "Tools",
		Status:  "error",
		Summary: fmt.Sprintf("%d of %d tools satisfied; run `reelforge tools` for details", satisfied, len(statuses)),
	}
}

func checkEncoder(ctx context.Context, runner media.Runner, cfg config.Config) healthCheck {
	ffmpeg, err := tools.Lookup("ffmpeg", cfg.Tools.FFmpeg)
	if err != nil {
		return healthCheck{Name: "Encoder", Status: "error", Summary: err.Error()}
	}

	preferred := cfg.Encoding.VideoCodec
	if preferred == "" {
		preferred = tools.SoftwareH264
	}
	available, err := tools.ProbeEncoders(ctx, runner, ffmpeg)
	if err != nil {
		return healthCheck{Name: "Encoder", Status: "warning", Summary: err.Error()}
	}
	codec, fellBack := tools.ResolveCodec(preferred, available)

	hasASS, err := tools.HasFilter(ctx, runner, ffmpeg, "ass")
	switch {
	case err != nil:
		return healthCheck{Name: "Encoder", Status: "warning", Summary: err.Error()}
	case !available.Has(codec):
		return healthCheck{Name: "Encoder", Status: "error", Summary: fmt.Sprintf("no usable encoder for %s", preferred)}
	case !hasASS:
		return healthCheck{Name: "Encoder", Status: "warning", Summary: codec + "; ffmpeg lacks libass, captions will not be burned", Notes: tools.FeatureHints(tools.FeatureLibass)}
	case fellBack:
		return healthCheck{Name: "Encoder", Status: "warning", Summary: fmt.Sprintf("%s unavailable, using %s", preferred, codec), Notes: tools.FeatureHints(tools.FeatureHardware)}
	}
	return healthCheck{Name: "Encoder", Status: "ok", Summary: codec + ", libass"}
}

func checkConfig(pp paths.ProjectPaths, cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errs int
	for _, v := range cfg.ValidateStrict(pp.Root) {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errs++
		}
	}

	summary := fmt.Sprintf("%dx%d@%d, %s", cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS, cfg.Encoding.VideoCodec)
	if errs > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", summary, errs)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", summary, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: summary}
}

func checkInputs(pp paths.ProjectPaths, cfg config.Config) healthCheck {
	var errs, warnings int
	for _, r := range collectValidation(pp, cfg) {
		switch r.Level {
		case "error":
			errs++
		case "warning":
			warnings++
		}
	}
	switch {
	case errs > 0:
		return healthCheck{Name: "Inputs", Status: "error", Summary: fmt.Sprintf("%d errors; run `reelforge validate`", errs)}
	case warnings > 0:
		return healthCheck{Name: "Inputs", Status: "warning", Summary: fmt.Sprintf("%d warnings", warnings)}
	}
	return healthCheck{Name: "Inputs", Status: "ok", Summary: "plan and assets valid"}
}

func checkOutput(pp paths.ProjectPaths, cfg config.Config) healthCheck {
	plan, manifest, err := loadInputs(pp)
	if err != nil {
		return healthCheck{Name: "Output", Status: "warning", Summary: "inputs unreadable"}
	}
	rs, _ := state.Load(pp.StateFile)
	d := state.Detect(rs, pp.OutputFile, state.ConfigHash(cfg), state.InputHash(plan, manifest), false)
	if d.Action == state.ActionSkip {
		return healthCheck{Name: "Output", Status: "ok", Summary: relPath(pp.Root, pp.OutputFile) + " up to date"}
	}
	return healthCheck{Name: "Output", Status: "warning", Summary: relPath(pp.Root, pp.OutputFile) + ": " + d.Reason}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("PROJECT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
		for _, note := range c.Notes {
			fmt.Fprintf(out, "  %-12s        %s\n", "", note)
		}
	}
	return nil
}

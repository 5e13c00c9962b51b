package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
	"reelforge/internal/media"
	"reelforge/internal/paths"
	"reelforge/internal/tools"
	"reelforge/internal/tui"
)

var toolsShowEncoders bool

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List resolved ffmpeg/ffprobe binaries and versions",
		RunE:  runToolsList,
	}
	cmd.Flags().BoolVar(&toolsShowEncoders, "encoders", false, "Also resolve the configured video codec and check for libass")
	return cmd
}

type toolsReport struct {
	Tools   []tools.Status `json:"tools"`
	Encoder *encoderReport `json:"encoder,omitempty"`
}

type encoderReport struct {
	Preferred string `json:"preferred"`
	Resolved  string `json:"resolved"`
	FellBack  bool   `json:"fell_back"`
	Libass    bool   `json:"libass"`
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Tools work outside a project too, so a missing project falls back to
	// the defaults.
	cfg := config.Default()
	if pp, err := paths.Resolve(projectDir); err == nil {
		if loaded, err := config.LoadProject(pp.ConfigFile, pp.Root); err == nil {
			cfg = loaded
		}
	}

	runner := media.CmdRunner{}
	report := toolsReport{Tools: tools.Detect(ctx, runner, map[string]string{
		"ffmpeg":  cfg.Tools.FFmpeg,
		"ffprobe": cfg.Tools.FFprobe,
	})}
	if toolsShowEncoders {
		enc, err := resolveEncoder(ctx, runner, cfg)
		if err != nil {
			return err
		}
		report.Encoder = &enc
	}

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	writeToolsTable(cmd.OutOrStdout(), report)
	return nil
}

func resolveEncoder(ctx context.Context, runner media.Runner, cfg config.Config) (encoderReport, error) {
	ffmpeg, err := tools.Lookup("ffmpeg", cfg.Tools.FFmpeg)
	if err != nil {
		return encoderReport{}, err
	}
	enc := encoderReport{Preferred: cfg.Encoding.VideoCodec}
	if enc.Preferred == "" {
		enc.Preferred = tools.SoftwareH264
	}
	available, err := tools.ProbeEncoders(ctx, runner, ffmpeg)
	if err != nil {
		return encoderReport{}, err
	}
	enc.Resolved, enc.FellBack = tools.ResolveCodec(enc.Preferred, available)
	if enc.Libass, err = tools.HasFilter(ctx, runner, ffmpeg, "ass"); err != nil {
		return encoderReport{}, err
	}
	return enc, nil
}

func writeToolsTable(out io.Writer, report toolsReport) {
	w := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tVERSION\tMINIMUM\tOK\tPATH")
	for _, st := range report.Tools {
		ok := "yes"
		if !st.Satisfied {
			ok = "no"
		}
		path := st.Path
		if path == "" {
			path = "(missing)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", st.Tool, tui.NonEmptyOrDash(st.Version), st.Minimum, ok, path)
	}
	w.Flush()

	for _, st := range report.Tools {
		if st.Error != "" {
			fmt.Fprintf(out, "%s: %s\n", st.Tool, st.Error)
		}
		for _, note := range st.Notes {
			fmt.Fprintf(out, "  hint: %s\n", note)
		}
	}

	if enc := report.Encoder; enc != nil {
		fmt.Fprintf(out, "\nencoder: %s", enc.Resolved)
		if enc.FellBack {
			fmt.Fprintf(out, " (%s unavailable)", enc.Preferred)
		}
		fmt.Fprintf(out, ", libass %s\n", map[bool]string{true: "yes", false: "no"}[enc.Libass])
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reelforge/internal/assets"
	"reelforge/internal/paths"
	"reelforge/internal/render"
	"reelforge/internal/render/state"
	"reelforge/internal/tui"
	"reelforge/pkg/contentplan"
)

var (
	renderForce      bool
	renderNoProgress bool
	renderOutput     string
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Assemble the final video from the plan and asset manifest",
		RunE:  runRender,
	}

	cmd.Flags().BoolVar(&renderForce, "force", false, "Assemble even if inputs and config are unchanged")
	cmd.Flags().BoolVar(&renderNoProgress, "no-progress", false, "Disable interactive progress output")
	cmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default output/final.mp4)")

	return cmd
}

type renderJSONResult struct {
	Project  string           `json:"project"`
	Skipped  bool             `json:"skipped"`
	Reason   string           `json:"reason"`
	Artifact *render.Artifact `json:"artifact,omitempty"`
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, cfg, err := openProject()
	if err != nil {
		return err
	}
	if err := pp.EnsureMetaDirs(); err != nil {
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

	output := resolveOutputPath(pp, renderOutput)
	out := cmd.OutOrStdout()

	rs, _ := state.Load(pp.StateFile)
	configHash := state.ConfigHash(cfg)
	inputHash := state.InputHash(plan, manifest)
	decision := state.Detect(rs, output, configHash, inputHash, renderForce)
	logger.Info("render decision", zap.String("output", output), zap.String("action", decision.Action), zap.String("reason", decision.Reason))

	if decision.Action == state.ActionSkip {
		if outputJSON {
			return writeJSON(out, renderJSONResult{Project: pp.Root, Skipped: true, Reason: decision.Reason})
		}
		fmt.Fprintf(out, "%s is %s; use --force to assemble again\n", relPath(pp.Root, output), decision.Reason)
		return nil
	}

	svc, err := render.NewService(pp, cfg, nil, logger)
	if err != nil {
		return err
	}
	if verbose {
		svc.SetStderr(cmd.ErrOrStderr())
	}

	mode := tui.DetectMode(out, renderNoProgress, outputJSON)
	art, err := assemble(ctx, svc, out, mode, plan, manifest, output)
	if err != nil {
		return err
	}

	rs.ConfigHash = configHash
	rs.Record(output, state.OutputState{
		InputHash:  inputHash,
		RenderedAt: time.Now().UTC(),
		DurationS:  art.Duration,
		Codec:      art.Codec,
	})
	if n := rs.Prune(); n > 0 {
		logger.Debug("pruned render state", zap.Int("outputs", n))
	}
	if err := rs.Save(pp.StateFile); err != nil {
		logger.Warn("save render state", zap.Error(err))
	}

	if outputJSON {
		return writeJSON(out, renderJSONResult{Project: pp.Root, Reason: decision.Reason, Artifact: &art})
	}
	writeRenderSummary(out, cmd.ErrOrStderr(), pp.Root, art)
	return nil
}

func assemble(ctx context.Context, svc *render.Service, out io.Writer, mode tui.OutputMode, plan contentplan.Plan, manifest assets.Manifest, output string) (render.Artifact, error) {
	opts := render.Options{OutputPath: output}

	switch mode {
	case tui.ModeTUI:
		var art render.Artifact
		model := tui.NewProgressModel("Assembling " + filepath.Base(output))
		err := tui.RunWithWork(out, model, func(send func(tea.Msg)) error {
			opts.Reporter = tui.NewStageReporter(send)
			var err error
			art, err = svc.Assemble(ctx, plan, manifest, opts)
			return err
		})
		return art, err
	case tui.ModePlain:
		opts.Reporter = tui.NewPlainReporter(out)
	}
	return svc.Assemble(ctx, plan, manifest, opts)
}

// resolveOutputPath applies the --output flag relative to the project root.
func resolveOutputPath(pp paths.ProjectPaths, flag string) string {
	if flag == "" {
		return pp.OutputFile
	}
	if filepath.IsAbs(flag) {
		return flag
	}
	return filepath.Join(pp.Root, flag)
}

func writeRenderSummary(out, errOut io.Writer, root string, art render.Artifact) {
	fmt.Fprintf(out, "assembled %s (%s, %d clips, narration %s, codec %s)\n",
		relPath(root, art.Path), formatSeconds(art.Duration), len(art.Placements), formatSeconds(art.NarrationDuration), art.Codec)
	if art.Music != nil {
		fmt.Fprintf(out, "music: %d loop(s) of %s at volume %.2f\n", art.Music.Loops, filepath.Base(art.Music.Path), art.Music.Volume)
	} else {
		fmt.Fprintf(out, "music: %s (%s)\n", art.MusicStatus, tui.NonEmptyOrDash(art.MusicReason))
	}
	fmt.Fprintf(out, "captions: %d events\n", art.CaptionEvents)
	for _, w := range art.Warnings {
		fmt.Fprintln(errOut, tui.WarnStyle.Render("warning: "+w))
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/config"
	"reelforge/internal/paths"
	"reelforge/internal/tui"
)

var configShowDefaults bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit reelforge.yaml",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file, defaults and .env overrides)",
		RunE:  runConfigShow,
	}
	show.Flags().BoolVar(&configShowDefaults, "defaults", false, "Print the built-in defaults instead of the project configuration")

	cmd.AddCommand(show)
	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Open reelforge.yaml in $VISUAL or $EDITOR and validate it on exit",
		RunE:  runConfigEdit,
	})
	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	root := ""
	if !configShowDefaults {
		pp, loaded, err := openProject()
		if err != nil {
			return err
		}
		cfg, root = loaded, pp.Root
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))
	if !strings.HasSuffix(string(data), "\n") {
		fmt.Fprintln(out)
	}

	if root != "" {
		reportConfigIssues(cmd.ErrOrStderr(), cfg.ValidateStrict(root))
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
		return err
	}
	if err := writeDefaultConfig(pp.ConfigFile); err != nil {
		return err
	}

	argv := editorCommand(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
	argv = append(argv, pp.ConfigFile)

	editor := exec.CommandContext(ctx, argv[0], argv[1:]...)
	editor.Stdin = cmd.InOrStdin()
	editor.Stdout = cmd.OutOrStdout()
	editor.Stderr = cmd.ErrOrStderr()
	editor.Dir = pp.Root
	if err := editor.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}

	cfg, err := config.LoadProject(pp.ConfigFile, pp.Root)
	if err != nil {
		return fmt.Errorf("edited config does not load: %w", err)
	}
	results := cfg.ValidateStrict(pp.Root)
	reportConfigIssues(cmd.ErrOrStderr(), results)
	if config.HasErrors(results) {
		return errors.New("config has errors; run `reelforge config edit` again")
	}
	return nil
}

// writeDefaultConfig seeds path with the defaults so the editor never opens an
// empty buffer. An existing file is left alone.
func writeDefaultConfig(path string) error {
	exists, err := paths.FileExists(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	if exists {
		return nil
	}
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// editorCommand splits the first non-empty editor setting into argv,
// falling back to vi.
func editorCommand(settings ...string) []string {
	for _, s := range settings {
		if fields := strings.Fields(s); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

func reportConfigIssues(w io.Writer, results []config.ValidationResult) {
	for _, r := range results {
		fmt.Fprintln(w, tui.WarnStyle.Render(r.Level+": "+r.Message))
	}
}

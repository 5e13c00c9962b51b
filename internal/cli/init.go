package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reelforge/internal/config"
	"reelforge/internal/paths"
)

const (
	planTemplate = `{
  "title": "My short",
  "background_music_hint": "calm ambient",
  "sections": [
    {
      "id": "hook",
      "title": "Hook",
      "narrative_script": "Replace with the opening line.",
      "visual_search_query": "city skyline at night",
      "highlight_keywords": ["opening"]
    }
  ],
  "cta_script": "Follow for more."
}
`
	assetsTemplate = `{
  "narration": [
    {"section_id": "hook", "path": "audio/hook.mp3"},
    {"section_id": "cta", "path": "audio/cta.mp3"}
  ],
  "visuals": [
    {"section_id": "hook", "path": "visuals/hook.mp4", "kind": "video"},
    {"section_id": "cta", "path": "visuals/cta.jpg", "kind": "image"}
  ],
  "music": {"path": "music/bed.mp3"},
  "word_timings": {}
}
`
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a reelforge project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		return filepath.Join(cwd, args[0]), nil
	}

	return nextAvailableDir(cwd)
}

func nextAvailableDir(base string) (string, error) {
	for i := 1; ; i++ {
		candidate := filepath.Join(base, fmt.Sprintf("reelforge-%d", i))
		exists, err := paths.DirExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
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
	logger.Info("init", zap.String("project", pp.Root))

	configData, err := config.Default().Marshal()
	if err != nil {
		return err
	}

	created := make([]string, 0, 3)
	for _, f := range []struct {
		path string
		data []byte
	}{
		{pp.ConfigFile, configData},
		{pp.PlanFile, []byte(planTemplate)},
		{pp.AssetsFile, []byte(assetsTemplate)},
	} {
		wrote, err := ensureFile(f.path, f.data, logger)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, filepath.Base(f.path))
		}
	}

	if len(created) == 0 {
		cmd.Printf("Project already initialized at %s\n", pp.Root)
		return nil
	}

	cmd.Printf("Initialized project at %s\n", pp.Root)
	for _, entry := range created {
		cmd.Printf("  created %s\n", entry)
	}
	return nil
}

// ensureFile writes data to path unless the file already exists.
func ensureFile(path string, data []byte, logger *zap.Logger) (bool, error) {
	exists, err := paths.FileExists(path)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", filepath.Base(path), err)
	}
	if exists {
		logger.Debug("file exists", zap.String("path", path))
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	logger.Info("created file", zap.String("path", path))
	return true, nil
}

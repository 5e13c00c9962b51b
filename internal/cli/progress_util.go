package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/internal/logx"
	"reelforge/internal/paths"
	"reelforge/pkg/contentplan"
)

// openProject resolves the project root, loads reelforge.yaml with .env
// overrides, and applies configured file locations.
func openProject() (paths.ProjectPaths, config.Config, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return pp, config.Config{}, err
	}
	if err := ensureProjectDir(pp); err != nil {
		return pp, config.Config{}, err
	}
	cfg, err := config.LoadProject(pp.ConfigFile, pp.Root)
	if err != nil {
		return pp, config.Config{}, err
	}
	return paths.ApplyConfig(pp, cfg), cfg, nil
}

func ensureProjectDir(pp paths.ProjectPaths) error {
	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return fmt.Errorf("project directory does not exist: %s", pp.Root)
	}
	return nil
}

// loadInputs reads the content plan and asset manifest.
func loadInputs(pp paths.ProjectPaths) (contentplan.Plan, assets.Manifest, error) {
	plan, err := contentplan.Load(pp.PlanFile)
	if err != nil {
		return contentplan.Plan{}, assets.Manifest{}, err
	}
	manifest, err := assets.Load(pp.AssetsFile)
	if err != nil {
		return contentplan.Plan{}, assets.Manifest{}, err
	}
	return plan, manifest, nil
}

// openLogger returns the project logger and a cleanup func that flushes it.
func openLogger(pp paths.ProjectPaths) (*zap.Logger, func(), error) {
	logger, closer, err := logx.New(pp, verbose)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() {
		_ = logger.Sync()
		_ = closer.Close()
	}, nil
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// relPath shortens path relative to root for display.
func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.2fs", v)
}

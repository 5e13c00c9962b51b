package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelforge/internal/config"
)

// ProjectPaths captures canonical locations for a reelforge project.
type ProjectPaths struct {
	Root       string
	ConfigFile string
	PlanFile   string
	AssetsFile string
	OutputDir  string
	OutputFile string
	MetaDir    string
	WorkDir    string
	LogsDir    string
	StateFile  string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".reelforge")
	outputDir := filepath.Join(root, "output")
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, "reelforge.yaml"),
		PlanFile:   filepath.Join(root, "plan.json"),
		AssetsFile: filepath.Join(root, "assets.json"),
		OutputDir:  outputDir,
		OutputFile: filepath.Join(outputDir, "final.mp4"),
		MetaDir:    metaDir,
		WorkDir:    filepath.Join(metaDir, "work"),
		LogsDir:    filepath.Join(root, "logs"),
		StateFile:  filepath.Join(metaDir, "render_state.json"),
	}
}

// ApplyConfig overrides file locations with those named in the config.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if plan := strings.TrimSpace(cfg.Files.Plan); plan != "" {
		pp.PlanFile = resolveProjectPath(pp.Root, plan)
	}
	if assets := strings.TrimSpace(cfg.Files.Assets); assets != "" {
		pp.AssetsFile = resolveProjectPath(pp.Root, assets)
	}
	if output := strings.TrimSpace(cfg.Files.Output); output != "" {
		pp.OutputFile = resolveProjectPath(pp.Root, output)
		pp.OutputDir = filepath.Dir(pp.OutputFile)
	}
	return pp
}

// RunWorkDir returns the scratch directory for a single assembly run.
func (p ProjectPaths) RunWorkDir(runID string) string {
	return filepath.Join(p.WorkDir, runID)
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureMetaDirs creates the standard output/logs/work hierarchy alongside
// the hidden .reelforge metadata directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.WorkDir, p.OutputDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelforge/internal/paths"
)

var cleanDryRun bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove derived artifacts from the project",
	}

	cmd.PersistentFlags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	cmd.AddCommand(&cobra.Command{
		Use:   "work",
		Short: "Remove work directories and partial outputs left by interrupted runs",
		RunE:  runCleanWork,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "logs",
		Short: "Remove all log files",
		RunE:  runCleanLogs,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Remove work directories, partial outputs, logs and render state",
		RunE:  runCleanAll,
	})

	return cmd
}

type cleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freed_bytes"`
	Skipped    int   `json:"skipped"`
	DryRun     bool  `json:"dry_run"`
}

func runCleanWork(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	cleanWork(pp, out, &result)
	return writeCleanResult(out, "work", result)
}

func runCleanLogs(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	for _, path := range listFiles(pp.LogsDir, "") {
		removeEntry(path, out, &result)
	}
	return writeCleanResult(out, "logs", result)
}

func runCleanAll(cmd *cobra.Command, _ []string) error {
	pp, err := resolveCleanPaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}

	cleanWork(pp, out, &result)
	for _, path := range listFiles(pp.LogsDir, "") {
		removeEntry(path, out, &result)
	}
	if exists, err := paths.FileExists(pp.StateFile); err == nil && exists {
		removeEntry(pp.StateFile, out, &result)
	}
	return writeCleanResult(out, "all", result)
}

// cleanWork removes per-run work directories and *.partial outputs. Both only
// survive a run that was killed before its resources were released.
func cleanWork(pp paths.ProjectPaths, out io.Writer, result *cleanResult) {
	entries, err := os.ReadDir(pp.WorkDir)
	if err == nil {
		for _, e := range entries {
			removeEntry(filepath.Join(pp.WorkDir, e.Name()), out, result)
		}
	}
	for _, path := range listFiles(filepath.Dir(pp.OutputFile), ".partial") {
		removeEntry(path, out, result)
	}
}

func resolveCleanPaths() (paths.ProjectPaths, error) {
	pp, _, err := openProject()
	return pp, err
}

// listFiles returns the regular files directly inside dir whose names end in
// suffix. A missing directory yields nothing.
func listFiles(dir, suffix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}

func entrySize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}

func removeEntry(path string, out io.Writer, result *cleanResult) {
	size, err := entrySize(path)
	if err != nil {
		result.Skipped++
		return
	}

	if cleanDryRun {
		fmt.Fprintf(out, "would remove %s (%s)\n", path, formatSize(size))
		result.Removed++
		result.FreedBytes += size
		return
	}

	if err := os.RemoveAll(path); err != nil {
		if !outputJSON {
			fmt.Fprintf(out, "error removing %s: %v\n", path, err)
		}
		result.Skipped++
		return
	}

	result.Removed++
	result.FreedBytes += size
	if !outputJSON {
		fmt.Fprintf(out, "removed %s (%s)\n", path, formatSize(size))
	}
}

func writeCleanResult(out io.Writer, label string, result cleanResult) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	action := "complete"
	if cleanDryRun {
		action = "(dry run)"
	}
	fmt.Fprintf(out, "\nClean %s %s: %d removed, %s freed, %d skipped\n",
		label, action, result.Removed, formatSize(result.FreedBytes), result.Skipped)
	return nil
}

// Package tools locates the external media binaries and inspects what the
// local ffmpeg build can do.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"reelforge/internal/media"
)

// ErrToolNotFound is returned when a required binary cannot be located.
var ErrToolNotFound = errors.New("tool not found")

// Lookup resolves the executable for a known tool. An explicit override wins,
// then the tool's environment variable, then PATH.
func Lookup(name, override string) (string, error) {
	def, ok := Definition(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}

	candidate := strings.TrimSpace(override)
	if candidate == "" && def.EnvOverride != "" {
		candidate = strings.TrimSpace(os.Getenv(def.EnvOverride))
	}
	if candidate == "" {
		candidate = def.Binary.Executable
	}

	path, err := exec.LookPath(candidate)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", name, ErrToolNotFound)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return path, nil
}

// Detect reports the status of every known tool. overrides maps tool names to
// explicit binary paths.
func Detect(ctx context.Context, runner media.Runner, overrides map[string]string) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if runner == nil {
		runner = media.CmdRunner{}
	}

	var statuses []Status
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		statuses = append(statuses, detectOne(ctx, runner, def, overrides[name]))
	}
	return statuses
}

func detectOne(ctx context.Context, runner media.Runner, def ToolDefinition, override string) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion}

	path, err := Lookup(def.Name, override)
	if err != nil {
		status.Error = err.Error()
		status.Notes = installHints(def.Name)
		return status
	}
	status.Path = path

	version, err := readVersion(ctx, runner, def, path)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version
	status.Satisfied = meetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", version, def.MinimumVersion)
		status.Notes = installHints(def.Name)
	}
	return status
}

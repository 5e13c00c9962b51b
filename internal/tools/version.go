package tools

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"reelforge/internal/media"
)

var (
	// Snapshot builds carry a git revision instead of a release number.
	nightlyPattern = regexp.MustCompile(`^(N-\d+|git-)`)
	releasePattern = regexp.MustCompile(`\d+(?:\.\d+){0,2}`)
)

func readVersion(ctx context.Context, runner media.Runner, def ToolDefinition, path string) (string, error) {
	res, err := runner.Run(ctx, path, []string{def.Binary.VersionSwitch}, media.RunOptions{})
	if err != nil {
		return "", fmt.Errorf("%s version: %w", def.Name, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	return normalizeFFmpegVersion(line), nil
}

// normalizeFFmpegVersion reduces the banner line to "6.1.1" for releases and
// to the raw revision ("N-113210-g1a2b3c") for snapshot builds.
func normalizeFFmpegVersion(line string) string {
	token := line
	if fields := strings.Fields(line); len(fields) >= 3 && fields[1] == "version" {
		token = fields[2]
	}
	if nightlyPattern.MatchString(token) {
		return token
	}
	if release := releasePattern.FindString(token); release != "" {
		return release
	}
	return token
}

// meetsMinimum compares dotted release numbers. Snapshot builds are newer than
// any release minimum this tool asks for.
func meetsMinimum(version, minimum string) bool {
	switch {
	case minimum == "":
		return true
	case version == "":
		return false
	case nightlyPattern.MatchString(version):
		return true
	}
	return compareVersions(numericParts(version), numericParts(minimum)) >= 0
}

func compareVersions(a, b []int) int {
	for i := 0; i < max(len(a), len(b)); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func numericParts(version string) []int {
	fields := strings.FieldsFunc(version, func(r rune) bool { return r < '0' || r > '9' })
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, _ := strconv.Atoi(f)
		parts = append(parts, n)
	}
	return parts
}

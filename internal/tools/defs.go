package tools

import (
	"runtime"
	"sort"
)

var toolDefinitions = map[string]ToolDefinition{
	"ffmpeg": {
		Name:           "ffmpeg",
		MinimumVersion: "4.4",
		EnvOverride:    "REELFORGE_FFMPEG",
		Binary:         BinarySpec{Executable: executableName("ffmpeg"), VersionSwitch: "-version"},
	},
	"ffprobe": {
		Name:           "ffprobe",
		MinimumVersion: "4.4",
		EnvOverride:    "REELFORGE_FFPROBE",
		Binary:         BinarySpec{Executable: executableName("ffprobe"), VersionSwitch: "-version"},
	},
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// KnownTools returns the list of required tool names.
func KnownTools() []string {
	names := make([]string, 0, len(toolDefinitions))
	for name := range toolDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the tool definition for the provided name.
func Definition(name string) (ToolDefinition, bool) {
	def, ok := toolDefinitions[name]
	return def, ok
}

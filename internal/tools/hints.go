package tools

import "runtime"

// Capabilities the engine needs from an ffmpeg build beyond the binary itself.
const (
	FeatureLibass   = "libass"
	FeatureHardware = "hardware-encoder"
)

var packageHints = map[string]string{
	"darwin":  "brew install ffmpeg",
	"linux":   "sudo apt install ffmpeg (or your distro's equivalent)",
	"windows": "winget install Gyan.FFmpeg",
}

func installHints(tool string) []string {
	if tool != "ffmpeg" && tool != "ffprobe" {
		return nil
	}
	cmd, ok := packageHints[runtime.GOOS]
	if !ok {
		return []string{"install ffmpeg (ffprobe ships with it) from https://ffmpeg.org/download.html"}
	}
	hints := []string{"install: " + cmd}
	if tool == "ffprobe" {
		hints = append(hints, "ffprobe ships with ffmpeg; point tools.ffprobe at it if it is not on PATH")
	}
	return hints
}

// FeatureHints explains how to obtain an ffmpeg build with feature.
func FeatureHints(feature string) []string {
	switch feature {
	case FeatureLibass:
		hints := []string{"captions are burned with the ass filter, which needs ffmpeg built with --enable-libass"}
		if runtime.GOOS == "linux" {
			hints = append(hints, "distro packages and the static builds from johnvansickle.com include it")
		} else {
			hints = append(hints, "the Homebrew and gyan.dev builds include it")
		}
		return hints
	case FeatureHardware:
		return []string{
			"the configured encoder is missing from ffmpeg -encoders; libx264 is used instead",
			"set encoding.video_codec (or REELFORGE_VIDEO_CODEC) to an encoder your build lists",
		}
	}
	return nil
}

package tools

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"reelforge/internal/media"
)

// SoftwareH264 is the encoder every ffmpeg build used for rendering must carry.
const SoftwareH264 = "libx264"

// CodecFamily groups related encoders by technology.
type CodecFamily struct {
	Name     string
	Codecs   []string
	Software string
}

// CodecFamilies lists the supported encoder families with candidates in
// priority order. The last codec of each family is its software fallback.
var CodecFamilies = []CodecFamily{
	{"H.264", []string{"h264_videotoolbox", "h264_nvenc", "h264_qsv", "h264_vaapi", "h264_amf", "libx264"}, "libx264"},
	{"H.265 (HEVC)", []string{"hevc_videotoolbox", "hevc_nvenc", "hevc_qsv", "hevc_vaapi", "hevc_amf", "libx265"}, "libx265"},
}

// EncoderSet is the set of encoder names compiled into an ffmpeg build.
type EncoderSet map[string]bool

// Has reports whether the encoder is available.
func (s EncoderSet) Has(name string) bool {
	return s[name]
}

// ProbeEncoders lists the video encoders of the ffmpeg build at ffmpegPath.
func ProbeEncoders(ctx context.Context, runner media.Runner, ffmpegPath string) (EncoderSet, error) {
	if runner == nil {
		runner = media.CmdRunner{}
	}
	res, err := runner.Run(ctx, ffmpegPath, []string{"-hide_banner", "-encoders"}, media.RunOptions{})
	if err != nil {
		return nil, fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	return ParseEncoders(res.Stdout), nil
}

// ParseEncoders reads the table printed by `ffmpeg -encoders`. Only video
// encoders are kept.
func ParseEncoders(output []byte) EncoderSet {
	set := EncoderSet{}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	started := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !started {
			if strings.HasPrefix(line, "------") {
				started = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		if fields[0][0] != 'V' {
			continue
		}
		set[fields[1]] = true
	}
	return set
}

// ResolveCodec picks the encoder to use for preferred. When the preferred
// encoder is missing the family's software encoder is returned and fellBack is
// true. Unknown codecs fall back to libx264.
func ResolveCodec(preferred string, available EncoderSet) (codec string, fellBack bool) {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return SoftwareH264, false
	}
	if available.Has(preferred) {
		return preferred, false
	}
	for _, family := range CodecFamilies {
		for _, c := range family.Codecs {
			if c == preferred && available.Has(family.Software) {
				return family.Software, true
			}
		}
	}
	return SoftwareH264, true
}

// HasFilter reports whether ffmpeg was built with the named filter.
func HasFilter(ctx context.Context, runner media.Runner, ffmpegPath, name string) (bool, error) {
	if runner == nil {
		runner = media.CmdRunner{}
	}
	res, err := runner.Run(ctx, ffmpegPath, []string{"-hide_banner", "-filters"}, media.RunOptions{})
	if err != nil {
		return false, fmt.Errorf("list ffmpeg filters: %w", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(res.Stdout))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == name {
			return true, nil
		}
	}
	return false, nil
}

package tools

import (
	"context"
	"errors"
	"testing"

	"reelforge/internal/media"
)

const sampleEncoders = `Encoders:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 .F.... = Frame-level multithreading
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D h264_videotoolbox    VideoToolbox H.264 Encoder (codec h264)
 V....D libx265              libx265 H.265 / HEVC (codec hevc)
 A....D aac                  AAC (Advanced Audio Coding)
`

type fakeRunner struct {
	stdout []byte
	err    error
	args   []string
}

func (f *fakeRunner) Run(ctx context.Context, command string, args []string, opts media.RunOptions) (media.RunResult, error) {
	f.args = args
	return media.RunResult{Stdout: f.stdout}, f.err
}

func TestParseEncodersKeepsVideoOnly(t *testing.T) {
	set := ParseEncoders([]byte(sampleEncoders))
	for _, want := range []string{"libx264", "h264_videotoolbox", "libx265"} {
		if !set.Has(want) {
			t.Errorf("expected %s in encoder set", want)
		}
	}
	if set.Has("aac") {
		t.Errorf("audio encoder should not be listed")
	}
	if set.Has("=") || set.Has("Video") {
		t.Errorf("legend lines should be skipped: %v", set)
	}
}

func TestResolveCodec(t *testing.T) {
	available := ParseEncoders([]byte(sampleEncoders))
	tests := []struct {
		name      string
		preferred string
		want      string
		fellBack  bool
	}{
		{"empty uses software", "", "libx264", false},
		{"available hardware", "h264_videotoolbox", "h264_videotoolbox", false},
		{"missing hardware h264", "h264_nvenc", "libx264", true},
		{"missing hardware hevc", "hevc_nvenc", "libx265", true},
		{"unknown codec", "made_up", "libx264", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fellBack := ResolveCodec(tt.preferred, available)
			if got != tt.want || fellBack != tt.fellBack {
				t.Fatalf("ResolveCodec(%q) = %q,%v want %q,%v", tt.preferred, got, fellBack, tt.want, tt.fellBack)
			}
		})
	}
}

func TestProbeEncodersUsesRunner(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(sampleEncoders)}
	set, err := ProbeEncoders(context.Background(), runner, "ffmpeg")
	if err != nil {
		t.Fatalf("ProbeEncoders error: %v", err)
	}
	if !set.Has("libx264") {
		t.Fatalf("expected libx264 in %v", set)
	}
	if len(runner.args) != 2 || runner.args[1] != "-encoders" {
		t.Fatalf("unexpected args %v", runner.args)
	}
}

func TestProbeEncodersError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	if _, err := ProbeEncoders(context.Background(), runner, "ffmpeg"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHasFilter(t *testing.T) {
	runner := &fakeRunner{stdout: []byte(" ... ass               V->V       Render ASS subtitles onto input video using the libass library.\n T.C overlay           VV->V      Overlay a video source on top of the input.\n")}
	ok, err := HasFilter(context.Background(), runner, "ffmpeg", "ass")
	if err != nil || !ok {
		t.Fatalf("HasFilter(ass) = %v, %v", ok, err)
	}
	ok, err = HasFilter(context.Background(), runner, "ffmpeg", "subtitles")
	if err != nil || ok {
		t.Fatalf("HasFilter(subtitles) = %v, %v", ok, err)
	}
}

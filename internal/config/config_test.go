package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.Width != 1080 || cfg.Video.Height != 1920 || cfg.Video.FPS != 24 {
		t.Fatalf("unexpected video defaults %+v", cfg.Video)
	}
	if cfg.Music.Volume != 0.07 {
		t.Fatalf("expected music volume 0.07, got %v", cfg.Music.Volume)
	}
	if cfg.Assembly.MinClipDurationS != 2.0 {
		t.Fatalf("expected min clip 2.0, got %v", cfg.Assembly.MinClipDurationS)
	}
	if results := cfg.Validate(); HasErrors(results) {
		t.Fatalf("defaults should validate, got %v", results)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelforge.yaml")
	data := "video:\n  fps: 30\nmusic:\n  volume: 0.2\ncaptions:\n  mode: karaoke\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.FPS != 30 || cfg.Video.Width != 1080 {
		t.Fatalf("unexpected video %+v", cfg.Video)
	}
	if cfg.Music.Volume != 0.2 || cfg.Music.FadeInS != 1.0 {
		t.Fatalf("unexpected music %+v", cfg.Music)
	}
	if cfg.Captions.Mode != CaptionModeKaraoke || cfg.Captions.Match != MatchFold {
		t.Fatalf("unexpected captions %+v", cfg.Captions)
	}
}

func TestMarshalRoundTripsThroughLoad(t *testing.T) {
	cfg := Default()
	cfg.Encoding.VideoCodec = "h264_nvenc"
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "reelforge.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Encoding.VideoCodec != "h264_nvenc" {
		t.Fatalf("expected codec to survive, got %q", loaded.Encoding.VideoCodec)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(map[string]string{
		EnvVideoCodec: "h264_videotoolbox",
		EnvThreads:    "4",
		EnvFFmpeg:     "/opt/ffmpeg/bin/ffmpeg",
	})
	if err != nil {
		t.Fatalf("ApplyEnv error: %v", err)
	}
	if cfg.Encoding.VideoCodec != "h264_videotoolbox" || cfg.Encoding.Threads != 4 {
		t.Fatalf("unexpected encoding %+v", cfg.Encoding)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" || cfg.Tools.FFprobe != "" {
		t.Fatalf("unexpected tools %+v", cfg.Tools)
	}

	if err := cfg.ApplyEnv(map[string]string{EnvThreads: "many"}); err == nil {
		t.Fatal("expected error for non-numeric threads")
	}
}

func TestLoadProjectReadsDotEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvThreads, "2")
	t.Setenv(EnvVideoCodec, "")
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("REELFORGE_VIDEO_CODEC=h264_nvenc\nREELFORGE_THREADS=8\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	cfg, err := LoadProject(filepath.Join(root, "reelforge.yaml"), root)
	if err != nil {
		t.Fatalf("LoadProject error: %v", err)
	}
	if cfg.Encoding.VideoCodec != "h264_nvenc" {
		t.Fatalf("expected codec from .env, got %q", cfg.Encoding.VideoCodec)
	}
	if cfg.Encoding.Threads != 2 {
		t.Fatalf("expected process env to win, got %d", cfg.Encoding.Threads)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Audio.Loudnorm = boolPtr(true)
	opts := cfg.EngineOptions()
	if opts.MinClipDuration != 2.0 || opts.MusicVolume != 0.07 || opts.MusicFadeIn != 1.0 {
		t.Fatalf("unexpected engine options %+v", opts)
	}
	if opts.Width != 1080 || opts.Height != 1920 || opts.FPS != 24 {
		t.Fatalf("unexpected dimensions %+v", opts)
	}
	if !opts.Codec.Loudnorm || opts.Codec.VideoCodec != "libx264" {
		t.Fatalf("unexpected codec profile %+v", opts.Codec)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"odd width", func(c *Config) { c.Video.Width = 1081 }, "must be even"},
		{"negative fps", func(c *Config) { c.Video.FPS = -1 }, "fps must be positive"},
		{"loud music", func(c *Config) { c.Music.Volume = 1.5 }, "music volume"},
		{"bad mode", func(c *Config) { c.Captions.Mode = "scroll" }, "captions mode"},
		{"bad match", func(c *Config) { c.Captions.Match = "regex" }, "captions match"},
		{"bad color", func(c *Config) { c.Captions.AccentColor = "yellow" }, "accent_color"},
		{"bad crf", func(c *Config) { c.Encoding.CRF = 60 }, "crf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			results := cfg.Validate()
			if !HasErrors(results) {
				t.Fatalf("expected errors, got %v", results)
			}
			found := false
			for _, r := range results {
				if strings.Contains(r.Message, tt.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %q in %v", tt.want, results)
			}
		})
	}
}

func TestValidateLandscapeWarns(t *testing.T) {
	cfg := Default()
	cfg.Video.Width, cfg.Video.Height = 1920, 1080
	results := cfg.Validate()
	if HasErrors(results) {
		t.Fatalf("landscape should only warn, got %v", results)
	}
	if len(results) != 1 || results[0].Level != "warning" {
		t.Fatalf("expected a single warning, got %v", results)
	}
}

func TestValidateStrictMissingFiles(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Files.Plan = "plans/missing.json"
	results := cfg.ValidateStrict(root)
	if !HasErrors(results) {
		t.Fatalf("expected missing plan error, got %v", results)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override project configuration.
const (
	EnvVideoCodec = "REELFORGE_VIDEO_CODEC"
	EnvThreads    = "REELFORGE_THREADS"
	EnvFFmpeg     = "REELFORGE_FFMPEG"
	EnvFFprobe    = "REELFORGE_FFPROBE"
)

// LoadEnv reads the project's .env file, if present, and overlays the process
// environment on top of it. Non-empty process variables win.
func LoadEnv(projectRoot string) (map[string]string, error) {
	env := map[string]string{}

	dotenv := filepath.Join(projectRoot, ".env")
	fileVars, err := godotenv.Read(dotenv)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", dotenv, err)
	}
	for k, v := range fileVars {
		env[k] = v
	}

	for _, key := range []string{EnvVideoCodec, EnvThreads, EnvFFmpeg, EnvFFprobe} {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv overlays recognised environment overrides onto the configuration.
func (c *Config) ApplyEnv(env map[string]string) error {
	if v := strings.TrimSpace(env[EnvVideoCodec]); v != "" {
		c.Encoding.VideoCodec = v
	}
	if v := strings.TrimSpace(env[EnvThreads]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", EnvThreads, v)
		}
		c.Encoding.Threads = n
	}
	if v := strings.TrimSpace(env[EnvFFmpeg]); v != "" {
		c.Tools.FFmpeg = v
	}
	if v := strings.TrimSpace(env[EnvFFprobe]); v != "" {
		c.Tools.FFprobe = v
	}
	return nil
}

// LoadProject loads the config file and applies environment overrides from the
// project root.
func LoadProject(configPath, projectRoot string) (Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return Config{}, err
	}
	env, err := LoadEnv(projectRoot)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"reelforge/internal/assets"
	"reelforge/internal/config"
	"reelforge/pkg/contentplan"
)

// configInput is the canonical structure hashed for config changes. File
// locations and tool paths do not affect the output.
type configInput struct {
	Video    config.VideoConfig    `json:"video"`
	Audio    config.AudioConfig    `json:"audio"`
	Music    config.MusicConfig    `json:"music"`
	Assembly config.AssemblyConfig `json:"assembly"`
	Captions config.CaptionsConfig `json:"captions"`
	Encoding config.EncodingConfig `json:"encoding"`
}

// fileStamp fingerprints an asset file without reading it.
type fileStamp struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime int64  `json:"mod_time"`
}

type assemblyInput struct {
	Plan   contentplan.Plan `json:"plan"`
	Assets assets.Manifest  `json:"assets"`
	Files  []fileStamp      `json:"files"`
}

// ConfigHash returns a deterministic hash of the output-affecting
// configuration sections.
func ConfigHash(cfg config.Config) string {
	return hashJSON(configInput{
		Video:    cfg.Video,
		Audio:    cfg.Audio,
		Music:    cfg.Music,
		Assembly: cfg.Assembly,
		Captions: cfg.Captions,
		Encoding: cfg.Encoding,
	})
}

// InputHash returns a deterministic hash of the plan, the manifest and the
// size and modification time of every referenced asset file.
func InputHash(plan contentplan.Plan, manifest assets.Manifest) string {
	return hashJSON(assemblyInput{
		Plan:   plan,
		Assets: manifest,
		Files:  stampFiles(manifest),
	})
}

func stampFiles(m assets.Manifest) []fileStamp {
	var paths []string
	for _, n := range m.Narration {
		paths = append(paths, n.Path)
	}
	for _, v := range m.Visuals {
		paths = append(paths, v.Path)
	}
	if m.Music != nil {
		paths = append(paths, m.Music.Path)
	}
	sort.Strings(paths)

	stamps := make([]fileStamp, 0, len(paths))
	for _, p := range paths {
		st := fileStamp{Path: p}
		if info, err := os.Stat(p); err == nil {
			st.Size = info.Size()
			st.ModTime = info.ModTime().UnixNano()
		}
		stamps = append(stamps, st)
	}
	return stamps
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Should never happen with known struct types.
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}

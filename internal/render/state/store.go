package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is bumped whenever the hashed inputs change meaning. State
// written under another version is ignored, which forces a re-render.
const SchemaVersion = 1

// OutputState tracks the inputs that produced one rendered file.
type OutputState struct {
	InputHash  string    `json:"input_hash"`
	RenderedAt time.Time `json:"rendered_at"`
	DurationS  float64   `json:"duration_s"`
	Codec      string    `json:"codec,omitempty"`
}

// RenderState is the persisted record of assembled outputs, keyed by output
// path.
type RenderState struct {
	Version    int                    `json:"version"`
	ConfigHash string                 `json:"config_hash"`
	Outputs    map[string]OutputState `json:"outputs"`
}

// Load reads render state. A missing, corrupt or outdated file yields an
// empty state; the only consequence is a re-render.
func Load(path string) (*RenderState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return emptyState(), nil
	}
	var rs RenderState
	if err := json.Unmarshal(data, &rs); err != nil || rs.Version != SchemaVersion {
		return emptyState(), nil
	}
	if rs.Outputs == nil {
		rs.Outputs = map[string]OutputState{}
	}
	return &rs, nil
}

// Save writes the state through a temp file in the same directory and
// renames it into place.
func (rs *RenderState) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	rs.Version = SchemaVersion
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode render state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write render state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write render state: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Record stores the state for an output.
func (rs *RenderState) Record(outputPath string, st OutputState) {
	if rs.Outputs == nil {
		rs.Outputs = map[string]OutputState{}
	}
	rs.Outputs[outputPath] = st
}

// Prune forgets outputs whose files no longer exist and reports how many
// were dropped.
func (rs *RenderState) Prune() int {
	var dropped int
	for path := range rs.Outputs {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(rs.Outputs, path)
			dropped++
		}
	}
	return dropped
}

func emptyState() *RenderState {
	return &RenderState{Version: SchemaVersion, Outputs: map[string]OutputState{}}
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const testPlan = `{
  "title": "Demo",
  "sections": [
    {"id": "hook", "title": "Hook", "narrative_script": "Hi", "visual_search_query": "sky", "highlight_keywords": ["sky"]}
  ],
  "cta_script": "Follow for more."
}
`

const testAssets = `{
  "narration": [
    {"section_id": "hook", "path": "audio/hook.wav", "duration": 3},
    {"section_id": "cta", "path": "audio/cta.wav", "duration": 2}
  ],
  "visuals": [
    {"section_id": "hook", "path": "visuals/hook.mp4", "duration": 10},
    {"section_id": "cta", "path": "visuals/cta.jpg"}
  ],
  "music": {"path": "music/bed.mp3", "duration": 30},
  "word_timings": {
    "hook": [{"word": "Hi", "start": 0, "end": 0.4}],
    "cta": [{"word": "Follow", "start": 0, "end": 0.5}]
  }
}
`

// withProject points the global flags at a fresh project directory and
// restores them when the test ends.
func withProject(t *testing.T) string {
	t.Helper()
	prevProject, prevJSON, prevVerbose := projectDir, outputJSON, verbose
	t.Cleanup(func() {
		projectDir, outputJSON, verbose = prevProject, prevJSON, prevVerbose
	})
	projectDir = t.TempDir()
	outputJSON = false
	verbose = false
	return projectDir
}

func writeProjectFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeDemoProject writes a complete, valid project.
func writeDemoProject(t *testing.T, root string) {
	t.Helper()
	writeProjectFile(t, root, "plan.json", testPlan)
	writeProjectFile(t, root, "assets.json", testAssets)
	for _, rel := range []string{"audio/hook.wav", "audio/cta.wav", "visuals/hook.mp4", "visuals/cta.jpg", "music/bed.mp3"} {
		writeProjectFile(t, root, rel, "x")
	}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

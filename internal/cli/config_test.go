package cli

import (
	"reflect"
	"strings"
	"testing"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		settings []string
		want     []string
	}{
		{[]string{"code --wait", "nano"}, []string{"code", "--wait"}},
		{[]string{"  ", "nano"}, []string{"nano"}},
		{[]string{"", ""}, []string{"vi"}},
		{nil, []string{"vi"}},
	}
	for _, tt := range tests {
		if got := editorCommand(tt.settings...); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("editorCommand(%q) = %v, want %v", tt.settings, got, tt.want)
		}
	}
}

func TestConfigShowReportsIssues(t *testing.T) {
	root := withProject(t)
	prev := configShowDefaults
	t.Cleanup(func() { configShowDefaults = prev })

	writeProjectFile(t, root, "reelforge.yaml", "music:\n  volume: 3\n")

	out, errOut, err := execute(t, newConfigCmd(), "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "volume: 3") {
		t.Fatalf("expected effective config, got:\n%s", out)
	}
	if !strings.Contains(errOut, "music volume must be within [0,1]") {
		t.Fatalf("expected validation issue on stderr, got %q", errOut)
	}

	out, errOut, err = execute(t, newConfigCmd(), "show", "--defaults")
	if err != nil {
		t.Fatalf("config show --defaults: %v", err)
	}
	if strings.Contains(out, "volume: 3") || errOut != "" {
		t.Fatalf("defaults should ignore the project file, got:\n%s\nstderr: %q", out, errOut)
	}
}

package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadToolConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ToolConfigFileName)
	content := `
[check]
ignore_codes = [2307, 6133]

[run]
runners = ["deno", "node"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tc, err := LoadToolConfig(path)
	if err != nil {
		t.Fatalf("LoadToolConfig: %v", err)
	}
	if !slices.Equal(tc.Check.IgnoreCodes, []uint16{2307, 6133}) {
		t.Errorf("IgnoreCodes = %v", tc.Check.IgnoreCodes)
	}
	if !slices.Equal(tc.Run.Runners, []string{"deno", "node"}) {
		t.Errorf("Runners = %v", tc.Run.Runners)
	}
}

func TestResolveToolConfigDefaults(t *testing.T) {
	tc := ResolveToolConfig(t.TempDir(), nil)
	if !slices.Equal(tc.Run.Runners, []string{"node", "deno"}) {
		t.Errorf("default Runners = %v", tc.Run.Runners)
	}
	if len(tc.Check.IgnoreCodes) != 0 {
		t.Errorf("default IgnoreCodes = %v, want empty", tc.Check.IgnoreCodes)
	}
}

func TestResolveToolConfigDegradesOnBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ToolConfigFileName)
	if err := os.WriteFile(path, []byte("[run\nrunners = oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	tc := ResolveToolConfig(dir, nil)
	if !slices.Equal(tc.Run.Runners, []string{"node", "deno"}) {
		t.Errorf("Runners = %v, want defaults after parse error", tc.Run.Runners)
	}
}

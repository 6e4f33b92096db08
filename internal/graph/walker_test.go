package graph

import (
	"os"
	"path/filepath"
	"testing"

	"tsrun/internal/config"
	"tsrun/internal/resolve"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newWalker(opts *config.Options) *Walker {
	if opts == nil {
		opts = config.Default()
	}
	return NewWalker(resolve.New(opts), nil, nil)
}

func names(deps []Dep) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = filepath.Base(d.SourcePath)
	}
	return out
}

func TestWalkDiamond(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "entry.ts"), `import "./a"; import "./b";`)
	write(t, filepath.Join(dir, "a.ts"), `import "./shared";`)
	write(t, filepath.Join(dir, "b.ts"), `import "./shared";`)
	write(t, filepath.Join(dir, "shared.ts"), `export const s = 1;`)

	deps := newWalker(nil).Walk(filepath.Join(dir, "entry.ts"))
	got := names(deps)
	want := []string{"a.ts", "shared.ts", "b.ts"}
	if len(got) != len(want) {
		t.Fatalf("deps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("deps[%d] = %q, want %q (pre-order)", i, got[i], want[i])
		}
	}
}

func TestWalkCycleTerminates(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.ts"), `import "./b"; export const a = 1;`)
	write(t, filepath.Join(dir, "b.ts"), `import "./a"; export const b = 1;`)

	deps := newWalker(nil).Walk(filepath.Join(dir, "a.ts"))
	if len(deps) != 1 {
		t.Fatalf("deps = %v, want exactly b.ts once", names(deps))
	}
	if filepath.Base(deps[0].SourcePath) != "b.ts" {
		t.Errorf("deps[0] = %q", deps[0].SourcePath)
	}
}

func TestWalkSkipsBareSpecifiers(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "entry.ts"), `
import path from "node:path";
import express from "express";
import "./local";
`)
	write(t, filepath.Join(dir, "local.ts"), `export {};`)

	deps := newWalker(nil).Walk(filepath.Join(dir, "entry.ts"))
	if len(deps) != 1 || filepath.Base(deps[0].SourcePath) != "local.ts" {
		t.Errorf("deps = %v, want only local.ts", names(deps))
	}
}

func TestWalkSkipsUnreadableSubtree(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "entry.ts"), `import "./missing-target"; import "./ok";`)
	write(t, filepath.Join(dir, "ok.ts"), `export {};`)

	// missing-target never resolves, ok.ts still walks.
	deps := newWalker(nil).Walk(filepath.Join(dir, "entry.ts"))
	if len(deps) != 1 || filepath.Base(deps[0].SourcePath) != "ok.ts" {
		t.Errorf("deps = %v", names(deps))
	}
}

func TestWalkMarksAssets(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "entry.ts"), `import data from "./data.json";`)
	write(t, filepath.Join(dir, "data.json"), `{"k": 1}`)

	deps := newWalker(nil).Walk(filepath.Join(dir, "entry.ts"))
	if len(deps) != 1 {
		t.Fatalf("deps = %v", names(deps))
	}
	if deps[0].NeedsConversion {
		t.Error("json asset marked as needing conversion")
	}
}

func TestWalkAliasedImports(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "app", "entry.ts"), `import "@lib/util";`)
	write(t, filepath.Join(root, "src", "lib", "util.ts"), `export {};`)

	opts := config.Default()
	opts.BaseDir = root
	opts.BaseURL = root
	opts.Paths = map[string][]string{"@lib/*": {"src/lib/*"}}

	deps := newWalker(opts).Walk(filepath.Join(root, "app", "entry.ts"))
	if len(deps) != 1 || filepath.Base(deps[0].SourcePath) != "util.ts" {
		t.Errorf("deps = %v", names(deps))
	}
}

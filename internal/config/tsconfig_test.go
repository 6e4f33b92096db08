package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindTSConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{}`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindTSConfig(nested)
	if err != nil {
		t.Fatalf("FindTSConfig: %v", err)
	}
	if !ok {
		t.Fatal("config not found")
	}
	if filepath.Dir(path) != root {
		t.Errorf("found %q, want config in %q", path, root)
	}
}

func TestFindTSConfigMissing(t *testing.T) {
	_, ok, err := FindTSConfig(t.TempDir())
	if err != nil {
		t.Fatalf("FindTSConfig: %v", err)
	}
	if ok {
		t.Error("found a config in an empty tree")
	}
}

func TestResolveToleratesComments(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		// project options
		"compilerOptions": {
			"target": "ES2020",
			"module": "commonjs",
			"strict": true, /* trailing comma next */
		},
	}`)

	opts := Resolve(dir, nil)
	if opts.ConfigPath == "" {
		t.Fatal("expected config to be used, got defaults")
	}
	if opts.Target != TargetES2020 {
		t.Errorf("Target = %q", opts.Target)
	}
	if opts.Format != FormatCJS {
		t.Errorf("Format = %q", opts.Format)
	}
	if !opts.Strict {
		t.Error("Strict not applied")
	}
}

func TestResolveDegradesOnParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"compilerOptions": [this is not json`)

	opts := Resolve(dir, nil)
	if opts.ConfigPath != "" {
		t.Error("broken config was not degraded to defaults")
	}
	if opts.Target != TargetESNext {
		t.Errorf("Target = %q, want default", opts.Target)
	}
	if !opts.NoEmit || !opts.SkipLibCheck {
		t.Error("pipeline options not forced on defaults")
	}
}

func TestResolveForcesPipelineOptions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"compilerOptions": {
			"noEmit": false,
			"skipLibCheck": false,
			"esModuleInterop": false,
			"allowJs": false
		}
	}`)

	opts := Resolve(dir, nil)
	if !opts.NoEmit || !opts.SkipLibCheck || !opts.EsModuleInterop || !opts.AllowJS {
		t.Errorf("user config overrode pipeline-required options: %+v", opts)
	}
}

func TestResolveDerivesLibsFromTarget(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"compilerOptions": {"target": "es2016"}}`)

	opts := Resolve(dir, nil)
	for _, want := range []string{"es5", "es2015", "es2016", "dom"} {
		if !slices.Contains(opts.Libs, want) {
			t.Errorf("Libs missing %q: %v", want, opts.Libs)
		}
	}
	if slices.Contains(opts.Libs, "es2017") {
		t.Errorf("Libs contains es2017 for an es2016 target: %v", opts.Libs)
	}
}

func TestResolveExplicitLibWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"compilerOptions": {"target": "es2020", "lib": ["ES2020", "DOM"]}}`)

	opts := Resolve(dir, nil)
	want := []string{"es2020", "dom"}
	if !slices.Equal(opts.Libs, want) {
		t.Errorf("Libs = %v, want %v", opts.Libs, want)
	}
}

func TestResolvePathsAnchorsBaseURL(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"compilerOptions": {"paths": {"@app/*": ["src/*"]}}}`)

	opts := Resolve(dir, nil)
	if !opts.HasAliases() {
		t.Fatal("paths not picked up")
	}
	if opts.BaseURL != dir {
		t.Errorf("BaseURL = %q, want config dir %q", opts.BaseURL, dir)
	}
}

func TestLibsMonotonic(t *testing.T) {
	prev := 0
	for _, target := range targetOrder {
		libs := LibsForTarget(target)
		if len(libs) <= prev {
			t.Errorf("libs for %s not larger than previous target's", target)
		}
		prev = len(libs)
	}
}

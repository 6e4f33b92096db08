package transpile

import (
	"path/filepath"
	"strings"
	"testing"

	"tsrun/internal/config"
	"tsrun/internal/graph"
)

func TestLeadingParents(t *testing.T) {
	tests := []struct {
		rel  string
		want int
	}{
		{"entry.ts", 0},
		{filepath.Join("lib", "util.ts"), 0},
		{"..", 1},
		{filepath.Join("..", "shared", "util.ts"), 1},
		{filepath.Join("..", "..", "x.ts"), 2},
		{filepath.Join("..x", "y.ts"), 0},
	}
	for _, tt := range tests {
		if got := leadingParents(tt.rel); got != tt.want {
			t.Errorf("leadingParents(%q) = %d, want %d", tt.rel, got, tt.want)
		}
	}
}

func TestTreeMapperInTree(t *testing.T) {
	entryDir := filepath.Join("/proj", "src")
	root := filepath.Join("/tmp", "sess")
	m := newTreeMapper(entryDir, root, config.FormatESM, nil)

	got := m.SessionPathFor(filepath.Join(entryDir, "lib", "util.ts"))
	want := filepath.Join(root, "lib", "util.mjs")
	if got != want {
		t.Errorf("SessionPathFor = %q, want %q", got, want)
	}

	// Non-convertible files keep their name.
	got = m.SessionPathFor(filepath.Join(entryDir, "data.json"))
	if got != filepath.Join(root, "data.json") {
		t.Errorf("asset path = %q", got)
	}
}

func TestTreeMapperAnchorHeadroom(t *testing.T) {
	entryDir := filepath.Join("/proj", "app")
	root := filepath.Join("/tmp", "sess")
	deps := []graph.Dep{
		{SourcePath: filepath.Join("/proj", "shared", "a.ts")},
		{SourcePath: filepath.Join("/common", "b.ts")},
	}
	m := newTreeMapper(entryDir, root, config.FormatESM, deps)

	// Deepest dep needs two parent segments, so the anchor sits two levels
	// inside the root.
	if m.anchor != filepath.Join(root, padSegment, padSegment) {
		t.Fatalf("anchor = %q", m.anchor)
	}

	entry := m.SessionPathFor(filepath.Join(entryDir, "entry.ts"))
	deep := m.SessionPathFor(filepath.Join("/common", "b.ts"))
	for _, p := range []string{entry, deep} {
		rel, err := filepath.Rel(root, filepath.Clean(p))
		if err != nil || strings.HasPrefix(rel, "..") {
			t.Errorf("%q escapes session root", p)
		}
	}
	if deep != filepath.Join(root, "common", "b.mjs") {
		t.Errorf("out-of-tree dep = %q", deep)
	}
}

func TestTreeMapperFlatFallback(t *testing.T) {
	entryDir := filepath.Join("/proj", "src")
	root := filepath.Join("/tmp", "sess")
	// No headroom reserved, so a path above entryDir exceeds the anchor and
	// lands flat under the root.
	m := newTreeMapper(entryDir, root, config.FormatESM, nil)

	got := m.SessionPathFor(filepath.Join("/elsewhere", "mod.ts"))
	if got != filepath.Join(root, "mod.mjs") {
		t.Errorf("fallback path = %q", got)
	}
}

func TestTreeMapperFormatExtension(t *testing.T) {
	entryDir := "/p"
	root := "/s"
	for _, tt := range []struct {
		format config.Format
		want   string
	}{
		{config.FormatESM, "a.mjs"},
		{config.FormatCJS, "a.cjs"},
		{config.FormatIIFE, "a.js"},
	} {
		m := newTreeMapper(entryDir, root, tt.format, nil)
		if got := m.SessionPathFor(filepath.Join(entryDir, "a.ts")); filepath.Base(got) != tt.want {
			t.Errorf("%s: base = %q, want %q", tt.format, filepath.Base(got), tt.want)
		}
	}
}

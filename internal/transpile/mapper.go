package transpile

import (
	"path/filepath"
	"strings"

	"tsrun/internal/config"
	"tsrun/internal/graph"
	"tsrun/internal/resolve"
)

// treeMapper computes where a source file lands inside the session tree.
//
// Files inside the entry directory mirror their relative position under the
// anchor. Files outside it (a shared module one level up) keep a relative
// path with parent segments; the anchor sits deep enough inside the session
// root that those segments can never escape it. Only when no relative path
// exists at all (another volume) does a file land flat under the root, named
// by its own basename — colliding basenames across dissimilar directories
// are accepted there.
type treeMapper struct {
	entryDir string
	anchor   string // mirror of entryDir inside the session root
	root     string
	format   config.Format
}

// padSegment is the directory name used to give the anchor headroom for
// parent-directory segments.
const padSegment = "_t"

// newTreeMapper sizes the anchor for the deepest ".." prefix found in deps.
func newTreeMapper(entryDir, sessionRoot string, format config.Format, deps []graph.Dep) *treeMapper {
	up := 0
	for _, d := range deps {
		rel, err := filepath.Rel(entryDir, d.SourcePath)
		if err != nil {
			continue // flat fallback, no headroom needed
		}
		if n := leadingParents(rel); n > up {
			up = n
		}
	}
	anchor := sessionRoot
	for i := 0; i < up; i++ {
		anchor = filepath.Join(anchor, padSegment)
	}
	return &treeMapper{entryDir: entryDir, anchor: anchor, root: sessionRoot, format: format}
}

// SessionPathFor maps an original absolute path to its session location,
// with the extension rewritten for convertible files.
func (m *treeMapper) SessionPathFor(origPath string) string {
	rel, err := filepath.Rel(m.entryDir, origPath)
	if err != nil || leadingParents(rel) > depth(m.anchor)-depth(m.root) {
		return resolve.RewriteName(filepath.Join(m.root, filepath.Base(origPath)), m.format)
	}
	return resolve.RewriteName(filepath.Join(m.anchor, rel), m.format)
}

func leadingParents(rel string) int {
	n := 0
	for rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		n++
		rel = strings.TrimPrefix(strings.TrimPrefix(rel, ".."), string(filepath.Separator))
	}
	return n
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

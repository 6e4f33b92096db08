package graph

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"tsrun/internal/diag"
	"tsrun/internal/resolve"
	"tsrun/internal/source"
)

// Dep is one discovered local dependency.
type Dep struct {
	// SourcePath is the canonical absolute path of the file on disk.
	SourcePath string
	// NeedsConversion reports whether the file must be converted before it
	// can execute on the runtime.
	NeedsConversion bool
}

// Walker discovers the transitive local dependencies of an entry file.
// The zero value is not usable; construct with NewWalker.
type Walker struct {
	resolver *resolve.Resolver
	logger   *log.Logger
	reporter diag.Reporter
}

// NewWalker builds a Walker. logger and reporter may be nil.
func NewWalker(resolver *resolve.Resolver, logger *log.Logger, reporter diag.Reporter) *Walker {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Walker{resolver: resolver, logger: logger, reporter: reporter}
}

// Walk returns every local dependency reachable from entryPath, depth-first
// in pre-order: a file's own dependencies come before its later siblings.
// The entry file itself is not part of the result. The visited set is owned
// here and shared across the whole recursion, so diamond and cyclic imports
// are each visited exactly once.
func (w *Walker) Walk(entryPath string) []Dep {
	entry := source.CanonicalPath(entryPath)
	visited := map[string]struct{}{entry: {}}
	var out []Dep
	w.walkFile(entry, visited, &out)
	return out
}

// walkFile scans one file and recurses into its unvisited dependencies.
// The visited set travels by reference through the whole walk.
func (w *Walker) walkFile(path string, visited map[string]struct{}, out *[]Dep) {
	src, err := os.ReadFile(path) // #nosec G304 -- path came from resolution
	if err != nil {
		// Skip this subtree, keep the rest of the graph alive.
		if w.logger != nil {
			w.logger.Warn("skipping unreadable dependency", "path", path, "err", err)
		}
		diag.Warningf(w.reporter, diag.GraphReadFailed, path, source.LineCol{}, "cannot read dependency: %v", err)
		return
	}

	fromDir := filepath.Dir(path)
	for _, imp := range ScanImports(src) {
		res, ok := w.resolver.Resolve(imp.Specifier, fromDir)
		if !ok {
			if w.resolver.Classify(imp.Specifier) != resolve.KindBare {
				if w.logger != nil {
					w.logger.Warn("unresolvable specifier left as written",
						"specifier", imp.Specifier, "file", path)
				}
				diag.Warningf(w.reporter, diag.ResolveUnresolvable, path, source.LineCol{},
					"cannot resolve %q", imp.Specifier)
			}
			continue
		}
		if _, seen := visited[res.Path]; seen {
			continue
		}
		visited[res.Path] = struct{}{}
		*out = append(*out, Dep{SourcePath: res.Path, NeedsConversion: res.NeedsConversion})
		if isScript(res.Path) {
			w.walkFile(res.Path, visited, out)
		}
	}
}

// isScript reports whether a file may itself contain imports worth scanning.
func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs":
		return true
	}
	return false
}

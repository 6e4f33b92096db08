package transpile

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"tsrun/internal/diag"
	"tsrun/internal/graph"
	"tsrun/internal/resolve"
	"tsrun/internal/source"
)

// rewriteImports replaces every local import specifier in converted code
// with a relative path to where its target lands in the session tree.
// Conversion preserves statement-level structure, so the converted output is
// scannable with the same scanner the walker uses. Bare specifiers and
// anything unresolvable pass through unchanged — emitting a broken rewrite
// is worse than leaving the original.
func rewriteImports(converted []byte, origPath string, mapper *treeMapper, resolver *resolve.Resolver, logger *log.Logger, reporter diag.Reporter) []byte {
	imports := graph.ScanImports(converted)
	if len(imports) == 0 {
		return converted
	}

	fromDir := filepath.Dir(origPath)
	selfDir := filepath.Dir(mapper.SessionPathFor(origPath))

	var buf bytes.Buffer
	buf.Grow(len(converted))
	last := uint32(0)
	for _, imp := range imports {
		res, ok := resolver.Resolve(imp.Specifier, fromDir)
		if !ok {
			if resolver.Classify(imp.Specifier) != resolve.KindBare {
				if logger != nil {
					logger.Warn("unresolvable specifier left as written",
						"specifier", imp.Specifier, "file", origPath)
				}
				diag.Warningf(reporter, diag.ResolveUnresolvable, origPath, source.LineCol{},
					"cannot resolve %q", imp.Specifier)
			}
			continue
		}
		target := mapper.SessionPathFor(res.Path)
		rel, err := filepath.Rel(selfDir, target)
		if err != nil {
			continue
		}
		spec := filepath.ToSlash(rel)
		if !strings.HasPrefix(spec, ".") {
			spec = "./" + spec
		}
		buf.Write(converted[last:imp.SpecStart])
		buf.WriteString(spec)
		last = imp.SpecEnd
	}
	buf.Write(converted[last:])
	return buf.Bytes()
}

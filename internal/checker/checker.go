// Package checker orchestrates type-checking of the entry module. The actual
// analysis lives behind the Analyzer contract; this package owns only the
// isolation context (in-memory entry source) and the filter deciding which
// analyzer diagnostics are allowed to halt a run.
package checker

import (
	"context"

	"github.com/charmbracelet/log"

	"tsrun/internal/config"
	"tsrun/internal/convert"
	"tsrun/internal/diag"
	"tsrun/internal/source"
)

// Analyzer is the external type-check service. It receives the entry file's
// in-memory source and the resolved options and returns raw diagnostics;
// every other file it needs (ambient and declaration files) it reads itself.
type Analyzer interface {
	Analyze(ctx context.Context, sourceText, filePath string, opts *config.Options) ([]diag.Diagnostic, error)
}

// DefaultIgnoreCodes lists analyzer codes that are never surfaced: unused
// variables, unresolvable ambient globals, missing declaration files and
// unresolvable modules. These depend on the analyzer version, which is why
// they are data the tool config can replace rather than assumptions baked
// into the filter.
var DefaultIgnoreCodes = []diag.Code{
	2304, // cannot find name
	2307, // cannot find module
	2580, // cannot find name 'require'
	2582, // cannot find test globals
	2584, // cannot find name 'console'
	2792, // cannot find module under current moduleResolution
	6133, // declared but never read
	6196, // declared but never used
	7016, // no declaration file for module
	7026, // no ambient JSX interface
}

// Checker filters an analyzer's raw output down to what the user can act on.
type Checker struct {
	analyzer Analyzer
	ignore   map[diag.Code]struct{}
	logger   *log.Logger
}

// New builds a Checker. A nil analyzer falls back to the bundled syntax-only
// analyzer; a nil ignore list means DefaultIgnoreCodes.
func New(analyzer Analyzer, ignore []diag.Code, logger *log.Logger) *Checker {
	if analyzer == nil {
		analyzer = SyntaxAnalyzer{}
	}
	if ignore == nil {
		ignore = DefaultIgnoreCodes
	}
	set := make(map[diag.Code]struct{}, len(ignore))
	for _, code := range ignore {
		set[code] = struct{}{}
	}
	return &Checker{analyzer: analyzer, ignore: set, logger: logger}
}

// IgnoreCodesFrom converts tool-config code numbers into the checker form,
// honoring the replace/extend split of the tool config.
func IgnoreCodesFrom(tc config.ToolConfig) []diag.Code {
	if len(tc.Check.IgnoreCodes) > 0 {
		out := make([]diag.Code, len(tc.Check.IgnoreCodes))
		for i, c := range tc.Check.IgnoreCodes {
			out[i] = diag.Code(c)
		}
		return out
	}
	if len(tc.Check.ExtraIgnoreCodes) == 0 {
		return nil
	}
	out := append([]diag.Code(nil), DefaultIgnoreCodes...)
	for _, c := range tc.Check.ExtraIgnoreCodes {
		out = append(out, diag.Code(c))
	}
	return out
}

// Check analyzes sourceText as filePath and returns the filtered diagnostic
// list. Analyzer failure is fail-open: a broken checker setup forfeits type
// safety but must never block execution, so it yields an empty list.
func (c *Checker) Check(ctx context.Context, sourceText, filePath string, opts *config.Options) []diag.Diagnostic {
	raw, err := c.analyzer.Analyze(ctx, sourceText, filePath, opts)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("analyzer unavailable, continuing without type checking", "err", err)
		}
		return nil
	}

	entry := source.CanonicalPath(filePath)
	var out []diag.Diagnostic
	for _, d := range raw {
		if d.Severity < diag.SevError {
			continue
		}
		if _, ignored := c.ignore[d.Code]; ignored {
			continue
		}
		// Diagnostics for lib files, node_modules declarations and other
		// out-of-entry files are the analyzer's business, not the user's.
		if d.File == "" || source.CanonicalPath(d.File) != entry {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SyntaxAnalyzer is the bundled converter-backed analyzer: it reports syntax
// errors only and accepts everything the converter can lower.
type SyntaxAnalyzer struct{}

func (SyntaxAnalyzer) Analyze(ctx context.Context, sourceText, filePath string, opts *config.Options) ([]diag.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return convert.AnalyzeSyntax(sourceText, filePath, opts), nil
}

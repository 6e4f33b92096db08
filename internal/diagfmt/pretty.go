// Package diagfmt renders diagnostics for humans and machines. The pretty
// renderer prints one header line per diagnostic, then the offending source
// line with a caret underline when the file is available in the FileSet.
package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tsrun/internal/diag"
	"tsrun/internal/source"
)

// Pretty formats diags to w. Callers sort beforehand; order is preserved.
// Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line and a ^~~~ underline covering Length bytes,
// then any notes indented below. Files absent from fs print headers only.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	shown := diags
	if opts.Max > 0 && len(shown) > opts.Max {
		shown = shown[:opts.Max]
	}
	for _, d := range shown {
		writeHeader(w, d, opts)
		if fs != nil && d.HasPos() {
			if f, ok := fs.ByPath(d.File); ok {
				writeContext(w, f, d.Pos, d.Length, opts)
			}
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  note: %s", n.Msg)
				if n.File != "" && n.Pos.Line > 0 {
					fmt.Fprintf(w, " (%s:%d:%d)", displayPath(n.File, opts.PathMode), n.Pos.Line, n.Pos.Col)
				}
				fmt.Fprintln(w)
			}
		}
	}
	if hidden := len(diags) - len(shown); hidden > 0 {
		fmt.Fprintf(w, "... and %d more\n", hidden)
	}
}

func writeHeader(w io.Writer, d diag.Diagnostic, opts PrettyOpts) {
	sev := d.Severity.String()
	code := d.Code.String()
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
		code = color.New(color.Faint).Sprint(code)
	}
	if d.File == "" {
		fmt.Fprintf(w, "%s %s: %s\n", sev, code, d.Message)
		return
	}
	path := displayPath(d.File, opts.PathMode)
	if d.HasPos() {
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, d.Pos.Line, d.Pos.Col, sev, code, d.Message)
	} else {
		fmt.Fprintf(w, "%s: %s %s: %s\n", path, sev, code, d.Message)
	}
}

// writeContext prints the source line and the underline beneath it. Column
// alignment uses display width, so wide runes and tabs keep the caret under
// the right character.
func writeContext(w io.Writer, f *source.File, pos source.LineCol, length uint32, opts PrettyOpts) {
	line := f.Line(pos.Line)
	if line == nil {
		return
	}
	text := strings.ReplaceAll(string(line), "\t", "    ")
	fmt.Fprintf(w, "  %s\n", text)

	col := int(pos.Col)
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	prefix := strings.ReplaceAll(string(line[:col-1]), "\t", "    ")
	pad := runewidth.StringWidth(prefix)

	end := col - 1 + int(length)
	if end > len(line) {
		end = len(line)
	}
	width := 1
	if end > col-1 {
		width = runewidth.StringWidth(string(line[col-1 : end]))
		if width < 1 {
			width = 1
		}
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = color.New(color.FgHiRed, color.Bold).Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), marker)
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

func displayPath(path string, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative, PathModeAuto:
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(wd, path)
		if err != nil {
			return path
		}
		if mode == PathModeAuto && len(rel) >= len(path) {
			return path
		}
		return rel
	}
	return path
}

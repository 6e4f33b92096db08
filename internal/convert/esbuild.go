package convert

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"tsrun/internal/config"
	"tsrun/internal/diag"
	"tsrun/internal/source"
)

// ESBuild converts dialect source with esbuild's single-file transform.
// Transforms never bundle, so relative import statements survive verbatim
// and the pipeline can rewrite them afterward.
type ESBuild struct{}

func (ESBuild) Convert(ctx context.Context, sourceText, filePath string, opts *config.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result := api.Transform(sourceText, transformOptions(filePath, opts))
	if len(result.Errors) > 0 {
		first := result.Errors[0]
		e := &Error{File: filePath, Msg: first.Text}
		if first.Location != nil {
			e.Pos = source.LineCol{Line: uint32(first.Location.Line), Col: uint32(first.Location.Column + 1)}
		}
		return "", e
	}
	return string(result.Code), nil
}

// AnalyzeSyntax runs the transform in throwaway mode and maps its messages
// to diagnostics. This is the bundled fallback analyzer: syntax-only, no
// semantic typing.
func AnalyzeSyntax(sourceText, filePath string, opts *config.Options) []diag.Diagnostic {
	result := api.Transform(sourceText, transformOptions(filePath, opts))
	var out []diag.Diagnostic
	for _, msg := range result.Errors {
		out = append(out, messageToDiagnostic(msg, filePath, diag.SevError))
	}
	for _, msg := range result.Warnings {
		out = append(out, messageToDiagnostic(msg, filePath, diag.SevWarning))
	}
	return out
}

func messageToDiagnostic(msg api.Message, filePath string, sev diag.Severity) diag.Diagnostic {
	d := diag.Diagnostic{
		Severity: sev,
		Code:     diag.SynParseFailed,
		Message:  msg.Text,
		File:     filePath,
	}
	if msg.Location != nil {
		d.Pos = source.LineCol{Line: uint32(msg.Location.Line), Col: uint32(msg.Location.Column + 1)}
		d.Length = uint32(msg.Location.Length)
	}
	return d
}

func transformOptions(filePath string, opts *config.Options) api.TransformOptions {
	to := api.TransformOptions{
		Loader:     LoaderForPath(filePath),
		Format:     apiFormat(opts.Format),
		Target:     apiTarget(opts.Target),
		Sourcefile: filePath,
		SourceRoot: filepath.Dir(filePath),
	}
	if opts.SourceMap {
		to.Sourcemap = api.SourceMapInline
	}
	if opts.Minify {
		to.MinifyWhitespace = true
		to.MinifyIdentifiers = true
		to.MinifySyntax = true
	}
	return to
}

// LoaderForPath picks the esbuild loader for a file by extension.
func LoaderForPath(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	default:
		return api.LoaderJS
	}
}

func apiFormat(f config.Format) api.Format {
	switch f {
	case config.FormatCJS:
		return api.FormatCommonJS
	case config.FormatIIFE:
		return api.FormatIIFE
	default:
		return api.FormatESModule
	}
}

func apiTarget(t config.Target) api.Target {
	switch t {
	case config.TargetES5:
		return api.ES5
	case config.TargetES2015:
		return api.ES2015
	case config.TargetES2016:
		return api.ES2016
	case config.TargetES2017:
		return api.ES2017
	case config.TargetES2018:
		return api.ES2018
	case config.TargetES2019:
		return api.ES2019
	case config.TargetES2020:
		return api.ES2020
	case config.TargetES2021:
		return api.ES2021
	case config.TargetES2022:
		return api.ES2022
	default:
		return api.ESNext
	}
}

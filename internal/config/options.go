// Package config resolves project configuration for a pipeline run: the
// project's tsconfig.json (searched upward from the entry directory) and the
// optional tool-side tsrun.toml. Resolution never fails hard; any read or
// parse problem degrades to the documented defaults with a warning.
package config

import (
	"strings"
)

// Format selects the module format of converted output.
type Format string

const (
	// FormatESM emits ES modules (.mjs).
	FormatESM Format = "esm"
	// FormatCJS emits CommonJS modules (.cjs).
	FormatCJS Format = "cjs"
	// FormatIIFE emits self-invoking scripts (.js).
	FormatIIFE Format = "iife"
)

// OutputExt returns the file extension converted files are written with.
func (f Format) OutputExt() string {
	switch f {
	case FormatCJS:
		return ".cjs"
	case FormatIIFE:
		return ".js"
	default:
		return ".mjs"
	}
}

// Valid reports whether f is a known output format.
func (f Format) Valid() bool {
	switch f {
	case FormatESM, FormatCJS, FormatIIFE:
		return true
	}
	return false
}

// Target is the language level conversion output is lowered to.
type Target string

const (
	TargetES5    Target = "es5"
	TargetES2015 Target = "es2015"
	TargetES2016 Target = "es2016"
	TargetES2017 Target = "es2017"
	TargetES2018 Target = "es2018"
	TargetES2019 Target = "es2019"
	TargetES2020 Target = "es2020"
	TargetES2021 Target = "es2021"
	TargetES2022 Target = "es2022"
	TargetESNext Target = "esnext"
)

// targetOrder lists targets from oldest to newest; lib derivation walks it.
var targetOrder = []Target{
	TargetES5, TargetES2015, TargetES2016, TargetES2017, TargetES2018,
	TargetES2019, TargetES2020, TargetES2021, TargetES2022, TargetESNext,
}

// ParseTarget normalizes a user-written target name ("ES2020", "es6", ...).
func ParseTarget(s string) (Target, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "es3", "es5":
		return TargetES5, true
	case "es6", "es2015":
		return TargetES2015, true
	case "es2016":
		return TargetES2016, true
	case "es2017":
		return TargetES2017, true
	case "es2018":
		return TargetES2018, true
	case "es2019":
		return TargetES2019, true
	case "es2020":
		return TargetES2020, true
	case "es2021":
		return TargetES2021, true
	case "es2022", "es2023", "es2024":
		return TargetES2022, true
	case "esnext", "latest":
		return TargetESNext, true
	}
	return "", false
}

// Options is the normalized option set one pipeline run works with.
// It is resolved once from the entry file's directory and immutable afterward.
type Options struct {
	// ConfigPath is the tsconfig.json actually used; empty when running on
	// defaults.
	ConfigPath string
	// BaseDir anchors relative settings (baseUrl, paths); the directory of
	// ConfigPath, or the start directory when no config was found.
	BaseDir string

	Target    Target
	Format    Format
	Libs      []string
	BaseURL   string              // absolute
	Paths     map[string][]string // alias prefix pattern -> substitution bases
	Strict    bool
	SourceMap bool
	Minify    bool

	// Pipeline-required options. These are force-set after merging and user
	// values for them are ignored; the pipeline cannot work otherwise.
	NoEmit          bool
	SkipLibCheck    bool
	EsModuleInterop bool
	AllowJS         bool
}

// Default returns the permissive fallback option set used when no
// configuration is found or the found one cannot be parsed.
func Default() *Options {
	opts := &Options{
		Target: TargetESNext,
		Format: FormatESM,
		Libs:   LibsForTarget(TargetESNext),
	}
	opts.forcePipelineOptions()
	return opts
}

// forcePipelineOptions overwrites the option subset the pipeline depends on.
// Called last in every resolution path so user config can never undo it.
func (o *Options) forcePipelineOptions() {
	o.NoEmit = true
	o.SkipLibCheck = true
	o.EsModuleInterop = true
	o.AllowJS = true
}

// HasAliases reports whether any path mappings are configured.
func (o *Options) HasAliases() bool {
	return len(o.Paths) > 0
}

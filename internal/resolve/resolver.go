// Package resolve turns import specifiers into on-disk paths. It reproduces
// the module-resolution order the analyzer uses for local files (exact match,
// extension probing, index files, tsconfig path aliases) so the dependency
// walk never has to invoke the full analyzer a second time. Bare package
// specifiers are not resolved here; they stay the runtime's responsibility.
package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tsrun/internal/config"
	"tsrun/internal/source"
)

// Kind classifies an import specifier.
type Kind uint8

const (
	// KindBare is a package-style specifier left for the runtime to resolve.
	KindBare Kind = iota
	// KindRelative is a ./ or ../ specifier.
	KindRelative
	// KindAlias matches a configured path-mapping prefix.
	KindAlias
)

// Resolution is the result of resolving one specifier.
type Resolution struct {
	// Path is the absolute on-disk path of the dependency.
	Path string
	// NeedsConversion reports whether the file is dialect source that must
	// be converted before it can execute.
	NeedsConversion bool
}

// probeExts is the extension probe order for extensionless specifiers.
var probeExts = []string{".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".json"}

// convertibleExts are extensions of files the converter must process.
var convertibleExts = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
	".jsx": true,
}

// NeedsConversion reports whether path points at convertible dialect source.
func NeedsConversion(path string) bool {
	return convertibleExts[strings.ToLower(filepath.Ext(path))]
}

// Resolver resolves specifiers against one immutable option set.
type Resolver struct {
	opts     *config.Options
	aliases  []aliasPattern // sorted, longest prefix first
}

type aliasPattern struct {
	prefix   string // text before the *
	suffix   string // text after the *
	exact    bool   // pattern had no *
	raw      string
	bases    []string
}

// New builds a Resolver over opts.
func New(opts *config.Options) *Resolver {
	r := &Resolver{opts: opts}
	for raw, bases := range opts.Paths {
		p := aliasPattern{raw: raw, bases: bases}
		if star := strings.Index(raw, "*"); star >= 0 {
			p.prefix = raw[:star]
			p.suffix = raw[star+1:]
		} else {
			p.prefix = raw
			p.exact = true
		}
		r.aliases = append(r.aliases, p)
	}
	// Longer prefixes first so "@app/core/*" beats "@app/*".
	sort.Slice(r.aliases, func(i, j int) bool {
		if len(r.aliases[i].prefix) != len(r.aliases[j].prefix) {
			return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
		}
		return r.aliases[i].raw < r.aliases[j].raw
	})
	return r
}

// Classify reports which resolution class spec falls into.
func (r *Resolver) Classify(spec string) Kind {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		return KindRelative
	}
	for _, p := range r.aliases {
		if p.matches(spec) {
			return KindAlias
		}
	}
	return KindBare
}

// Resolve maps spec, imported from a file in fromDir, to an on-disk path.
// Returns false for bare specifiers and for anything that does not resolve;
// callers must then leave the original specifier untouched.
func (r *Resolver) Resolve(spec, fromDir string) (Resolution, bool) {
	switch r.Classify(spec) {
	case KindRelative:
		return r.resolveRelative(spec, fromDir)
	case KindAlias:
		return r.resolveAlias(spec)
	default:
		return Resolution{}, false
	}
}

func (r *Resolver) resolveRelative(spec, fromDir string) (Resolution, bool) {
	base := filepath.Join(fromDir, filepath.FromSlash(spec))
	return probe(base)
}

func (r *Resolver) resolveAlias(spec string) (Resolution, bool) {
	baseURL := r.opts.BaseURL
	if baseURL == "" {
		baseURL = r.opts.BaseDir
	}
	for _, p := range r.aliases {
		if !p.matches(spec) {
			continue
		}
		captured := ""
		if !p.exact {
			captured = spec[len(p.prefix) : len(spec)-len(p.suffix)]
		}
		for _, subst := range p.bases {
			target := subst
			if !p.exact {
				target = strings.Replace(subst, "*", captured, 1)
			}
			candidate := filepath.Join(baseURL, filepath.FromSlash(target))
			if res, ok := probe(candidate); ok {
				return res, true
			}
		}
	}
	return Resolution{}, false
}

func (p aliasPattern) matches(spec string) bool {
	if p.exact {
		return spec == p.prefix
	}
	return len(spec) >= len(p.prefix)+len(p.suffix) &&
		strings.HasPrefix(spec, p.prefix) &&
		strings.HasSuffix(spec, p.suffix)
}

// probe applies the resolution order to one candidate base path:
// the path as written (when it has an extension), then each source
// extension appended, then an index file under a directory of that name.
func probe(base string) (Resolution, bool) {
	if ext := filepath.Ext(base); ext != "" {
		if fileExists(base) {
			return Resolution{Path: canonical(base), NeedsConversion: NeedsConversion(base)}, true
		}
		// "./util.js" written in source may exist on disk as util.ts.
		if sibling, ok := probeSourceSibling(base, ext); ok {
			return Resolution{Path: canonical(sibling), NeedsConversion: true}, true
		}
	}
	for _, ext := range probeExts {
		candidate := base + ext
		if fileExists(candidate) {
			return Resolution{Path: canonical(candidate), NeedsConversion: NeedsConversion(candidate)}, true
		}
	}
	for _, ext := range probeExts {
		candidate := filepath.Join(base, "index"+ext)
		if fileExists(candidate) {
			return Resolution{Path: canonical(candidate), NeedsConversion: NeedsConversion(candidate)}, true
		}
	}
	return Resolution{}, false
}

func probeSourceSibling(base, ext string) (string, bool) {
	var tries []string
	switch strings.ToLower(ext) {
	case ".js":
		tries = []string{".ts", ".tsx"}
	case ".mjs":
		tries = []string{".mts"}
	case ".cjs":
		tries = []string{".cts"}
	default:
		return "", false
	}
	stem := strings.TrimSuffix(base, ext)
	for _, try := range tries {
		if fileExists(stem + try) {
			return stem + try, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// canonical is the dedup key form: absolute, symlink-free, cleaned.
func canonical(path string) string {
	return source.CanonicalPath(path)
}

// RewriteName maps a source file name to the name its converted output is
// written under. Non-convertible files keep their name.
func RewriteName(path string, format config.Format) string {
	if !NeedsConversion(path) {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + format.OutputExt()
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tailscale/hujson"
)

// ConfigFileName is the project configuration file searched for.
const ConfigFileName = "tsconfig.json"

// FindTSConfig walks up from startDir to locate tsconfig.json.
func FindTSConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil {
			if !info.IsDir() {
				return candidate, true, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// rawConfig mirrors the subset of tsconfig.json this pipeline consumes.
type rawConfig struct {
	CompilerOptions struct {
		Target           string              `json:"target"`
		Module           string              `json:"module"`
		Lib              []string            `json:"lib"`
		Strict           *bool               `json:"strict"`
		BaseURL          string              `json:"baseUrl"`
		Paths            map[string][]string `json:"paths"`
		SourceMap        *bool               `json:"sourceMap"`
		NoEmit           *bool               `json:"noEmit"`
		SkipLibCheck     *bool               `json:"skipLibCheck"`
		EsModuleInterop  *bool               `json:"esModuleInterop"`
		AllowJS          *bool               `json:"allowJs"`
	} `json:"compilerOptions"`
}

// Resolve finds and parses project configuration starting at startDir.
//
// Merge rule: user values win for every option except the pipeline-required
// set, which is force-set afterward. A user target without an explicit lib
// list gets a derived one. Missing or unparseable configuration degrades to
// Default() with a warning; Resolve never fails the run.
func Resolve(startDir string, logger *log.Logger) *Options {
	path, ok, err := FindTSConfig(startDir)
	if err != nil || !ok {
		if err != nil && logger != nil {
			logger.Warn("config discovery failed, using defaults", "err", err)
		}
		opts := Default()
		opts.BaseDir = absOrClean(startDir)
		return opts
	}

	opts, err := load(path)
	if err != nil {
		if logger != nil {
			logger.Warn("config unusable, using defaults", "path", path, "err", err)
		}
		opts = Default()
		opts.BaseDir = filepath.Dir(path)
		return opts
	}
	return opts
}

func load(path string) (*Options, error) {
	// #nosec G304 -- path found by upward discovery from a user-given dir
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	// tsconfig.json allows comments and trailing commas; standardize first.
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	var cfg rawConfig
	if err := json.Unmarshal(std, &cfg); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	opts := Default()
	opts.ConfigPath = path
	opts.BaseDir = baseDir

	co := cfg.CompilerOptions
	if co.Target != "" {
		target, ok := ParseTarget(co.Target)
		if !ok {
			return nil, fmt.Errorf("%s: unknown target %q", path, co.Target)
		}
		opts.Target = target
		// Explicit lib wins; otherwise derive from the target.
		opts.Libs = LibsForTarget(target)
	}
	if len(co.Lib) > 0 {
		opts.Libs = normalizeLibs(co.Lib)
	}
	if co.Module != "" {
		opts.Format = formatForModule(co.Module)
	}
	if co.Strict != nil {
		opts.Strict = *co.Strict
	}
	if co.SourceMap != nil {
		opts.SourceMap = *co.SourceMap
	}
	if co.BaseURL != "" {
		opts.BaseURL = filepath.Join(baseDir, filepath.FromSlash(co.BaseURL))
	}
	if len(co.Paths) > 0 {
		opts.Paths = co.Paths
		if opts.BaseURL == "" {
			// paths are relative to baseUrl; tsc defaults it to the config dir.
			opts.BaseURL = baseDir
		}
	}

	// Last: user values for these are ignored.
	opts.forcePipelineOptions()
	return opts, nil
}

// formatForModule maps a tsconfig "module" value onto an output format.
func formatForModule(module string) Format {
	switch strings.ToLower(strings.TrimSpace(module)) {
	case "commonjs", "node", "none":
		return FormatCJS
	case "amd", "umd", "system":
		return FormatIIFE
	default:
		// es2015/es2020/es2022/esnext/node16/nodenext and friends.
		return FormatESM
	}
}

func normalizeLibs(libs []string) []string {
	out := make([]string, 0, len(libs))
	for _, lib := range libs {
		lib = strings.ToLower(strings.TrimSpace(lib))
		if lib != "" {
			out = append(out, lib)
		}
	}
	return out
}

func absOrClean(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// ToolConfigFileName is the tool-side configuration file (tsrun.toml).
const ToolConfigFileName = "tsrun.toml"

// ToolConfig carries the knobs that belong to the tool rather than the
// project's compiler configuration: which analyzer codes to suppress and
// which runtimes to try, in order.
type ToolConfig struct {
	Check struct {
		// IgnoreCodes replaces the built-in suppression list when non-empty.
		IgnoreCodes []uint16 `toml:"ignore_codes"`
		// ExtraIgnoreCodes extends the built-in list.
		ExtraIgnoreCodes []uint16 `toml:"extra_ignore_codes"`
	} `toml:"check"`
	Run struct {
		// Runners is the preference order of execution strategies.
		Runners []string `toml:"runners"`
	} `toml:"run"`
}

// DefaultToolConfig returns the built-in tool configuration.
func DefaultToolConfig() ToolConfig {
	var tc ToolConfig
	tc.Run.Runners = []string{"node", "deno"}
	return tc
}

// FindToolConfig walks up from startDir to locate tsrun.toml.
func FindToolConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ToolConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
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

// LoadToolConfig parses a tsrun.toml file.
func LoadToolConfig(path string) (ToolConfig, error) {
	tc := DefaultToolConfig()
	meta, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return DefaultToolConfig(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("run", "runners") {
		tc.Run.Runners = DefaultToolConfig().Run.Runners
	}
	if len(tc.Run.Runners) == 0 {
		tc.Run.Runners = DefaultToolConfig().Run.Runners
	}
	return tc, nil
}

// ResolveToolConfig discovers and parses tsrun.toml, degrading to the
// defaults with a warning when discovery or parsing fails.
func ResolveToolConfig(startDir string, logger *log.Logger) ToolConfig {
	path, ok, err := FindToolConfig(startDir)
	if err != nil || !ok {
		if err != nil && logger != nil {
			logger.Warn("tool config discovery failed, using defaults", "err", err)
		}
		return DefaultToolConfig()
	}
	tc, err := LoadToolConfig(path)
	if err != nil {
		if logger != nil {
			logger.Warn("tool config unusable, using defaults", "path", path, "err", err)
		}
		return DefaultToolConfig()
	}
	return tc
}

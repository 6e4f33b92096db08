// Package runner executes a converted entry file on an installed JavaScript
// runtime. Runtimes are strategies in a preference-ordered list; the first
// one present on PATH wins. The package never converts anything — it only
// spawns what the pipeline already produced.
package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrNoRuntime means no strategy in the chain found its binary.
var ErrNoRuntime = errors.New("no JavaScript runtime found on PATH (tried node, deno)")

// Options carries the process environment for a run.
type Options struct {
	// WorkDir is the original entry file's directory, not the session root:
	// the script must observe the project's cwd semantics.
	WorkDir string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Strategy is one runnable runtime.
type Strategy interface {
	Name() string
	// Available reports whether the runtime binary is installed.
	Available() bool
	// Run executes entryPath with args and returns the process exit code.
	Run(ctx context.Context, entryPath string, args []string, opts Options) (int, error)
}

// Execute tries each strategy in order and runs the first available one.
// The returned name identifies which runtime ran.
func Execute(ctx context.Context, strategies []Strategy, entryPath string, args []string, opts Options) (string, int, error) {
	for _, s := range strategies {
		if !s.Available() {
			continue
		}
		code, err := s.Run(ctx, entryPath, args, opts)
		return s.Name(), code, err
	}
	return "", 0, ErrNoRuntime
}

// FromNames builds the strategy chain from tool-config runner names.
// Unknown names are skipped with a warning so a typo degrades instead of
// blocking the run.
func FromNames(names []string, logger *log.Logger) []Strategy {
	var out []Strategy
	for _, name := range names {
		switch name {
		case "node":
			out = append(out, Node{})
		case "deno":
			out = append(out, Deno{})
		default:
			if logger != nil {
				logger.Warn("unknown runner in tool config", "name", name)
			}
		}
	}
	return out
}

// Node runs the entry on Node.js. Converted files live outside the project
// tree, so bare specifiers need NODE_PATH pointed back at the project's
// node_modules chain.
type Node struct{}

func (Node) Name() string { return "node" }

func (Node) Available() bool {
	_, err := exec.LookPath("node")
	return err == nil
}

func (Node) Run(ctx context.Context, entryPath string, args []string, opts Options) (int, error) {
	cmd := exec.CommandContext(ctx, "node", append([]string{entryPath}, args...)...) // #nosec G204 -- entry produced by the pipeline
	cmd.Dir = opts.WorkDir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.Env = append(os.Environ(), "NODE_PATH="+nodeModulesChain(opts.WorkDir))
	return exitCode(cmd.Run())
}

// nodeModulesChain joins every node_modules directory from dir upward, the
// same lookup order Node would have used from the original location.
func nodeModulesChain(dir string) string {
	var paths []string
	for cur := dir; ; {
		paths = append(paths, filepath.Join(cur, "node_modules"))
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return strings.Join(paths, string(os.PathListSeparator))
}

// Deno runs the entry on Deno with sandboxing disabled: the script was a
// local project file the user chose to run, the same trust level Node gives.
type Deno struct{}

func (Deno) Name() string { return "deno" }

func (Deno) Available() bool {
	_, err := exec.LookPath("deno")
	return err == nil
}

func (Deno) Run(ctx context.Context, entryPath string, args []string, opts Options) (int, error) {
	cmdArgs := append([]string{"run", "--allow-all", entryPath}, args...)
	cmd := exec.CommandContext(ctx, "deno", cmdArgs...) // #nosec G204
	cmd.Dir = opts.WorkDir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	return exitCode(cmd.Run())
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		// Script failure is the script's exit status, not a tool error.
		return exit.ExitCode(), nil
	}
	return -1, err
}

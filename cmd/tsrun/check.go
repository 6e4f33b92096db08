package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tsrun/internal/checker"
	"tsrun/internal/config"
	"tsrun/internal/diag"
	"tsrun/internal/diagfmt"
	"tsrun/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.ts>...",
	Short: "Type-check files without running them",
	Long: `Run the type check over one or more files and print the filtered
diagnostics. Files are checked in parallel; exit status 1 means at least one
file has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
	checkCmd.Flags().Int("jobs", 0, "parallel workers (0 = number of CPUs)")
}

type checkResult struct {
	path  string
	diags []diag.Diagnostic
	err   error
}

func runCheck(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	jobs, _ := cmd.Flags().GetInt("jobs")
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	logger := newLogger(cmd)

	files := append([]string(nil), args...)
	sort.Strings(files)

	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Result slots are per-goroutine, no mutex needed.
	results := make([]checkResult, len(files))

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			canonical := source.CanonicalPath(path)
			content, err := os.ReadFile(canonical) // #nosec G304 -- user-named file
			if err != nil {
				results[i] = checkResult{path: path, err: err}
				return nil
			}
			entryDir := filepath.Dir(canonical)
			opts := config.Resolve(entryDir, logger)
			toolCfg := config.ResolveToolConfig(entryDir, logger)
			chk := checker.New(nil, checker.IgnoreCodesFrom(toolCfg), logger)
			results[i] = checkResult{
				path:  path,
				diags: chk.Check(gctx, string(content), canonical, opts),
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fs := source.NewFileSet()
	var all []diag.Diagnostic
	failed := false
	for _, r := range results {
		if r.err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.path, r.err)
			continue
		}
		if len(r.diags) > 0 {
			failed = true
			_, _ = fs.Load(source.CanonicalPath(r.path))
			all = append(all, r.diags...)
		}
	}

	if asJSON {
		if err := diagfmt.JSON(os.Stdout, all, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeAuto,
			Max:          maxDiags,
			IncludeNotes: true,
		}); err != nil {
			return err
		}
	} else {
		diagfmt.Pretty(os.Stderr, all, fs, diagfmt.PrettyOpts{
			Color:     colorEnabled(cmd, os.Stderr),
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: true,
			Max:       maxDiags,
		})
		if !failed {
			fmt.Fprintf(os.Stderr, "%d file(s) checked, no errors\n", len(files))
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}

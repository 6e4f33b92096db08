package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tsrun/internal/checker"
	"tsrun/internal/config"
	"tsrun/internal/diagfmt"
	"tsrun/internal/runner"
	"tsrun/internal/session"
	"tsrun/internal/source"
	"tsrun/internal/transpile"
	"tsrun/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <entry.ts> [-- args...]",
	Short: "Type-check, convert and execute a TypeScript entry file",
	Long: `Convert the entry file and everything it imports into a temporary
session tree and execute the converted entry on the first available runtime.
Arguments after -- are passed to the script.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecution,
}

func init() {
	runCmd.Flags().String("format", "", "output module format (esm|cjs|iife), overrides tsconfig")
	runCmd.Flags().Bool("no-check", false, "skip type checking")
	runCmd.Flags().Bool("keep-session", false, "keep the session tree on disk and print its path")
	runCmd.Flags().Bool("sourcemap", false, "embed inline source maps in converted files")
}

func runExecution(cmd *cobra.Command, args []string) error {
	// The script's exit status and the session cleanup both have to happen;
	// os.Exit inside the deferring function would skip the defers, so the
	// pipeline body runs in its own frame and the exit happens here.
	code, err := runPipeline(cmd, args)
	if err != nil {
		var checkErr *transpile.CheckError
		if errors.As(err, &checkErr) {
			maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
			printDiagnostics(cmd, checkErr, args[0], maxDiags)
			os.Exit(1)
		}
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) (int, error) {
	entryPath := args[0]
	scriptArgs := args[1:]

	formatFlag, _ := cmd.Flags().GetString("format")
	noCheck, _ := cmd.Flags().GetBool("no-check")
	keepSession, _ := cmd.Flags().GetBool("keep-session")
	sourcemap, _ := cmd.Flags().GetBool("sourcemap")
	quiet, _ := cmd.Flags().GetBool("quiet")
	timings, _ := cmd.Flags().GetBool("timings")

	format := config.Format(formatFlag)
	if formatFlag != "" && !format.Valid() {
		return 0, fmt.Errorf("invalid --format %q (must be esm, cjs or iife)", formatFlag)
	}

	logger := newLogger(cmd)
	entryDir := filepath.Dir(source.CanonicalPath(entryPath))
	toolCfg := config.ResolveToolConfig(entryDir, logger)

	// A SIGINT mid-run must still tear the session down; the context stops
	// the pipeline or the script, the deferred cleanup does the rest.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(logger)
	if removed, err := sessions.Sweep(); err == nil && len(removed) > 0 {
		logger.Info("removed stale sessions", "count", len(removed))
	}

	req := &transpile.Request{
		EntryPath: entryPath,
		Format:    format,
		Checker:   checker.New(nil, checker.IgnoreCodesFrom(toolCfg), logger),
		Sessions:  sessions,
		Logger:    logger,
		SkipCheck: noCheck,
	}
	if sourcemap {
		opts := config.Resolve(entryDir, logger)
		opts.SourceMap = true
		req.Options = opts
	}

	stopProgress := func() {}
	switch {
	case quiet:
		// no progress
	case !isTerminal(os.Stderr):
		req.Progress = ui.PlainSink{W: os.Stderr}
	default:
		events := make(chan transpile.Event, 16)
		req.Progress = transpile.ChannelSink{Ch: events}
		progressDone := make(chan struct{})
		model := ui.NewProgressModel(filepath.Base(entryPath), events)
		go func() {
			defer close(progressDone)
			_, _ = tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run()
		}()
		var once sync.Once
		stopProgress = func() {
			once.Do(func() {
				close(events)
				<-progressDone
			})
		}
	}
	defer stopProgress()

	result, err := transpile.Run(ctx, req)
	// The UI holds the terminal in raw mode and reads stdin; it must be gone
	// before the script inherits the terminal.
	stopProgress()
	if result.Session != nil && !keepSession {
		defer func() {
			if cleanupErr := sessions.Cleanup(result.Session); cleanupErr != nil {
				logger.Warn("session cleanup incomplete", "err", cleanupErr)
			}
		}()
	}
	if err != nil {
		return 0, err
	}
	if timings && result.Timer != nil {
		fmt.Fprintln(os.Stderr, transpile.Describe(result))
		fmt.Fprint(os.Stderr, result.Timer.Summary())
	}
	if keepSession {
		// Deregister so a later invocation's sweep does not reap the tree
		// the user asked to keep.
		sessions.Release(result.Session)
		fmt.Fprintf(os.Stderr, "session kept at %s\n", result.Session.Root)
	}

	strategies := runner.FromNames(toolCfg.Run.Runners, logger)
	_, code, err := runner.Execute(ctx, strategies, result.EntryOut, scriptArgs, runner.Options{
		WorkDir: entryDir,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	return code, err
}

// printDiagnostics renders check failures with source context.
func printDiagnostics(cmd *cobra.Command, checkErr *transpile.CheckError, entryPath string, maxDiags int) {
	fs := source.NewFileSet()
	if _, err := fs.Load(source.CanonicalPath(entryPath)); err != nil {
		fs = nil
	}
	diagfmt.Pretty(os.Stderr, checkErr.Diagnostics, fs, diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, os.Stderr),
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
		Max:       maxDiags,
	})
	fmt.Fprintln(os.Stderr, checkErr.Error())
}

// Package transpile orchestrates a single run: resolve configuration, check
// the entry, walk the dependency graph, convert every node into the session
// tree and return the converted entry path for execution. The pipeline never
// spawns processes; the runner collaborator does that with what Run returns.
package transpile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"tsrun/internal/checker"
	"tsrun/internal/config"
	"tsrun/internal/convert"
	"tsrun/internal/diag"
	"tsrun/internal/graph"
	"tsrun/internal/observ"
	"tsrun/internal/resolve"
	"tsrun/internal/session"
	"tsrun/internal/source"
)

// CheckError aborts a run before any session exists: the entry file has
// user-actionable type errors.
type CheckError struct {
	Diagnostics []diag.Diagnostic
}

func (e *CheckError) Error() string {
	if len(e.Diagnostics) == 1 {
		return "compilation failed with 1 error"
	}
	return fmt.Sprintf("compilation failed with %d errors", len(e.Diagnostics))
}

// Request configures one pipeline run. Zero-value collaborators get the
// bundled defaults.
type Request struct {
	EntryPath string

	// Options overrides configuration resolution (tests, CLI flags).
	// When nil, configuration is resolved from the entry file's directory.
	Options *config.Options
	// Format, when non-empty, overrides the resolved output format.
	Format config.Format

	Converter convert.Converter
	Checker   *checker.Checker
	Sessions  *session.Manager
	Progress  ProgressSink
	Logger    *log.Logger
	Reporter  diag.Reporter

	// SkipCheck bypasses type-checking (still converts).
	SkipCheck bool
}

// Result carries the session and the converted entry path. Session is set
// as soon as one exists, including on failed runs, so callers can always
// clean up.
type Result struct {
	Session  *session.Session
	EntryOut string
	Options  *config.Options
	Deps     []graph.Dep
	Timer    *observ.Timer
}

// Run executes the pipeline for one entry file.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if req == nil || req.EntryPath == "" {
		return result, errors.New("missing entry path")
	}
	reqCopy := *req
	req = &reqCopy

	if req.Converter == nil {
		req.Converter = convert.ESBuild{}
	}
	if req.Sessions == nil {
		req.Sessions = session.NewManager(req.Logger)
	}
	if req.Reporter == nil {
		req.Reporter = diag.NopReporter{}
	}
	if req.Checker == nil {
		req.Checker = checker.New(nil, nil, req.Logger)
	}

	timer := observ.NewTimer()
	result.Timer = timer

	// Configuration: once, from the entry's directory upward.
	entry := source.CanonicalPath(req.EntryPath)
	if info, err := os.Stat(entry); err != nil || info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s: is a directory", entry)
		}
		return result, fmt.Errorf("entry file unusable: %w", err)
	}
	entryDir := filepath.Dir(entry)

	phase := timer.Begin("config")
	opts := req.Options
	if opts == nil {
		opts = config.Resolve(entryDir, req.Logger)
	}
	if req.Format != "" {
		forked := *opts
		forked.Format = req.Format
		opts = &forked
	}
	result.Options = opts
	timer.End(phase, configNote(opts))
	emit(req.Progress, "", StageConfig, StatusDone, nil, 0)

	// Entry type-check. Filtered errors abort before a session is created.
	fileSet := source.NewFileSet()
	entryID, err := fileSet.Load(entry)
	if err != nil {
		return result, fmt.Errorf("failed to read entry %q: %w", entry, err)
	}
	entryText := string(fileSet.Get(entryID).Content)

	if !req.SkipCheck && resolve.NeedsConversion(entry) {
		phase = timer.Begin("check")
		diags := req.Checker.Check(ctx, entryText, entry, opts)
		timer.End(phase, "")
		if len(diags) > 0 {
			emit(req.Progress, entry, StageCheck, StatusError, nil, 0)
			return result, &CheckError{Diagnostics: diags}
		}
		emit(req.Progress, entry, StageCheck, StatusDone, nil, 0)
	}

	// Dependency discovery.
	phase = timer.Begin("walk")
	resolver := resolve.New(opts)
	walker := graph.NewWalker(resolver, req.Logger, req.Reporter)
	deps := walker.Walk(entry)
	result.Deps = deps
	timer.End(phase, fmt.Sprintf("%d deps", len(deps)))
	emit(req.Progress, "", StageWalk, StatusDone, nil, 0)

	// Session and materialization.
	sess, err := req.Sessions.Create()
	if err != nil {
		return result, err
	}
	result.Session = sess
	mapper := newTreeMapper(entryDir, sess.Root, opts.Format, deps)

	nodes := make([]graph.Dep, 0, len(deps)+1)
	nodes = append(nodes, graph.Dep{SourcePath: entry, NeedsConversion: resolve.NeedsConversion(entry)})
	nodes = append(nodes, deps...)

	phase = timer.Begin("convert")
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			timer.End(phase, "cancelled")
			return result, err
		}
		if err := processNode(ctx, req, opts, node, mapper, resolver, sess); err != nil {
			timer.End(phase, "")
			emit(req.Progress, node.SourcePath, StageConvert, StatusError, err, 0)
			return result, err
		}
		emit(req.Progress, node.SourcePath, StageConvert, StatusDone, nil, 0)
	}
	timer.End(phase, fmt.Sprintf("%d files", len(nodes)))

	out, ok := sess.Mapped(entry)
	if !ok {
		return result, fmt.Errorf("entry %q missing from session after conversion", entry)
	}
	result.EntryOut = out
	return result, nil
}

// processNode converts (or copies) one file into the session tree.
func processNode(ctx context.Context, req *Request, opts *config.Options, node graph.Dep, mapper *treeMapper, resolver *resolve.Resolver, sess *session.Session) error {
	outPath := mapper.SessionPathFor(node.SourcePath)
	start := time.Now()
	emit(req.Progress, node.SourcePath, StageConvert, StatusWorking, nil, 0)

	var data []byte
	if node.NeedsConversion {
		raw, err := os.ReadFile(node.SourcePath) // #nosec G304 -- discovered by the walk
		if err != nil {
			// The walker already warned; a vanished dependency skips its node.
			diag.Warningf(req.Reporter, diag.GraphReadFailed, node.SourcePath, source.LineCol{},
				"cannot read dependency: %v", err)
			return nil
		}
		converted, err := req.Converter.Convert(ctx, string(raw), node.SourcePath, opts)
		if err != nil {
			// A broken conversion cannot safely execute; the run dies here.
			return fmt.Errorf("conversion failed: %w", err)
		}
		data = rewriteImports([]byte(converted), node.SourcePath, mapper, resolver, req.Logger, req.Reporter)
	} else {
		raw, err := os.ReadFile(node.SourcePath) // #nosec G304
		if err != nil {
			if req.Logger != nil {
				req.Logger.Warn("skipping unreadable dependency", "path", node.SourcePath, "err", err)
			}
			return nil
		}
		// Non-convertible local files are mirrored byte-for-byte.
		data = raw
	}

	if err := sess.WriteFile(outPath, data); err != nil {
		return err
	}
	sess.AddMapping(node.SourcePath, outPath)
	emit(req.Progress, node.SourcePath, StageWrite, StatusDone, nil, time.Since(start))
	return nil
}

func configNote(opts *config.Options) string {
	if opts.ConfigPath == "" {
		return "defaults"
	}
	return opts.ConfigPath
}

// Describe renders a one-line summary of the run for --timings output.
func Describe(result Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s", filepath.Base(result.Session.Root))
	fmt.Fprintf(&b, ", %d dependencies", len(result.Deps))
	return b.String()
}

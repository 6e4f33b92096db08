// Package session owns the isolated output tree of a single pipeline run:
// a uniquely named root directory, an ordered record of everything written
// beneath it, and a cleanup path that removes it all again. A registry of
// live session roots lets a later invocation sweep trees orphaned by crashes.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrClosed is returned for writes against a session after Cleanup.
var ErrClosed = errors.New("session already cleaned up")

// Session is one disposable output tree. It is not safe for concurrent use;
// the pipeline writes into it sequentially.
type Session struct {
	// ID is the collision-resistant identifier the root name derives from.
	ID string
	// Root is the absolute session root directory.
	Root string

	files   []string          // creation order
	dirs    []string          // creation order, parents before children
	dirSeen map[string]bool
	pathMap map[string]string // canonical original path -> session path
	closed  bool
}

// Manager creates and destroys sessions.
type Manager struct {
	baseDir  string
	registry *Registry
	logger   *log.Logger
}

// NewManager returns a Manager rooted at the OS temp directory. A registry
// open failure is tolerate-and-log: sessions still work, stale-tree sweeping
// is simply unavailable.
func NewManager(logger *log.Logger) *Manager {
	reg, err := OpenRegistry("tsrun")
	if err != nil {
		if logger != nil {
			logger.Warn("session registry unavailable", "err", err)
		}
		reg = nil
	}
	return &Manager{baseDir: os.TempDir(), registry: reg, logger: logger}
}

// NewManagerAt is NewManager with an explicit base directory (tests).
func NewManagerAt(baseDir string, logger *log.Logger) *Manager {
	return &Manager{baseDir: baseDir, logger: logger}
}

// Create allocates a fresh session root. Concurrent runs on the same machine
// never collide because the root name embeds a random UUID.
func (m *Manager) Create() (*Session, error) {
	id := uuid.NewString()
	root := filepath.Join(m.baseDir, "tsrun-"+id)
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session root: %w", err)
	}
	s := &Session{
		ID:      id,
		Root:    root,
		dirSeen: map[string]bool{root: true},
		pathMap: make(map[string]string),
	}
	s.dirs = append(s.dirs, root)
	if m.registry != nil {
		if err := m.registry.Register(root); err != nil && m.logger != nil {
			m.logger.Warn("failed to register session", "root", root, "err", err)
		}
	}
	return s, nil
}

// EnsureDir creates dir (inside the session root) and any missing ancestors,
// recording each created directory for ordered removal.
func (s *Session) EnsureDir(dir string) error {
	if s.closed {
		return ErrClosed
	}
	rel, err := filepath.Rel(s.Root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("directory %q escapes session root %q", dir, s.Root)
	}
	// Walk down from the root so parents are recorded before children.
	cur := s.Root
	for _, seg := range splitSegments(rel) {
		cur = filepath.Join(cur, seg)
		if s.dirSeen[cur] {
			continue
		}
		if err := os.Mkdir(cur, 0o700); err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create session dir %q: %w", cur, err)
		}
		s.dirSeen[cur] = true
		s.dirs = append(s.dirs, cur)
	}
	return nil
}

// WriteFile writes data at path inside the session tree, creating parent
// directories as needed, and records the file for cleanup.
func (s *Session) WriteFile(path string, data []byte) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file %q: %w", path, err)
	}
	s.files = append(s.files, path)
	return nil
}

// AddMapping records where an original file landed inside the session.
func (s *Session) AddMapping(original, sessionPath string) {
	if s.closed {
		return
	}
	s.pathMap[original] = sessionPath
}

// Mapped returns the session path an original file was written to.
func (s *Session) Mapped(original string) (string, bool) {
	p, ok := s.pathMap[original]
	return p, ok
}

// Files returns the written files in creation order.
func (s *Session) Files() []string {
	return s.files
}

// Closed reports whether Cleanup already ran.
func (s *Session) Closed() bool {
	return s.closed
}

// Cleanup removes every recorded file, then every recorded directory
// innermost first, and finally the root. Already-missing paths are fine;
// cleanup is idempotent and never masks the primary result — problems are
// logged and folded into the returned error only.
func (m *Manager) Cleanup(s *Session) error {
	if s == nil || s.closed {
		return nil
	}
	var firstErr error
	for _, f := range s.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove %q: %w", f, err)
			}
			if m.logger != nil {
				m.logger.Warn("cleanup: failed to remove file", "path", f, "err", err)
			}
		}
	}
	for i := len(s.dirs) - 1; i >= 0; i-- {
		d := s.dirs[i]
		if err := os.Remove(d); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove %q: %w", d, err)
			}
			if m.logger != nil {
				m.logger.Warn("cleanup: failed to remove dir", "path", d, "err", err)
			}
		}
	}
	// Catch anything written behind the session's back (runner artifacts).
	if err := os.RemoveAll(s.Root); err != nil && firstErr == nil {
		firstErr = err
	}

	s.files = nil
	s.dirs = nil
	s.dirSeen = nil
	s.pathMap = nil
	s.closed = true

	if m.registry != nil {
		if err := m.registry.Deregister(s.Root); err != nil && m.logger != nil {
			m.logger.Warn("failed to deregister session", "root", s.Root, "err", err)
		}
	}
	return firstErr
}

// Release hands a session tree over to the caller: the tree stays on disk,
// the registry entry is dropped so later sweeps leave it alone, and the
// session is closed to further writes.
func (m *Manager) Release(s *Session) {
	if s == nil || s.closed {
		return
	}
	s.files = nil
	s.dirs = nil
	s.dirSeen = nil
	s.closed = true
	if m.registry != nil {
		if err := m.registry.Deregister(s.Root); err != nil && m.logger != nil {
			m.logger.Warn("failed to deregister session", "root", s.Root, "err", err)
		}
	}
}

// Sweep removes stale session trees left behind by previous invocations.
func (m *Manager) Sweep() ([]string, error) {
	if m.registry == nil {
		return nil, nil
	}
	return m.registry.Sweep(m.logger)
}

func splitSegments(rel string) []string {
	if rel == "." || rel == "" {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

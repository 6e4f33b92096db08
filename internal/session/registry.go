package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when registryPayload format changes.
const registrySchemaVersion uint16 = 1

// Entry records one live (or stale) session root.
type Entry struct {
	Root    string
	PID     int
	Started time.Time
}

type registryPayload struct {
	Schema  uint16
	Entries []Entry
}

// Registry persists the set of session roots across invocations so a failed
// run's tree can be swept by the next one. Thread-safe within a process;
// cross-process races are tolerated because entries are only ever advisory.
type Registry struct {
	mu   sync.Mutex
	path string
}

// OpenRegistry initializes the registry file at the standard cache location.
func OpenRegistry(app string) (*Registry, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Registry{path: filepath.Join(dir, "sessions.bin")}, nil
}

// OpenRegistryAt places the registry file in an explicit directory (tests).
func OpenRegistryAt(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Registry{path: filepath.Join(dir, "sessions.bin")}, nil
}

// Register adds root to the registry.
func (r *Registry) Register(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, err := r.load()
	if err != nil {
		return err
	}
	payload.Entries = append(payload.Entries, Entry{
		Root:    root,
		PID:     os.Getpid(),
		Started: time.Now(),
	})
	return r.save(payload)
}

// Deregister removes root from the registry.
func (r *Registry) Deregister(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, err := r.load()
	if err != nil {
		return err
	}
	kept := payload.Entries[:0]
	for _, e := range payload.Entries {
		if e.Root != root {
			kept = append(kept, e)
		}
	}
	payload.Entries = kept
	return r.save(payload)
}

// Sweep deletes trees whose owning process is gone and prunes entries whose
// root already vanished. Entries owned by the current process are kept.
func (r *Registry) Sweep(logger *log.Logger) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, err := r.load()
	if err != nil {
		return nil, err
	}

	var removed []string
	kept := payload.Entries[:0]
	for _, e := range payload.Entries {
		if e.PID == os.Getpid() {
			kept = append(kept, e)
			continue
		}
		if _, err := os.Stat(e.Root); errors.Is(err, os.ErrNotExist) {
			continue // root already gone, just drop the entry
		}
		if processAlive(e.PID) {
			kept = append(kept, e)
			continue
		}
		if err := os.RemoveAll(e.Root); err != nil {
			if logger != nil {
				logger.Warn("failed to sweep stale session", "root", e.Root, "err", err)
			}
			kept = append(kept, e)
			continue
		}
		removed = append(removed, e.Root)
	}
	payload.Entries = kept
	if err := r.save(payload); err != nil {
		return removed, err
	}
	return removed, nil
}

func (r *Registry) load() (registryPayload, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return registryPayload{Schema: registrySchemaVersion}, nil
		}
		return registryPayload{}, fmt.Errorf("failed to read session registry: %w", err)
	}
	var payload registryPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil || payload.Schema != registrySchemaVersion {
		// Unreadable or old-schema registry: start over rather than guess.
		return registryPayload{Schema: registrySchemaVersion}, nil
	}
	return payload, nil
}

func (r *Registry) save(payload registryPayload) error {
	payload.Schema = registrySchemaVersion
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode session registry: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session registry: %w", err)
	}
	return os.Rename(tmp, r.path)
}

// processAlive reports whether pid refers to a running process we can see.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to someone else.
	return errors.Is(err, syscall.EPERM)
}

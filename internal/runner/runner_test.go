package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeStrategy struct {
	name      string
	available bool
	code      int
	err       error
	ran       bool
}

func (f *fakeStrategy) Name() string    { return f.name }
func (f *fakeStrategy) Available() bool { return f.available }
func (f *fakeStrategy) Run(context.Context, string, []string, Options) (int, error) {
	f.ran = true
	return f.code, f.err
}

func TestExecuteFirstAvailable(t *testing.T) {
	missing := &fakeStrategy{name: "node", available: false}
	present := &fakeStrategy{name: "deno", available: true, code: 3}

	name, code, err := Execute(context.Background(), []Strategy{missing, present}, "e.mjs", nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if name != "deno" || code != 3 {
		t.Errorf("got (%q, %d)", name, code)
	}
	if missing.ran {
		t.Error("unavailable strategy was run")
	}
}

func TestExecuteStopsAtFirst(t *testing.T) {
	first := &fakeStrategy{name: "node", available: true, err: errors.New("spawn failed")}
	second := &fakeStrategy{name: "deno", available: true}

	_, _, err := Execute(context.Background(), []Strategy{first, second}, "e.mjs", nil, Options{})
	if err == nil {
		t.Fatal("spawn failure swallowed")
	}
	if second.ran {
		t.Error("fallback ran after a strategy was already selected")
	}
}

func TestExecuteNoRuntime(t *testing.T) {
	_, _, err := Execute(context.Background(), []Strategy{
		&fakeStrategy{name: "node"},
		&fakeStrategy{name: "deno"},
	}, "e.mjs", nil, Options{})
	if !errors.Is(err, ErrNoRuntime) {
		t.Errorf("err = %v, want ErrNoRuntime", err)
	}
}

func TestFromNames(t *testing.T) {
	chain := FromNames([]string{"deno", "bun", "node"}, nil)
	var names []string
	for _, s := range chain {
		names = append(names, s.Name())
	}
	// Unknown names drop out, order of the known ones is preserved.
	if len(names) != 2 || names[0] != "deno" || names[1] != "node" {
		t.Errorf("chain = %v", names)
	}
}

func TestNodeModulesChain(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "proj", "src")
	chain := nodeModulesChain(dir)
	parts := strings.Split(chain, string(os.PathListSeparator))
	if parts[0] != filepath.Join(dir, "node_modules") {
		t.Errorf("first lookup = %q", parts[0])
	}
	last := parts[len(parts)-1]
	if last != filepath.Join(string(filepath.Separator), "node_modules") {
		t.Errorf("chain does not reach the root: %q", last)
	}
}

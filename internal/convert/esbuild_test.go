package convert

import (
	"context"
	"strings"
	"testing"

	"tsrun/internal/config"
)

func TestConvertStripsTypes(t *testing.T) {
	opts := config.Default()
	out, err := ESBuild{}.Convert(context.Background(),
		"const n: number = 1;\nexport { n };\n", "sample.ts", opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if strings.Contains(out, ": number") {
		t.Errorf("type annotation survived conversion:\n%s", out)
	}
	if !strings.Contains(out, "export") {
		t.Errorf("export statement lost:\n%s", out)
	}
}

func TestConvertKeepsRelativeImports(t *testing.T) {
	opts := config.Default()
	out, err := ESBuild{}.Convert(context.Background(),
		`import { x } from "./dep";`+"\nconsole.log(x);\n", "entry.ts", opts)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(out, `"./dep"`) {
		t.Errorf("relative import specifier rewritten or dropped:\n%s", out)
	}
}

func TestConvertReportsPositionedError(t *testing.T) {
	opts := config.Default()
	_, err := ESBuild{}.Convert(context.Background(),
		"const = broken;\n", "broken.ts", opts)
	if err == nil {
		t.Fatal("broken source converted")
	}
	cerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type %T, want *Error", err)
	}
	if cerr.File != "broken.ts" {
		t.Errorf("File = %q", cerr.File)
	}
	if cerr.Pos.Line == 0 {
		t.Error("error carries no line")
	}
}

func TestConvertDeterministic(t *testing.T) {
	opts := config.Default()
	src := "export const greeting: string = `hi`;\n"
	a, err := ESBuild{}.Convert(context.Background(), src, "g.ts", opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ESBuild{}.Convert(context.Background(), src, "g.ts", opts)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("conversion output not byte-identical across runs")
	}
}

func TestAnalyzeSyntaxCleanSource(t *testing.T) {
	diags := AnalyzeSyntax("const ok: string = \"fine\";\n", "ok.ts", config.Default())
	for _, d := range diags {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
}

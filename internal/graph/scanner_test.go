package graph

import (
	"testing"
)

func specifiers(imports []Import) []string {
	out := make([]string, len(imports))
	for i, imp := range imports {
		out[i] = imp.Specifier
	}
	return out
}

func TestScanImportForms(t *testing.T) {
	src := []byte(`
import defaultExport from "./a";
import * as ns from './b';
import { one, two as alias } from "./c";
import type { T } from "./types";
import "./side-effect";
export { rex } from "./d";
export * from './e';
const lazy = await import("./f");
const legacy = require('./g');
`)
	got := specifiers(ScanImports(src))
	want := []string{"./a", "./b", "./c", "./types", "./side-effect", "./d", "./e", "./f", "./g"}
	if len(got) != len(want) {
		t.Fatalf("specifiers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("specifiers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanKinds(t *testing.T) {
	src := []byte(`
import a from "./a";
export { b } from "./b";
import("./c");
require("./d");
`)
	imports := ScanImports(src)
	if len(imports) != 4 {
		t.Fatalf("got %d imports: %v", len(imports), specifiers(imports))
	}
	wantKinds := []ImportKind{ImportStatic, ImportExportFrom, ImportDynamic, ImportRequire}
	for i, k := range wantKinds {
		if imports[i].Kind != k {
			t.Errorf("imports[%d].Kind = %v, want %v", i, imports[i].Kind, k)
		}
	}
}

func TestScanIgnoresNonImports(t *testing.T) {
	src := []byte(`
// import "./in-line-comment";
/* import "./in-block-comment"; */
const s = "import './in-string'";
const t = ` + "`" + `import "./in-template" ${import.meta.url}` + "`" + `;
const obj = { import: 1 };
obj.import("./method-call");
export const x = 1;
export default function main() {}
const computed = import(someVariable);
`)
	imports := ScanImports(src)
	if len(imports) != 0 {
		t.Errorf("expected no imports, got %v", specifiers(imports))
	}
}

func TestScanTemplateHoles(t *testing.T) {
	src := []byte("const s = `${require('./real')} plain ${`nested ${1}`}`;")
	imports := ScanImports(src)
	if len(imports) != 1 || imports[0].Specifier != "./real" {
		t.Errorf("imports = %v", specifiers(imports))
	}
}

func TestScanOffsets(t *testing.T) {
	src := []byte(`import x from "./mod";`)
	imports := ScanImports(src)
	if len(imports) != 1 {
		t.Fatalf("got %d imports", len(imports))
	}
	imp := imports[0]
	if string(src[imp.SpecStart:imp.SpecEnd]) != "./mod" {
		t.Errorf("offsets select %q, want %q", src[imp.SpecStart:imp.SpecEnd], "./mod")
	}
}

func TestScanMultilineClause(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"braced clause", "import {\n\tone,\n\ttwo,\n} from \"./multi\";", "./multi"},
		{"break before from", "import d\nfrom \"./dep\";", "./dep"},
		{"star break before from", "export *\nfrom \"./dep\";", "./dep"},
		{"namespace break", "import * as ns\n\tfrom './wide';", "./wide"},
		{"brace then break", "export { a, b }\nfrom \"./re\";", "./re"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imports := ScanImports([]byte(tt.src))
			if len(imports) != 1 || imports[0].Specifier != tt.want {
				t.Errorf("imports = %v, want [%s]", specifiers(imports), tt.want)
			}
		})
	}
}

func TestScanClauseStopsAtNextStatement(t *testing.T) {
	// No semicolons: the export has no from clause, and the following
	// import must still be seen as its own statement.
	src := []byte("export { a }\nimport b from \"./b\"")
	imports := ScanImports(src)
	if len(imports) != 1 || imports[0].Specifier != "./b" {
		t.Fatalf("imports = %v, want [./b]", specifiers(imports))
	}
	if imports[0].Kind != ImportStatic {
		t.Errorf("Kind = %v, want %v", imports[0].Kind, ImportStatic)
	}
}

func TestScanReservedExportName(t *testing.T) {
	src := []byte(`export { foo as import } from "./re";`)
	imports := ScanImports(src)
	if len(imports) != 1 || imports[0].Specifier != "./re" {
		t.Errorf("imports = %v, want [./re]", specifiers(imports))
	}
}

package diag

import (
	"testing"

	"tsrun/internal/source"
)

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(Diagnostic{Severity: SevError}) {
		t.Fatal("first Add rejected")
	}
	if !b.Add(Diagnostic{Severity: SevWarning}) {
		t.Fatal("second Add rejected")
	}
	if b.Add(Diagnostic{Severity: SevInfo}) {
		t.Fatal("Add over cap accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevWarning})
	if b.HasErrors() {
		t.Error("HasErrors true with only warnings")
	}
	if !b.HasWarnings() {
		t.Error("HasWarnings false with a warning present")
	}
	b.Add(Diagnostic{Severity: SevError})
	if !b.HasErrors() {
		t.Error("HasErrors false with an error present")
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{File: "b.ts", Pos: source.LineCol{Line: 1, Col: 1}, Severity: SevError})
	b.Add(Diagnostic{File: "a.ts", Pos: source.LineCol{Line: 2, Col: 1}, Severity: SevWarning})
	b.Add(Diagnostic{File: "a.ts", Pos: source.LineCol{Line: 1, Col: 5}, Severity: SevError})
	b.Add(Diagnostic{File: "a.ts", Pos: source.LineCol{Line: 1, Col: 5}, Severity: SevWarning, Code: 7})

	b.Sort()
	items := b.Items()
	if items[0].File != "a.ts" || items[0].Severity != SevError {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Code != 7 {
		t.Errorf("items[1] = %+v, want the warning at the same position after the error", items[1])
	}
	if items[2].Pos.Line != 2 {
		t.Errorf("items[2] = %+v", items[2])
	}
	if items[3].File != "b.ts" {
		t.Errorf("items[3] = %+v", items[3])
	}
}

func TestBagFilter(t *testing.T) {
	b := NewBag(10)
	b.Add(Diagnostic{Severity: SevError, Code: 1})
	b.Add(Diagnostic{Severity: SevWarning, Code: 2})
	b.Add(Diagnostic{Severity: SevError, Code: 3})

	out := b.Filter(func(d Diagnostic) bool { return d.Severity == SevError })
	if out.Len() != 2 {
		t.Fatalf("filtered Len = %d, want 2", out.Len())
	}
	for _, d := range out.Items() {
		if d.Severity != SevError {
			t.Errorf("kept non-error diagnostic %+v", d)
		}
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(Diagnostic{Code: 1})
	b := NewBag(2)
	b.Add(Diagnostic{Code: 2})
	b.Add(Diagnostic{Code: 3})

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("merged Len = %d, want 3", a.Len())
	}
}

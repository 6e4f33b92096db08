package diag

import (
	"fmt"

	"tsrun/internal/source"
)

// Reporter is the minimal contract for phases that emit diagnostics.
// Implementations: BagReporter (collects into a Bag), NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes every reported diagnostic into Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops every diagnostic.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Errorf reports a SevError diagnostic with a formatted message.
func Errorf(r Reporter, code Code, file string, pos source.LineCol, format string, args ...any) {
	report(r, SevError, code, file, pos, format, args...)
}

// Warningf reports a SevWarning diagnostic with a formatted message.
func Warningf(r Reporter, code Code, file string, pos source.LineCol, format string, args ...any) {
	report(r, SevWarning, code, file, pos, format, args...)
}

// Infof reports a SevInfo diagnostic with a formatted message.
func Infof(r Reporter, code Code, file string, pos source.LineCol, format string, args ...any) {
	report(r, SevInfo, code, file, pos, format, args...)
}

func report(r Reporter, sev Severity, code Code, file string, pos source.LineCol, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Pos:      pos,
	})
}

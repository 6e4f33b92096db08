package diag

import (
	"tsrun/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	File string
	Pos  source.LineCol
	Msg  string
}

// Diagnostic is one reported issue. File may be empty for global diagnostics
// (config parsing, analyzer setup); Pos is zero when no location is known.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	File     string
	Pos      source.LineCol
	// Length is the byte length of the offending range on Pos.Line, used
	// for underlining. Zero means "point at a single column".
	Length uint32
	Notes  []Note
}

// HasPos reports whether the diagnostic carries a source position.
func (d Diagnostic) HasPos() bool {
	return d.Pos.Line > 0
}

// WithNote returns a copy of d with an extra note appended.
func (d Diagnostic) WithNote(file string, pos source.LineCol, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{File: file, Pos: pos, Msg: msg})
	return d
}

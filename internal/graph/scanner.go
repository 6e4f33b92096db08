// Package graph discovers the local dependency closure of an entry file.
// A lightweight byte scanner extracts import specifiers without building a
// syntax tree; the walker resolves them and recurses depth-first with a
// shared visited set so diamonds and cycles are each visited exactly once.
package graph

import (
	"unicode/utf8"
)

// ImportKind says which syntactic form produced an import.
type ImportKind uint8

const (
	// ImportStatic is `import ... from "x"` or `import "x"`.
	ImportStatic ImportKind = iota
	// ImportExportFrom is `export ... from "x"`.
	ImportExportFrom
	// ImportDynamic is `import("x")`.
	ImportDynamic
	// ImportRequire is `require("x")`.
	ImportRequire
)

func (k ImportKind) String() string {
	switch k {
	case ImportStatic:
		return "import"
	case ImportExportFrom:
		return "export-from"
	case ImportDynamic:
		return "dynamic-import"
	case ImportRequire:
		return "require"
	}
	return "unknown"
}

// Import is one literal module specifier found in a file.
type Import struct {
	Specifier string
	Kind      ImportKind
	// SpecStart and SpecEnd delimit the specifier text between its quotes,
	// as byte offsets into the scanned source. Rewriters splice here.
	SpecStart uint32
	SpecEnd   uint32
}

// scanner walks raw source bytes, tracking just enough lexical state to skip
// comments, strings and template literals. Only specifiers written as plain
// string literals are reported; computed dynamic imports are ignored.
type scanner struct {
	src []byte
	pos int
	out []Import
}

// ScanImports extracts every import declaration, export-from declaration,
// dynamic-import call and require call with a literal specifier from src.
// Order follows source order. The scanner accepts both the dialect and the
// converted target language, so it can run on either side of conversion.
func ScanImports(src []byte) []Import {
	s := &scanner{src: src}
	s.run()
	return s.out
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/':
			if !s.skipComment() {
				s.pos++
			}
		case c == '\'' || c == '"':
			s.skipString(c)
		case c == '`':
			s.skipTemplate()
		case isIdentStart(c):
			s.word()
		default:
			s.pos++
		}
	}
}

// word consumes an identifier and dispatches on the interesting keywords.
func (s *scanner) word() {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	// A keyword preceded by '.' is a member access, not a declaration.
	if prev, ok := prevNonSpace(s.src, start); ok && (prev == '.' || isIdentPart(prev)) {
		return
	}
	switch string(s.src[start:s.pos]) {
	case "import":
		s.afterImport()
	case "export":
		s.afterExport()
	case "require":
		s.afterRequire()
	}
}

// afterImport handles `import "x"`, `import ... from "x"`, `import("x")`
// and leaves `import.meta` alone.
func (s *scanner) afterImport() {
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return
	}
	switch c := s.src[s.pos]; {
	case c == '.':
		// import.meta
		return
	case c == '(':
		s.pos++
		s.callArgument(ImportDynamic)
	case c == '\'' || c == '"':
		s.stringLiteral(ImportStatic)
	default:
		// Import clause: scan to the `from` keyword of this statement.
		s.fromClause(ImportStatic)
	}
}

// afterExport reports `export ... from "x"` and ignores plain exports.
func (s *scanner) afterExport() {
	s.fromClause(ImportExportFrom)
}

// afterRequire handles `require("x")` with a literal argument.
func (s *scanner) afterRequire() {
	s.skipTrivia()
	if s.pos < len(s.src) && s.src[s.pos] == '(' {
		s.pos++
		s.callArgument(ImportRequire)
	}
}

// callArgument records the specifier when the first argument is a plain
// string literal; anything computed is skipped.
func (s *scanner) callArgument(kind ImportKind) {
	s.skipTrivia()
	if s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == '"') {
		s.stringLiteral(kind)
	}
}

// fromClause scans the rest of a statement for `from "x"`. It stops at the
// first ';' or at a token that cannot appear before `from`, so a plain
// `export const x = 1` produces nothing. Newlines are ordinary trivia here:
// clauses may break anywhere before `from`.
func (s *scanner) fromClause(kind ImportKind) {
	depth := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/':
			if !s.skipComment() {
				s.pos++
			}
		case c == '\'' || c == '"':
			// A bare string in an import/export clause position is the
			// specifier itself (import "x"; handled by caller, but clauses
			// like `export {} from "x"` land here via the from keyword).
			s.skipString(c)
		case c == '`':
			s.skipTemplate()
		case c == '{':
			depth++
			s.pos++
		case c == '}':
			depth--
			s.pos++
		case c == ';' || c == '(':
			return
		case c == '=':
			// `export const x = ...` — no from clause follows.
			return
		case isIdentStart(c):
			start := s.pos
			for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
				s.pos++
			}
			word := string(s.src[start:s.pos])
			if depth == 0 && word == "from" {
				s.skipTrivia()
				if s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == '"') {
					s.stringLiteral(kind)
				}
				return
			}
			switch word {
			case "const", "let", "var", "function", "class", "enum",
				"interface", "namespace", "abstract", "async", "default":
				// Declaration export; nothing to import.
				return
			case "import", "export":
				// At clause depth these are export names (`{ x as import }`);
				// at depth 0 a new statement started without a from clause
				// (ASI). Rewind so the main loop dispatches it normally.
				if depth == 0 {
					s.pos = start
					return
				}
			}
		default:
			s.pos++
		}
	}
}

// stringLiteral records the literal starting at s.pos as an import.
func (s *scanner) stringLiteral(kind ImportKind) {
	quote := s.src[s.pos]
	s.pos++
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		if c == quote {
			s.out = append(s.out, Import{
				Specifier: string(s.src[start:s.pos]),
				Kind:      kind,
				SpecStart: uint32(start),
				SpecEnd:   uint32(s.pos),
			})
			s.pos++
			return
		}
		if c == '\n' {
			// Unterminated; bail out of the literal.
			return
		}
		s.pos++
	}
}

// skipComment consumes a // or /* */ comment. Returns false when the '/' at
// the current position does not start a comment.
func (s *scanner) skipComment() bool {
	if s.pos+1 >= len(s.src) {
		return false
	}
	switch s.src[s.pos+1] {
	case '/':
		for s.pos < len(s.src) && s.src[s.pos] != '\n' {
			s.pos++
		}
		return true
	case '*':
		s.pos += 2
		for s.pos+1 < len(s.src) {
			if s.src[s.pos] == '*' && s.src[s.pos+1] == '/' {
				s.pos += 2
				return true
			}
			s.pos++
		}
		s.pos = len(s.src)
		return true
	}
	return false
}

func (s *scanner) skipString(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		s.pos++
		if c == quote || c == '\n' {
			return
		}
	}
}

// skipTemplate consumes a template literal, recursing into ${} holes where
// full expressions (including nested templates) may appear.
func (s *scanner) skipTemplate() {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		if c == '`' {
			s.pos++
			return
		}
		if c == '$' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '{' {
			s.pos += 2
			depth := 1
			for s.pos < len(s.src) && depth > 0 {
				switch s.src[s.pos] {
				case '{':
					depth++
					s.pos++
				case '}':
					depth--
					s.pos++
				case '`':
					s.skipTemplate()
				case '\'', '"':
					s.skipString(s.src[s.pos])
				case '/':
					if !s.skipComment() {
						s.pos++
					}
				default:
					s.pos++
				}
			}
			continue
		}
		s.pos++
	}
}

func (s *scanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/':
			if !s.skipComment() {
				return
			}
		default:
			return
		}
	}
}

func prevNonSpace(src []byte, pos int) (byte, bool) {
	for i := pos - 1; i >= 0; i-- {
		c := src[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		return c, true
	}
	return 0, false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

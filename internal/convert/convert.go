// Package convert is the boundary to the source-to-target code conversion
// service. The pipeline depends only on the Converter contract; the bundled
// implementation drives esbuild's transform API. Any converter that keeps
// statement-level source structure intact can be swapped in.
package convert

import (
	"context"
	"fmt"

	"tsrun/internal/config"
	"tsrun/internal/source"
)

// Converter turns one dialect file into runtime-executable code.
type Converter interface {
	Convert(ctx context.Context, sourceText, filePath string, opts *config.Options) (string, error)
}

// Error is a fatal conversion failure. It keeps the offending file and
// position so errors stay debuggable after paths move into the session tree.
type Error struct {
	File string
	Pos  source.LineCol
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

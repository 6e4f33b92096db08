package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a source file was loaded.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 BOM was stripped during loading.
	FileHadBOM
	// FileNormalizedCRLF indicates CRLF line endings were rewritten to LF.
	FileNormalizedCRLF
)

// File captures content and derived metadata for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable 1-based position in a source file.
type LineCol struct {
	Line uint32
	Col  uint32
}

// LineColAt resolves a byte offset inside the file to a line/column pair.
func (f *File) LineColAt(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Line returns the content of the given 1-based line without its newline.
func (f *File) Line(line uint32) []byte {
	if line == 0 {
		return nil
	}
	start := uint32(0)
	if line-1 > 0 {
		idx := line - 2
		if int(idx) >= len(f.LineIdx) {
			return nil
		}
		start = f.LineIdx[idx] + 1
	}
	end := uint32(len(f.Content))
	if int(line-1) < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	if start > end {
		return nil
	}
	return f.Content[start:end]
}

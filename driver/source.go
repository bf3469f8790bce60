package driver

import (
	"path/filepath"
	"strings"

	"cfgc/common"
	"cfgc/llc"
)

// Source is the IR handed to Codegen: either a file on disk or text held in
// memory under an identifier.
type Source struct {
	// Path is the file path or, for in-memory text, the identifier.  Output
	// file names are derived from it.
	Path string

	// Text is the IR for in-memory sources.
	Text string

	inMemory bool
}

// SourceFile names an IR file on disk.
func SourceFile(path string) Source {
	return Source{Path: path}
}

// SourceText wraps IR text under the identifier id.
func SourceText(id, text string) Source {
	return Source{Path: id, Text: text, inMemory: true}
}

// Stem returns the source path with its extension removed.
func (s Source) Stem() string {
	return strings.TrimSuffix(s.Path, filepath.Ext(s.Path))
}

// irOutputFile is where textual IR for the source is written.  A source file
// that already has the IR extension is never overwritten.
func (s Source) irOutputFile() string {
	path := s.Stem() + common.IRFileExt
	if !s.inMemory && filepath.Clean(path) == filepath.Clean(s.Path) {
		path = s.Stem() + ".opt" + common.IRFileExt
	}

	return path
}

func (s Source) parse(ctx *llc.Context) (*llc.Module, error) {
	if s.inMemory {
		return ctx.ParseIR(s.Path, s.Text)
	}

	return ctx.ParseIRFile(s.Path)
}

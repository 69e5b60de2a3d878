// Package source loads LaTeX documents and answers line queries on them.
package source

import (
	"bytes"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// Flags records where a document came from and what loading changed.
type Flags uint8

const (
	// FlagVirtual marks content that was not read from disk (stdin, editor buffer).
	FlagVirtual Flags = 1 << iota
	FlagHadBOM
	FlagCRLF     // CRLF is the dominant line ending; Restore writes CRLF everywhere
	FlagMixedEOL // both CRLF and bare LF endings were present
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// File is one document as the validator sees it: BOM stripped, CRLF
// converted to LF. Lines are 0-based.
type File struct {
	Path    string
	Content []byte
	Flags   Flags

	lineStarts []uint32 // byte offset of every line start; lineStarts[0] == 0
}

// Load reads path from disk and normalizes it.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(path, raw), nil
}

// FromBytes normalizes raw as if it had been read from path. raw is not
// retained, so callers may compare it with a restored result.
func FromBytes(path string, raw []byte) *File {
	content, flags := normalize(bytes.Clone(raw))
	return newFile(path, content, flags)
}

// Virtual wraps in-memory content. With normalizeEOL the loader rules
// apply; without it the content is kept byte for byte.
func Virtual(name string, content []byte, normalizeEOL bool) *File {
	flags := FlagVirtual
	if normalizeEOL {
		var extra Flags
		content, extra = normalize(content)
		flags |= extra
	}
	return newFile(name, content, flags)
}

func newFile(path string, content []byte, flags Flags) *File {
	starts := make([]uint32, 1, bytes.Count(content, []byte{'\n'})+1)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, offset(i+1))
		}
	}
	return &File{
		Path:       cleanPath(path),
		Content:    content,
		Flags:      flags,
		lineStarts: starts,
	}
}

func offset(n int) uint32 {
	off, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("document offset overflow: %w", err))
	}
	return off
}

func normalize(content []byte) ([]byte, Flags) {
	var flags Flags
	if rest, ok := bytes.CutPrefix(content, bom); ok {
		content = rest
		flags |= FlagHadBOM
	}
	// одиночный \r не трогаем
	crlf := bytes.Count(content, []byte("\r\n"))
	if crlf == 0 {
		return content, flags
	}
	lf := bytes.Count(content, []byte("\n")) - crlf
	if lf > 0 {
		flags |= FlagMixedEOL
	}
	if crlf >= lf {
		flags |= FlagCRLF
	}
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), flags
}

// Restore re-applies what loading removed (CRLF, BOM) to content derived
// from f, so a rewritten file keeps its original encoding. A file with
// mixed endings comes back with the dominant one on every line.
func (f *File) Restore(content []byte) []byte {
	if f.Flags&FlagCRLF != 0 {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	if f.Flags&FlagHadBOM != 0 {
		content = append(append([]byte(nil), bom...), content...)
	}
	return content
}

// Text returns the content as a string.
func (f *File) Text() string {
	return string(f.Content)
}

// LineCount matches strings.Split(text, "\n"): a trailing newline opens
// one more, empty, line.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// Line returns line n without its '\n', or "" past the end.
func (f *File) Line(n uint32) string {
	if int(n) >= len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[n]
	end := offset(len(f.Content))
	if int(n)+1 < len(f.lineStarts) {
		end = f.lineStarts[n+1] - 1
	}
	return string(f.Content[start:end])
}

// Offset converts a 0-based line and byte column into a byte offset in
// Content. It reports false when line is past the end.
func (f *File) Offset(line, col uint32) (uint32, bool) {
	if int(line) >= len(f.lineStarts) {
		return 0, false
	}
	return f.lineStarts[line] + col, true
}

package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// applyChanges replays content changes in order. A change without a range
// replaces the whole document.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, ch := range changes {
		if ch.Range == nil {
			text = ch.Text
			continue
		}
		from := byteOffset(text, ch.Range.Start)
		to := max(byteOffset(text, ch.Range.End), from)
		text = text[:from] + ch.Text + text[to:]
	}
	return text
}

// byteOffset maps an LSP position (UTF-16 units) to a byte offset in text.
// Positions past a line end clamp to that end, positions past the last
// line clamp to len(text).
func byteOffset(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	start := 0
	for range pos.Line {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return len(text)
		}
		start += nl + 1
	}
	line := text[start:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	return start + byteColumn(line, pos.Character)
}

// byteColumn is the inverse of utf16Column. A column inside a surrogate
// pair rounds down to the rune start.
func byteColumn(line string, units int) int {
	n := 0
	for i, r := range line {
		w := runeUnits(r)
		if n+w > units {
			return i
		}
		n += w
	}
	return len(line)
}

// utf16Column converts a byte column within line to UTF-16 code units.
func utf16Column(line string, byteCol int) int {
	byteCol = min(max(byteCol, 0), len(line))
	n := 0
	for _, r := range line[:byteCol] {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	return max(utf16.RuneLen(r), 1)
}

// documentEnd is the position just past the last character of text.
func documentEnd(text string) position {
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return position{
		Line:      strings.Count(text, "\n"),
		Character: utf16Column(last, len(last)),
	}
}

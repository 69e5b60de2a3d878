package diag

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Окружения \begin / \end
	TexEnvInfo         Code = 1000
	TexEndWithoutBegin Code = 1001
	TexEnvMismatch     Code = 1002
	TexEnvUnclosed     Code = 1003

	// Спецсимволы
	TexEscapeInfo    Code = 2000
	TexUnescapedChar Code = 2001

	// Скобки
	TexBracketInfo       Code = 3000
	TexUnexpectedBracket Code = 3001
	TexBracketMismatch   Code = 3002
	TexUnclosedBracket   Code = 3003

	// I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002
)

// Category groups codes by the check that produces them.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryEnvironment
	CategoryEscape
	CategoryBracket
	CategoryIO
)

var (
	codeDescription = map[Code]string{
		UnknownCode:          "Unknown error",
		TexEnvInfo:           "Environment information",
		TexEndWithoutBegin:   "\\end without matching \\begin",
		TexEnvMismatch:       "Mismatched environment",
		TexEnvUnclosed:       "Unclosed environment",
		TexEscapeInfo:        "Escape information",
		TexUnescapedChar:     "Unescaped special character",
		TexBracketInfo:       "Bracket information",
		TexUnexpectedBracket: "Unexpected closing bracket",
		TexBracketMismatch:   "Mismatched brackets",
		TexUnclosedBracket:   "Unclosed bracket",
		IOLoadFileError:      "I/O load file error",
		IOCacheError:         "Cache error",
	}
)

func (c Code) Category() Category {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return CategoryEnvironment
	case ic >= 2000 && ic < 3000:
		return CategoryEscape
	case ic >= 3000 && ic < 4000:
		return CategoryBracket
	case ic >= 4000 && ic < 5000:
		return CategoryIO
	}
	return CategoryUnknown
}

func (c Code) ID() string {
	switch c.Category() {
	case CategoryEnvironment, CategoryEscape, CategoryBracket:
		return fmt.Sprintf("TEX%04d", int(c))
	case CategoryIO:
		return fmt.Sprintf("IO%04d", int(c))
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode resolves an identifier such as "TEX2001" or "IO4001".
func ParseCode(id string) (Code, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	var digits string
	switch {
	case strings.HasPrefix(id, "TEX"):
		digits = id[3:]
	case strings.HasPrefix(id, "IO"):
		digits = id[2:]
	default:
		return UnknownCode, false
	}
	n, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return UnknownCode, false
	}
	c := Code(n)
	if _, ok := codeDescription[c]; !ok || c.ID() != id {
		return UnknownCode, false
	}
	return c, true
}

// KnownCodes returns every registered code in ascending order.
func KnownCodes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// DefaultSeverity is the severity a code is normally reported with.
func (c Code) DefaultSeverity() Severity {
	switch c {
	case TexUnescapedChar:
		return SevWarning
	case UnknownCode, TexEnvInfo, TexEscapeInfo, TexBracketInfo, IOCacheError:
		return SevInfo
	default:
		return SevError
	}
}

package latex

import "regexp"

var (
	beginRe = regexp.MustCompile(`\\begin\{([^}]+)\}`)
	endRe   = regexp.MustCompile(`\\end\{([^}]+)\}`)
)

// EnvironmentFrame records an open \begin{Name} on 0-based Line.
type EnvironmentFrame struct {
	Name string
	Line int
}

// BracketFrame records an open bracket at a 0-based position.
type BracketFrame struct {
	Kind   byte
	Line   int
	Column int
}

type envStack struct{ frames []EnvironmentFrame }

func (s *envStack) push(f EnvironmentFrame) { s.frames = append(s.frames, f) }

func (s *envStack) pop() (EnvironmentFrame, bool) {
	if len(s.frames) == 0 {
		return EnvironmentFrame{}, false
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top, true
}

type bracketStack struct{ frames []BracketFrame }

func (s *bracketStack) push(f BracketFrame) { s.frames = append(s.frames, f) }

func (s *bracketStack) pop() (BracketFrame, bool) {
	if len(s.frames) == 0 {
		return BracketFrame{}, false
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top, true
}

func closerFor(open byte) byte {
	switch open {
	case '{':
		return '}'
	case '[':
		return ']'
	case '(':
		return ')'
	}
	return 0
}

package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // driver spans only; meant for the ring dump on failure
	LevelPhase               // driver + file boundaries
	LevelDetail              // per-stage spans
	LevelDebug               // everything, cache points included
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest scope recorded at each level
var levelScope = [...]Scope{0, ScopeDriver, ScopeFile, ScopeStage, scopePoint}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScope) {
		return false
	}
	return scope != 0 && scope <= levelScope[l]
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one command invocation or LSP session
	ScopeFile                    // one document
	ScopeStage                   // validate / format of one document
	scopePoint                   // instant events below stage level
)

var scopeNames = [...]string{"", "driver", "file", "stage", "point"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && s != 0 {
		return scopeNames[s]
	}
	return "unknown"
}

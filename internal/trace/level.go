package trace

import (
	"fmt"
	"strings"
)

// Level controls how much of a build is traced. Each level above
// LevelError admits the scope it is named after and every coarser one.
type Level uint8

const (
	LevelOff   Level = iota
	LevelError       // record everything, but only into the ring for failure dumps
	LevelStage       // build request and pipeline stages
	LevelFunc        // plus function windows
	LevelInstr       // plus every emitted instruction
)

var levelNames = [...]string{
	LevelOff:   "off",
	LevelError: "error",
	LevelStage: "stage",
	LevelFunc:  "func",
	LevelInstr: "instr",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(s)
	for l, name := range levelNames {
		if name == s {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at all.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError, LevelInstr:
		return true
	case LevelStage:
		return scope <= ScopeModule
	case LevelFunc:
		return scope <= ScopeFunction
	}
	return false
}

// Streams reports whether events of scope are written out as they happen.
// At LevelError nothing streams; the ring keeps events for a dump instead.
func (l Level) Streams(scope Scope) bool {
	return l != LevelError && l.ShouldEmit(scope)
}

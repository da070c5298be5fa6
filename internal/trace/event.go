package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the part of a build an event belongs to. Coarser scopes have
// lower values, so a level admits every scope up to its own.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // one build request
	ScopeModule                    // a pipeline stage over the module
	ScopeFunction                  // one function's construction window
	ScopeInstr                     // one emitted instruction or global
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopeModule: "module", ScopeFunction: "function", ScopeInstr: "instr"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Site places an event inside the module under construction.
type Site struct {
	Func   string // function whose window is open
	Value  uint32 // result value number, 0 when there is none
	Global string // global created by the event
}

// Event is one recorded trace entry.
type Event struct {
	Site

	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // stage name, "define" or an opcode
	Detail   string
	Failed   bool // set on the end event of a span closed with Fail
	Extra    map[string]string
}

// Instr records one emitted instruction, or one global created from inside
// a function body, at site.
func Instr(t Tracer, at Site, op, detail string, parent uint64) {
	if t == nil || !t.Level().ShouldEmit(ScopeInstr) {
		return
	}
	t.Emit(&Event{
		Site:     at,
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    ScopeInstr,
		ParentID: parent,
		Name:     op,
		Detail:   detail,
	})
}

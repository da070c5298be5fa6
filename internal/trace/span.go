package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq numbers recorded events across every tracer of the process.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Span covers one stage, build or function window. A span whose scope the
// tracer does not admit records nothing but still hands out its parent's
// ID, so children attach to the nearest recorded ancestor.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	fn      string
	started time.Time
	extra   map[string]string
}

// Begin opens a driver or module span.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, "", parent)
}

// BeginFunc opens the span of fn's construction window. Its events carry
// fn in their Site.
func BeginFunc(t Tracer, fn string, parent uint64) *Span {
	return begin(t, ScopeFunction, "define", fn, parent)
}

func begin(t Tracer, scope Scope, name, fn string, parent uint64) *Span {
	s := &Span{parent: parent, scope: scope, name: name, fn: fn, started: time.Now()}
	if t == nil || !t.Level().ShouldEmit(scope) {
		return s
	}
	s.tracer = t
	s.id = spanCounter.Add(1)
	t.Emit(s.event(KindSpanBegin, s.started))
	return s
}

func (s *Span) event(kind Kind, at time.Time) *Event {
	return &Event{
		Site:     Site{Func: s.fn},
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
	}
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	return s.end(detail, false)
}

// Fail closes the span as failed. Rings use failed function spans to pick
// what to dump.
func (s *Span) Fail(reason string) time.Duration {
	return s.end(reason, true)
}

func (s *Span) end(detail string, failed bool) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	if s.tracer != nil {
		ev := s.event(KindSpanEnd, now)
		ev.Detail = detail
		ev.Failed = failed
		ev.Extra = s.extra
		s.tracer.Emit(ev)
	}
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID is the span's own ID, or its parent's when the span records nothing.
func (s *Span) ID() uint64 {
	switch {
	case s == nil:
		return 0
	case s.id == 0:
		return s.parent
	default:
		return s.id
	}
}

// Func is the function a BeginFunc span covers, or "".
func (s *Span) Func() string {
	if s == nil {
		return ""
	}
	return s.fn
}

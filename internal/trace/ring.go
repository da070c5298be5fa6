package trace

import (
	"fmt"
	"io"
	"slices"
	"sync"
)

const defaultRingSize = 4096

// RingTracer keeps the most recent events of a build so that a failure can
// be explained after the fact. It can forward every event to a second
// tracer, which is how stream and ring storage are combined.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int // slot for the next event
	filled bool
	level  Level
	fwd    Tracer
}

// NewRingTracer keeps up to capacity events. A non-positive capacity means
// the default of 4096.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Forward sends a copy of every event to t as well. It returns r.
func (r *RingTracer) Forward(t Tracer) *RingTracer {
	r.fwd = t
	return r
}

func (r *RingTracer) Emit(ev *Event) {
	if !r.level.ShouldEmit(ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	if r.fwd != nil {
		cp := *ev
		r.fwd.Emit(&cp)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = *ev
	r.next++
	if r.next == len(r.events) {
		r.next = 0
		r.filled = true
	}
}

// Snapshot returns the kept events, oldest first.
func (r *RingTracer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filled {
		return slices.Clone(r.events[:r.next])
	}
	return append(slices.Clone(r.events[r.next:]), r.events[:r.next]...)
}

// FailedFuncs lists, in order of failure, the functions whose window was
// closed with Fail and is still in the ring.
func (r *RingTracer) FailedFuncs() []string {
	var out []string
	for _, ev := range r.Snapshot() {
		if ev.Kind == KindSpanEnd && ev.Scope == ScopeFunction && ev.Failed && !slices.Contains(out, ev.Func) {
			out = append(out, ev.Func)
		}
	}
	return out
}

// Dump writes every kept event.
func (r *RingTracer) Dump(w io.Writer, format Format) error {
	return writeEvents(w, r.Snapshot(), format)
}

// DumpFunc writes the kept events of fn's construction window under a
// header line naming the function.
func (r *RingTracer) DumpFunc(w io.Writer, fn string, format Format) error {
	var events []Event
	for _, ev := range r.Snapshot() {
		if ev.Func == fn {
			events = append(events, ev)
		}
	}
	if format == FormatText {
		if _, err := fmt.Fprintf(w, "trace of @%s (%d events)\n", fn, len(events)); err != nil {
			return err
		}
	}
	return writeEvents(w, events, format)
}

// DumpFailures writes the window of every failed function. When no
// function failed, the failure happened outside a window and the whole ring
// is written instead.
func (r *RingTracer) DumpFailures(w io.Writer, format Format) error {
	failed := r.FailedFuncs()
	if len(failed) == 0 {
		return r.Dump(w, format)
	}
	for _, fn := range failed {
		if err := r.DumpFunc(w, fn, format); err != nil {
			return err
		}
	}
	return nil
}

func writeEvents(w io.Writer, events []Event, format Format) error {
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *RingTracer) Flush() error {
	if r.fwd != nil {
		return r.fwd.Flush()
	}
	return nil
}

func (r *RingTracer) Close() error {
	if r.fwd != nil {
		return r.fwd.Close()
	}
	return nil
}

func (r *RingTracer) Level() Level { return r.level }

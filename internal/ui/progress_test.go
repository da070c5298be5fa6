package ui

import (
	"strings"
	"testing"

	"irforge/internal/buildpipeline"
)

func TestProgressModelTracksFunctions(t *testing.T) {
	events := make(chan buildpipeline.Event)
	m := NewProgressModel("irforge build", []string{"main", "helper"}, events).(*progressModel)

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageDeclare, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageGlobals, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusWorking})
	m.applyEvent(buildpipeline.Event{Func: "main", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{Func: "helper", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusWorking})

	if got, want := m.percent(), 2.5/6.0; got != want {
		t.Fatalf("percent = %v, want %v", got, want)
	}
	view := m.View()
	if !strings.Contains(view, "(emitting)") || !strings.Contains(view, "main") {
		t.Fatalf("unexpected view:\n%s", view)
	}
	if m.items[0].status != "done" || m.items[1].status != "emitting" {
		t.Fatalf("unexpected statuses %+v", m.items)
	}

	m.applyEvent(buildpipeline.Event{Func: "helper", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusError})
	m.done = true
	if !strings.HasPrefix(stripANSI(m.View()), "failed: ") {
		t.Fatalf("failed build must be marked:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("a_rather_long_function_name", 10); got != "a_rathe..." {
		t.Fatalf("got %q", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestTruncateFitsWidth(t *testing.T) {
	for _, width := range []int{4, 8, 12} {
		got := truncate("emit_constant_backing_for_main", width)
		if w := len(got); w != width {
			t.Fatalf("truncate to %d gave %q (width %d)", width, got, w)
		}
	}
}

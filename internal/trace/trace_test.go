package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "phase", "Detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeUnit, false},
		{LevelDetail, ScopeUnit, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopePass, "build", 0)
	Point(tr, ScopeNode, "scope.new", "filtered out at detail level")
	Point(tr, ScopeUnit, "unit", "kept")
	span.WithExtra("scopes", "3").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ build") || !strings.Contains(out, "← build (ok) {scopes=3}") {
		t.Errorf("missing span events:\n%s", out)
	}
	if strings.Contains(out, "scope.new") {
		t.Errorf("node event must be filtered:\n%s", out)
	}
	if !strings.Contains(out, "unit (kept)") {
		t.Errorf("unit point missing:\n%s", out)
	}
}

func TestFailureBypassesScopeFilter(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	Point(ring, ScopeDriver, "ignored", "")
	Failure(ring, ScopeNode, "range.conflict", "two files")

	events := ring.Snapshot()
	if len(events) != 1 || events[0].Name != "range.conflict" {
		t.Fatalf("expected only the failure event, got %+v", events)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeNode, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected ring contents: %+v", events)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d", len(lines))
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("invalid NDJSON: %v", err)
	}
	if decoded["name"] != "c" {
		t.Errorf("name = %v", decoded["name"])
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Errorf("LevelOff tracer must be disabled")
	}
	if _, err := New(Config{Level: LevelDebug}); err == nil {
		t.Errorf("expected error for missing storage mode")
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	a := NewRingTracer(4, LevelDebug)
	b := NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, a, b)
	Point(m, ScopeNode, "x", "")
	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Fatalf("event not fanned out")
	}
	if a.Snapshot()[0].Seq != b.Snapshot()[0].Seq {
		t.Errorf("fan-out must share one sequence number")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx = WithTracer(ctx, ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
	span := Begin(ring, ScopePass, "p", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() {
		t.Errorf("span id not propagated")
	}
}

package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeUnit) {
		t.Fatalf("phase must not emit unit events")
	}
	if !LevelDetail.ShouldEmit(ScopeUnit) || LevelDetail.ShouldEmit(ScopeNode) {
		t.Fatalf("detail must emit unit but not node events")
	}
	if !LevelDebug.ShouldEmit(ScopeNode) {
		t.Fatalf("debug must emit node events")
	}
	if LevelOff.ShouldEmit(ScopeDriver) {
		t.Fatalf("off must emit nothing")
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopePass, "lower", 0)
	Point(tr, ScopeNode, "node:If", "", span.ID()) // filtered at detail
	span.WithExtra("units", "2").WithExtra("instrs", "14").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ lower") || !strings.Contains(out, "← lower (ok) {instrs=14, units=2}") {
		t.Fatalf("unexpected trace output:\n%s", out)
	}
	if strings.Contains(out, "node:If") {
		t.Fatalf("node event leaked at detail level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeNode, "node:Call", "argc=2", 7)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["name"] != "node:Call" || got["scope"] != "node" || got["detail"] != "argc=2" {
		t.Fatalf("unexpected event: %v", got)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeNode, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRingTracerKeepsNodesAtErrorLevel(t *testing.T) {
	r := NewRingTracer(8, LevelError)
	Point(r, ScopeNode, "node:Binary", "", 0)
	if len(r.Snapshot()) != 1 {
		t.Fatalf("ring at error level should record events for crash dumps")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop without tracer")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithSpan(WithTracer(context.Background(), r), 42)
	if FromContext(ctx) != Tracer(r) || CurrentSpan(ctx) != 42 {
		t.Fatalf("context lost tracer or span")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("expected disabled tracer, got %v %v", tr, err)
	}
}

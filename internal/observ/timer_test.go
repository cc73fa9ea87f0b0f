package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	decode := tm.Begin("decode")
	tm.End(decode, "2 units")
	lower := tm.Begin("lower")
	tm.End(lower, "")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 || rep.Phases[0].Name != "decode" || rep.Phases[0].Note != "2 units" {
		t.Fatalf("unexpected report: %+v", rep)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "decode") || !strings.Contains(sum, "// 2 units") || !strings.Contains(sum, "total") {
		t.Fatalf("unexpected summary:\n%s", sum)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer reported phases")
	}
}

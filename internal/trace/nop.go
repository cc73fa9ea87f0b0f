package trace

// Nop discards every event. FromContext returns it when no tracer was
// attached, so lowering code can emit without checking.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

var _ Tracer = nopTracer{}

func (nopTracer) Emit(*Event) {}
func (nopTracer) Flush() error { return nil }
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Enabled() bool { return false }

package vm

// Frame is one activation record. Each name maps to a stack of bindings so
// that a shadowing alloc hides the outer slot until its dealloc.
type Frame struct {
	Name  string
	slots map[string][]*Value
	// base is the operand stack height when the frame was entered.
	base int
}

func newFrame(name string) *Frame {
	return &Frame{Name: name, slots: make(map[string][]*Value)}
}

func (f *Frame) alloc(name string, v Value) *Value {
	slot := &v
	f.slots[name] = append(f.slots[name], slot)
	return slot
}

func (f *Frame) lookup(name string) (*Value, bool) {
	bindings := f.slots[name]
	if len(bindings) == 0 {
		return nil, false
	}
	return bindings[len(bindings)-1], true
}

func (f *Frame) dealloc(name string) bool {
	bindings := f.slots[name]
	if len(bindings) == 0 {
		return false
	}
	bindings[len(bindings)-1] = nil
	if len(bindings) == 1 {
		delete(f.slots, name)
	} else {
		f.slots[name] = bindings[:len(bindings)-1]
	}
	return true
}

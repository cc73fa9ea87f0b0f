// Package vm is a reference interpreter for lowered IR. It fixes the
// consumer-side semantics of the instruction set, most importantly the loop
// guard: the Guard instructions preceding a Loop are re-run after every
// iteration to recompute the condition.
package vm

import (
	"io"
	"os"

	"stackc/internal/ir"
	"stackc/internal/types"
)

// Options configures a VM.
type Options struct {
	// Natives resolves externs by name and imports by "module.name".
	Natives map[string]Native
	// MaxSteps bounds the number of executed instructions; 0 means no limit.
	MaxSteps int
	Stdout   io.Writer
}

// VM executes instruction sequences on an operand stack.
type VM struct {
	opts    Options
	stack   []Value
	frames  []*Frame
	globals *Frame
	funcs   map[string]*Callable
	steps   int
}

// New creates a VM with an empty unit frame.
func New(opts Options) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Natives == nil {
		opts.Natives = DefaultNatives(opts.Stdout)
	}
	globals := newFrame("<unit>")
	return &VM{
		opts:    opts,
		frames:  []*Frame{globals},
		globals: globals,
		funcs:   make(map[string]*Callable),
	}
}

// Run executes a unit's top-level code.
func (vm *VM) Run(code []ir.Instr) error {
	_, returned, err := vm.exec(code)
	if err != nil {
		return err
	}
	if returned {
		return vm.panicf(PanicBadProgram, "ret outside of a function")
	}
	return nil
}

// Stack returns a copy of the operand stack, bottom first.
func (vm *VM) Stack() []Value {
	out := make([]Value, len(vm.stack))
	for i, v := range vm.stack {
		v.place = nil
		out[i] = v
	}
	return out
}

// Global returns the current value of a unit-level binding.
func (vm *VM) Global(name string) (Value, bool) {
	slot, ok := vm.globals.lookup(name)
	if !ok {
		return Value{}, false
	}
	v := *slot
	v.place = nil
	return v, true
}

// Call invokes a function defined or declared by previously run code.
func (vm *VM) Call(name string, args ...Value) (Value, error) {
	fn, ok := vm.funcs[name]
	if !ok {
		return Value{}, vm.panicf(PanicUnknownName, "no function %q", name)
	}
	return vm.invoke(fn, args)
}

func (vm *VM) frame() *Frame {
	return vm.frames[len(vm.frames)-1]
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return Value{}, vm.panicf(PanicStackUnderflow, "operand stack is empty")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) popBool() (bool, error) {
	v, err := vm.pop()
	if err != nil {
		return false, err
	}
	if v.Tag != types.ConstBool {
		return false, vm.panicf(PanicTypeMismatch, "condition is %s, want bool", v.Tag)
	}
	return v.Bool, nil
}

// resolve finds a slot in the current frame, then the unit frame.
func (vm *VM) resolve(name string) (*Value, bool) {
	if slot, ok := vm.frame().lookup(name); ok {
		return slot, true
	}
	if vm.frame() != vm.globals {
		return vm.globals.lookup(name)
	}
	return nil, false
}

// exec runs code in the current frame. When a Ret executes, returned is set
// and ret holds the returned value (Void for a bare return).
func (vm *VM) exec(code []ir.Instr) (ret Value, returned bool, err error) {
	for i := range code {
		ins := &code[i]
		if vm.opts.MaxSteps > 0 {
			vm.steps++
			if vm.steps > vm.opts.MaxSteps {
				return Value{}, false, vm.panicf(PanicStepLimit, "exceeded %d steps", vm.opts.MaxSteps)
			}
		}

		switch ins.Op {
		case ir.OpDef:
			if ins.Def == nil {
				return Value{}, false, vm.panicf(PanicBadProgram, "def %s without body", ins.Name)
			}
			vm.funcs[ins.Name] = &Callable{Name: ins.Name, Params: ins.Def.Params, Ret: ins.Type, Body: ins.Def.Body}

		case ir.OpExtern:
			if err := vm.bindNative(ins.Name, ins.Name, ins.Type); err != nil {
				return Value{}, false, err
			}

		case ir.OpImport:
			module := ""
			if ins.Import != nil {
				module = ins.Import.Module
			}
			if err := vm.bindNative(ins.Name, module+"."+ins.Name, ins.Type); err != nil {
				return Value{}, false, err
			}

		case ir.OpAlloc:
			vm.frame().alloc(ins.Name, Value{})

		case ir.OpDealloc:
			if !vm.frame().dealloc(ins.Name) {
				return Value{}, false, vm.panicf(PanicBadProgram, "dealloc of unallocated %q", ins.Name)
			}

		case ir.OpStore:
			v, err := vm.pop()
			if err != nil {
				return Value{}, false, err
			}
			slot, ok := vm.frame().lookup(ins.Name)
			if !ok {
				return Value{}, false, vm.panicf(PanicBadProgram, "store to unallocated %q", ins.Name)
			}
			v.place = nil
			*slot = v

		case ir.OpLoad:
			v, err := vm.load(ins.Name)
			if err != nil {
				return Value{}, false, err
			}
			vm.push(v)

		case ir.OpLoadMember:
			if err := vm.loadMember(ins.Name); err != nil {
				return Value{}, false, err
			}

		case ir.OpLoadIndex:
			if err := vm.loadIndex(); err != nil {
				return Value{}, false, err
			}

		case ir.OpSet:
			v, err := vm.pop()
			if err != nil {
				return Value{}, false, err
			}
			target, err := vm.pop()
			if err != nil {
				return Value{}, false, err
			}
			if target.place == nil {
				return Value{}, false, vm.panicf(PanicTypeMismatch, "assignment target is not a place")
			}
			target.place.store(v)

		case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpGt, ir.OpGe, ir.OpEq, ir.OpAnd, ir.OpOr:
			if err := vm.binary(ins.Op); err != nil {
				return Value{}, false, err
			}

		case ir.OpIf:
			cond, err := vm.popBool()
			if err != nil {
				return Value{}, false, err
			}
			if ins.If == nil {
				return Value{}, false, vm.panicf(PanicBadProgram, "if without bodies")
			}
			body := ins.If.Else
			if cond {
				body = ins.If.Then
			}
			if ret, returned, err = vm.exec(body); err != nil || returned {
				return ret, returned, err
			}

		case ir.OpLoop:
			if ret, returned, err = vm.loop(code, i); err != nil || returned {
				return ret, returned, err
			}

		case ir.OpConst:
			if ins.Const == nil {
				return Value{}, false, vm.panicf(PanicBadProgram, "const without value")
			}
			vm.push(fromIR(ins.Type, ins.Const.Value))

		case ir.OpList:
			if err := vm.list(ins); err != nil {
				return Value{}, false, err
			}

		case ir.OpCall:
			if err := vm.call(ins); err != nil {
				return Value{}, false, err
			}

		case ir.OpRet:
			if ins.Type == types.ConstVoid {
				return Void(), true, nil
			}
			// A widened return on a valueless path has nothing above the frame base.
			if ins.Type == types.ConstDynamic && len(vm.stack) <= vm.frame().base {
				return Void(), true, nil
			}
			v, err := vm.pop()
			if err != nil {
				return Value{}, false, err
			}
			v.place = nil
			return v, true, nil

		case ir.OpConv:
			if err := vm.convert(ins); err != nil {
				return Value{}, false, err
			}

		case ir.OpPop:
			if _, err := vm.pop(); err != nil {
				return Value{}, false, err
			}

		default:
			return Value{}, false, vm.panicf(PanicUnimplemented, "op %s", ins.Op)
		}
	}
	return Value{}, false, nil
}

// loop runs the Loop at code[at]. Its condition was computed by the Guard
// instructions just before it; they are re-run after every iteration.
func (vm *VM) loop(code []ir.Instr, at int) (Value, bool, error) {
	ins := &code[at]
	if ins.Loop == nil {
		return Value{}, false, vm.panicf(PanicBadProgram, "loop without body")
	}
	guardLen := int(ins.Loop.Guard)
	if guardLen > at {
		return Value{}, false, vm.panicf(PanicBadProgram, "loop guard %d exceeds preceding code", guardLen)
	}
	guard := code[at-guardLen : at]
	for {
		cond, err := vm.popBool()
		if err != nil {
			return Value{}, false, err
		}
		if !cond {
			return Value{}, false, nil
		}
		if ret, returned, err := vm.exec(ins.Loop.Body); err != nil || returned {
			return ret, returned, err
		}
		if _, _, err := vm.exec(guard); err != nil {
			return Value{}, false, err
		}
	}
}

func (vm *VM) bindNative(name, key string, ret types.ConstType) error {
	fn, ok := vm.opts.Natives[key]
	if !ok {
		return vm.panicf(PanicMissingNative, "no host implementation for %q", key)
	}
	vm.funcs[name] = &Callable{Name: key, Ret: ret, Native: fn}
	return nil
}

func (vm *VM) load(name string) (Value, error) {
	if slot, ok := vm.resolve(name); ok {
		if slot.Tag == types.ConstInvalid {
			return Value{}, vm.panicf(PanicUseBeforeInit, "%q read before it was stored", name)
		}
		v := *slot
		v.place = &place{slot: slot}
		return v, nil
	}
	if fn, ok := vm.funcs[name]; ok {
		return Value{Tag: types.ConstFunc, Fn: fn}, nil
	}
	return Value{}, vm.panicf(PanicUnknownName, "%q is not bound", name)
}

func (vm *VM) loadMember(name string) error {
	parent, err := vm.pop()
	if err != nil {
		return err
	}
	switch parent.Tag {
	case types.ConstObject:
		if parent.Obj == nil {
			return vm.panicf(PanicTypeMismatch, "member %q of a nil object", name)
		}
		v, ok := parent.Obj.Fields[name]
		if !ok {
			return vm.panicf(PanicUnknownName, "object has no member %q", name)
		}
		v.place = &place{obj: parent.Obj, field: name}
		vm.push(v)
	case types.ConstList:
		if name != "len" {
			return vm.panicf(PanicUnknownName, "list has no member %q", name)
		}
		n := 0
		if parent.List != nil {
			n = len(parent.List.Elems)
		}
		vm.push(MakeInt(int64(n)))
	case types.ConstStr:
		if name != "len" {
			return vm.panicf(PanicUnknownName, "string has no member %q", name)
		}
		vm.push(MakeInt(int64(len(parent.Str))))
	default:
		return vm.panicf(PanicTypeMismatch, "member %q of %s", name, parent.Tag)
	}
	return nil
}

func (vm *VM) loadIndex() error {
	index, err := vm.pop()
	if err != nil {
		return err
	}
	parent, err := vm.pop()
	if err != nil {
		return err
	}
	if index.Tag != types.ConstInt {
		return vm.panicf(PanicTypeMismatch, "index is %s, want int", index.Tag)
	}
	i := index.Int
	switch parent.Tag {
	case types.ConstList:
		if parent.List == nil || i < 0 || i >= int64(len(parent.List.Elems)) {
			return vm.panicf(PanicOutOfBounds, "index %d out of range", i)
		}
		v := parent.List.Elems[i]
		v.place = &place{list: parent.List, index: int(i)}
		vm.push(v)
	case types.ConstStr:
		if i < 0 || i >= int64(len(parent.Str)) {
			return vm.panicf(PanicOutOfBounds, "index %d out of range", i)
		}
		vm.push(MakeStr(parent.Str[i : i+1]))
	default:
		return vm.panicf(PanicTypeMismatch, "cannot index %s", parent.Tag)
	}
	return nil
}

func (vm *VM) list(ins *ir.Instr) error {
	if ins.List == nil {
		return vm.panicf(PanicBadProgram, "list without items")
	}
	elems := make([]Value, 0, len(ins.List.Items))
	for _, item := range ins.List.Items {
		if _, _, err := vm.exec(item); err != nil {
			return err
		}
		v, err := vm.pop()
		if err != nil {
			return err
		}
		v.place = nil
		elems = append(elems, v)
	}
	vm.push(MakeList(elems...))
	return nil
}

// call pops the callee, then the arguments; the last argument is on top.
func (vm *VM) call(ins *ir.Instr) error {
	if ins.Call == nil {
		return vm.panicf(PanicBadProgram, "call without argument count")
	}
	callee, err := vm.pop()
	if err != nil {
		return err
	}
	if callee.Tag != types.ConstFunc || callee.Fn == nil {
		return vm.panicf(PanicTypeMismatch, "calling a %s value", callee.Tag)
	}
	argc := int(ins.Call.Argc)
	if argc > len(vm.stack) {
		return vm.panicf(PanicStackUnderflow, "call of %s needs %d arguments, stack has %d", callee.Fn.Name, argc, len(vm.stack))
	}
	args := make([]Value, argc)
	copy(args, vm.stack[len(vm.stack)-argc:])
	vm.stack = vm.stack[:len(vm.stack)-argc]
	for i := range args {
		args[i].place = nil
	}

	result, err := vm.invoke(callee.Fn, args)
	if err != nil {
		return err
	}
	switch ins.Type {
	case types.ConstVoid:
	case types.ConstDynamic:
		if result.Tag == types.ConstInvalid {
			result = Void()
		}
		vm.push(result)
	default:
		if result.Tag == types.ConstVoid || result.Tag == types.ConstInvalid {
			return vm.panicf(PanicTypeMismatch, "%s returned no value", callee.Fn.Name)
		}
		vm.push(result)
	}
	return nil
}

func (vm *VM) invoke(fn *Callable, args []Value) (Value, error) {
	if fn.Native != nil {
		v, err := fn.Native(args)
		if err != nil {
			return Value{}, vm.panicf(PanicMissingNative, "%s: %v", fn.Name, err)
		}
		return v, nil
	}
	if len(args) != len(fn.Params) {
		return Value{}, vm.panicf(PanicTypeMismatch, "%s takes %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	f := newFrame(fn.Name)
	for i, p := range fn.Params {
		f.alloc(p.Name, args[i])
	}
	f.base = len(vm.stack)
	vm.frames = append(vm.frames, f)
	ret, returned, err := vm.exec(fn.Body)
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.stack) > f.base {
		vm.stack = vm.stack[:f.base]
	}
	if err != nil {
		return Value{}, err
	}
	if !returned {
		return Void(), nil
	}
	return ret, nil
}

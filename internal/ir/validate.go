package ir

import (
	"errors"
	"fmt"
	"strconv"

	"stackc/internal/types"
)

// Validate checks structural invariants of a lowered instruction sequence and
// returns every violation joined together, or nil.
//
// Checked: op and tag validity, payload presence, that every Dealloc releases
// a live Alloc of the same name and tag, that If and Loop bodies release all
// the slots they allocate, that a Loop guard never reaches before the start
// of its sequence, that list items are non-empty and that Ret only appears
// inside a Def.
func Validate(code []Instr) error {
	v := &validator{}
	v.seq(code, "top", false, false)
	return errors.Join(v.errs...)
}

type slot struct {
	name string
	t    types.ConstType
}

type validator struct {
	errs []error
}

func (v *validator) failf(path, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("ir: %s: %s", path, fmt.Sprintf(format, args...)))
}

// seq validates one instruction list with its own set of live slots. When
// balanced is set the list must release everything it allocates.
func (v *validator) seq(code []Instr, path string, inDef, balanced bool) {
	var live []slot
	for i := range code {
		ins := &code[i]
		at := path + "[" + strconv.Itoa(i) + "]"
		if !ins.Op.IsValid() {
			v.failf(at, "invalid op %d", ins.Op)
			continue
		}
		switch ins.Op {
		case OpDef:
			v.needTag(at, ins)
			v.needName(at, ins)
			if ins.Def == nil {
				v.failf(at, "def without payload")
				continue
			}
			v.params(at, ins.Def.Params)
			v.seq(ins.Def.Body, at+".body", true, false)

		case OpExtern:
			v.needTag(at, ins)
			v.needName(at, ins)
			if ins.Extern == nil {
				v.failf(at, "extern without payload")
				continue
			}
			v.params(at, ins.Extern.Params)

		case OpImport:
			v.needTag(at, ins)
			v.needName(at, ins)
			if ins.Import == nil || ins.Import.Module == "" {
				v.failf(at, "import without module")
				continue
			}
			v.params(at, ins.Import.Params)

		case OpAlloc:
			v.needTag(at, ins)
			v.needName(at, ins)
			live = append(live, slot{name: ins.Name, t: ins.Type})

		case OpDealloc:
			v.needTag(at, ins)
			idx := -1
			for j := len(live) - 1; j >= 0; j-- {
				if live[j].name == ins.Name {
					idx = j
					break
				}
			}
			switch {
			case idx < 0:
				v.failf(at, "dealloc of %q without a live alloc", ins.Name)
			case live[idx].t != ins.Type:
				v.failf(at, "dealloc %s %q does not match alloc %s", ins.Type, ins.Name, live[idx].t)
			default:
				live = append(live[:idx], live[idx+1:]...)
			}

		case OpStore, OpLoad, OpLoadMember:
			v.needTag(at, ins)
			v.needName(at, ins)

		case OpLoadIndex, OpSet, OpAdd, OpSub, OpMul, OpDiv, OpMod:
			v.needTag(at, ins)

		case OpIf:
			if ins.If == nil {
				v.failf(at, "if without payload")
				continue
			}
			v.seq(ins.If.Then, at+".then", inDef, true)
			v.seq(ins.If.Else, at+".else", inDef, true)

		case OpLoop:
			if ins.Loop == nil {
				v.failf(at, "loop without payload")
				continue
			}
			if int64(ins.Loop.Guard) > int64(i) {
				v.failf(at, "loop guard %d reaches before the start of the sequence", ins.Loop.Guard)
			}
			v.seq(ins.Loop.Body, at+".body", inDef, true)

		case OpConst:
			v.needTag(at, ins)
			if ins.Const == nil {
				v.failf(at, "const without payload")
			}

		case OpList:
			v.needTag(at, ins)
			if ins.List == nil {
				v.failf(at, "list without payload")
				continue
			}
			for k, item := range ins.List.Items {
				itemPath := at + ".item" + strconv.Itoa(k)
				if len(item) == 0 {
					v.failf(itemPath, "empty list item")
					continue
				}
				v.seq(item, itemPath, inDef, true)
			}

		case OpCall:
			if ins.Call == nil {
				v.failf(at, "call without payload")
			}

		case OpRet:
			v.needTag(at, ins)
			if !inDef {
				v.failf(at, "ret outside of a function")
			}

		case OpConv:
			v.needTag(at, ins)
			if ins.Conv == nil || !ins.Conv.From.IsValid() {
				v.failf(at, "conv without a valid source tag")
			}
		}
	}
	if balanced && len(live) > 0 {
		names := make([]string, 0, len(live))
		for _, s := range live {
			names = append(names, s.name)
		}
		v.failf(path, "%d slot(s) still allocated at end of body: %v", len(live), names)
	}
}

func (v *validator) needTag(at string, ins *Instr) {
	if !ins.Type.IsValid() {
		v.failf(at, "%s has invalid type tag %d", ins.Op, ins.Type)
	}
}

func (v *validator) needName(at string, ins *Instr) {
	if ins.Name == "" {
		v.failf(at, "%s without a name", ins.Op)
	}
}

func (v *validator) params(at string, params []Param) {
	for i, p := range params {
		if p.Name == "" || !p.Type.IsValid() {
			v.failf(at, "param %d is malformed", i)
		}
	}
}

package vm

import (
	"slices"
	"strconv"
	"strings"

	"stackc/internal/ir"
	"stackc/internal/types"
)

// Native is a host function reachable through extern or import.
type Native func(args []Value) (Value, error)

// Callable is a function value: either lowered code or a host native.
type Callable struct {
	Name   string
	Params []ir.Param
	Ret    types.ConstType
	Body   []ir.Instr
	Native Native
}

// ListObject is the shared backing store of a list value.
type ListObject struct {
	Elems []Value
}

// Object is a record with named fields.
type Object struct {
	Fields map[string]Value
}

// Value is one operand. Tag selects the meaningful field.
type Value struct {
	Tag   types.ConstType
	Int   int64
	Float float64
	Str   string
	Bool  bool
	List  *ListObject
	Obj   *Object
	Fn    *Callable

	// place is set on values produced by loads so that Set can write back.
	place *place
}

type place struct {
	slot  *Value
	list  *ListObject
	index int
	obj   *Object
	field string
}

func (p *place) store(v Value) {
	v.place = nil
	switch {
	case p.slot != nil:
		*p.slot = v
	case p.list != nil:
		p.list.Elems[p.index] = v
	case p.obj != nil:
		p.obj.Fields[p.field] = v
	}
}

func MakeInt(v int64) Value     { return Value{Tag: types.ConstInt, Int: v} }
func MakeFloat(v float64) Value { return Value{Tag: types.ConstFloat, Float: v} }
func MakeStr(v string) Value    { return Value{Tag: types.ConstStr, Str: v} }
func MakeBool(v bool) Value     { return Value{Tag: types.ConstBool, Bool: v} }
func Void() Value               { return Value{Tag: types.ConstVoid} }

// MakeList builds a list value over elems.
func MakeList(elems ...Value) Value {
	return Value{Tag: types.ConstList, List: &ListObject{Elems: elems}}
}

// MakeObject builds an object value.
func MakeObject(fields map[string]Value) Value {
	return Value{Tag: types.ConstObject, Obj: &Object{Fields: fields}}
}

func (v Value) String() string {
	switch v.Tag {
	case types.ConstInt:
		return strconv.FormatInt(v.Int, 10)
	case types.ConstFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case types.ConstStr:
		return v.Str
	case types.ConstBool:
		return strconv.FormatBool(v.Bool)
	case types.ConstList:
		if v.List == nil {
			return "[]"
		}
		parts := make([]string, 0, len(v.List.Elems))
		for _, e := range v.List.Elems {
			parts = append(parts, e.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case types.ConstObject:
		if v.Obj == nil {
			return "{}"
		}
		keys := make([]string, 0, len(v.Obj.Fields))
		for k := range v.Obj.Fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+v.Obj.Fields[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case types.ConstFunc:
		if v.Fn == nil {
			return "<fn>"
		}
		return "<fn " + v.Fn.Name + ">"
	case types.ConstVoid:
		return "()"
	default:
		return "<" + v.Tag.String() + ">"
	}
}

// Equal compares values structurally. Ints and floats compare numerically.
func (v Value) Equal(o Value) bool {
	if a, b, ok := numericPair(v, o); ok {
		return a == b
	}
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case types.ConstInt:
		return v.Int == o.Int
	case types.ConstStr:
		return v.Str == o.Str
	case types.ConstBool:
		return v.Bool == o.Bool
	case types.ConstList:
		if v.List == nil || o.List == nil {
			return v.List == o.List
		}
		return slices.EqualFunc(v.List.Elems, o.List.Elems, Value.Equal)
	case types.ConstObject:
		return v.Obj == o.Obj
	case types.ConstFunc:
		return v.Fn == o.Fn
	case types.ConstVoid:
		return true
	default:
		return false
	}
}

// numericPair promotes a mixed int/float pair to floats. ok is false unless
// at least one side is a float and both are numeric.
func numericPair(a, b Value) (x, y float64, ok bool) {
	if a.Tag != types.ConstFloat && b.Tag != types.ConstFloat {
		return 0, 0, false
	}
	x, okA := asFloat(a)
	y, okB := asFloat(b)
	return x, y, okA && okB
}

func asFloat(v Value) (float64, bool) {
	switch v.Tag {
	case types.ConstInt:
		return float64(v.Int), true
	case types.ConstFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func fromIR(t types.ConstType, v ir.Value) Value {
	return Value{Tag: t, Int: v.Int, Float: v.Float, Str: v.Str, Bool: v.Bool}
}

package ir

import "stackc/internal/types"

func Def(ret types.ConstType, name string, params []Param, body []Instr) Instr {
	return Instr{Op: OpDef, Type: ret, Name: name, Def: &DefInstr{Params: params, Body: body}}
}

func Extern(ret types.ConstType, name string, params []Param) Instr {
	return Instr{Op: OpExtern, Type: ret, Name: name, Extern: &ExternInstr{Params: params}}
}

func Import(t types.ConstType, module, name string, params []Param) Instr {
	return Instr{Op: OpImport, Type: t, Name: name, Import: &ImportInstr{Module: module, Params: params}}
}

func Alloc(t types.ConstType, name string) Instr {
	return Instr{Op: OpAlloc, Type: t, Name: name}
}

func Dealloc(t types.ConstType, name string) Instr {
	return Instr{Op: OpDealloc, Type: t, Name: name}
}

func Store(t types.ConstType, name string) Instr {
	return Instr{Op: OpStore, Type: t, Name: name}
}

func Load(t types.ConstType, name string) Instr {
	return Instr{Op: OpLoad, Type: t, Name: name}
}

func LoadMember(t types.ConstType, name string) Instr {
	return Instr{Op: OpLoadMember, Type: t, Name: name}
}

func LoadIndex(t types.ConstType) Instr {
	return Instr{Op: OpLoadIndex, Type: t}
}

func Set(t types.ConstType) Instr {
	return Instr{Op: OpSet, Type: t}
}

// Arith builds one of the typed arithmetic instructions.
func Arith(op Op, t types.ConstType) Instr {
	return Instr{Op: op, Type: t}
}

// Cmp builds gt, ge, eq, and, or; all produce bool.
func Cmp(op Op) Instr {
	return Instr{Op: op, Type: types.ConstBool}
}

func If(t types.ConstType, then, els []Instr) Instr {
	return Instr{Op: OpIf, Type: t, If: &IfInstr{Then: then, Else: els}}
}

func Loop(body []Instr, guard uint32) Instr {
	return Instr{Op: OpLoop, Type: types.ConstVoid, Loop: &LoopInstr{Body: body, Guard: guard}}
}

func Const(t types.ConstType, v Value) Instr {
	return Instr{Op: OpConst, Type: t, Const: &ConstInstr{Value: v}}
}

func ConstInt(v int64) Instr     { return Const(types.ConstInt, Value{Int: v}) }
func ConstFloat(v float64) Instr { return Const(types.ConstFloat, Value{Float: v}) }
func ConstStr(v string) Instr    { return Const(types.ConstStr, Value{Str: v}) }
func ConstBool(v bool) Instr     { return Const(types.ConstBool, Value{Bool: v}) }

func List(t types.ConstType, items [][]Instr) Instr {
	return Instr{Op: OpList, Type: t, List: &ListInstr{Items: items}}
}

func Call(t types.ConstType, argc uint16) Instr {
	return Instr{Op: OpCall, Type: t, Call: &CallInstr{Argc: argc}}
}

func Ret(t types.ConstType) Instr {
	return Instr{Op: OpRet, Type: t}
}

func Conv(to, from types.ConstType) Instr {
	return Instr{Op: OpConv, Type: to, Conv: &ConvInstr{From: from}}
}

func Pop() Instr {
	return Instr{Op: OpPop}
}

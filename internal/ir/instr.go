package ir

import (
	"stackc/internal/types"
)

// Op enumerates instruction kinds. Values are part of the serialized IR;
// append only.
type Op uint8

const (
	OpInvalid Op = iota

	// Definitions
	OpDef
	OpExtern
	OpImport

	// Memory
	OpAlloc
	OpDealloc
	OpStore
	OpLoad
	OpLoadMember
	OpLoadIndex
	OpSet

	// Arithmetic and logic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpGt
	OpGe
	OpEq
	OpAnd
	OpOr

	// Control flow
	OpIf
	OpLoop

	// Stack management
	OpConst
	OpList
	OpCall
	OpRet
	OpConv
	OpPop

	opCount
)

var opNames = [...]string{
	OpInvalid:    "invalid",
	OpDef:        "def",
	OpExtern:     "extern",
	OpImport:     "import",
	OpAlloc:      "alloc",
	OpDealloc:    "dealloc",
	OpStore:      "store",
	OpLoad:       "load",
	OpLoadMember: "loadmember",
	OpLoadIndex:  "loadidx",
	OpSet:        "set",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpDiv:        "div",
	OpMod:        "mod",
	OpGt:         "gt",
	OpGe:         "ge",
	OpEq:         "eq",
	OpAnd:        "and",
	OpOr:         "or",
	OpIf:         "if",
	OpLoop:       "loop",
	OpConst:      "const",
	OpList:       "list",
	OpCall:       "call",
	OpRet:        "ret",
	OpConv:       "conv",
	OpPop:        "pop",
}

func (op Op) String() string {
	if op < opCount {
		return opNames[op]
	}
	return "invalid"
}

// IsValid reports whether op is a defined instruction kind.
func (op Op) IsValid() bool {
	return op > OpInvalid && op < opCount
}

// IsArith reports the typed arithmetic ops.
func (op Op) IsArith() bool {
	return op >= OpAdd && op <= OpMod
}

// Instr is one IR instruction. Type is the tag of the value the instruction
// produces (or, for memory ops, of the named slot). Composite instructions
// carry their payload in exactly one of the pointer fields.
type Instr struct {
	Op   Op              `msgpack:"op"`
	Type types.ConstType `msgpack:"t,omitempty"`
	// Name is the slot, member, function or imported symbol name.
	Name string `msgpack:"n,omitempty"`

	Const  *ConstInstr  `msgpack:"c,omitempty"`
	Def    *DefInstr    `msgpack:"def,omitempty"`
	Extern *ExternInstr `msgpack:"ext,omitempty"`
	Import *ImportInstr `msgpack:"imp,omitempty"`
	Conv   *ConvInstr   `msgpack:"conv,omitempty"`
	Call   *CallInstr   `msgpack:"call,omitempty"`
	If     *IfInstr     `msgpack:"if,omitempty"`
	Loop   *LoopInstr   `msgpack:"loop,omitempty"`
	List   *ListInstr   `msgpack:"list,omitempty"`
}

// Param is a named, tagged function parameter.
type Param struct {
	Name string          `msgpack:"n"`
	Type types.ConstType `msgpack:"t"`
}

// Value is a literal payload; which field is meaningful follows the
// instruction's Type.
type Value struct {
	Int   int64   `msgpack:"i,omitempty"`
	Float float64 `msgpack:"f,omitempty"`
	Str   string  `msgpack:"s,omitempty"`
	Bool  bool    `msgpack:"b,omitempty"`
}

// ConstInstr pushes a literal.
type ConstInstr struct {
	Value Value `msgpack:"v"`
}

// DefInstr defines a function. Instr.Type is its return tag.
type DefInstr struct {
	Params []Param `msgpack:"p,omitempty"`
	Body   []Instr `msgpack:"b,omitempty"`
}

// ExternInstr declares a function provided by the host.
type ExternInstr struct {
	Params []Param `msgpack:"p,omitempty"`
}

// ImportInstr binds Name from Module.
type ImportInstr struct {
	Module string  `msgpack:"m"`
	Params []Param `msgpack:"p,omitempty"`
}

// ConvInstr converts the top of stack from From to Instr.Type.
type ConvInstr struct {
	From types.ConstType `msgpack:"from"`
}

// CallInstr pops the callee, then Argc arguments.
type CallInstr struct {
	Argc uint16 `msgpack:"argc"`
}

// IfInstr pops a condition and runs one of its bodies.
type IfInstr struct {
	Then []Instr `msgpack:"then,omitempty"`
	Else []Instr `msgpack:"else,omitempty"`
}

// LoopInstr repeats Body. The Guard instructions immediately preceding the
// loop compute its condition: the consumer pops their result on entry and
// re-runs those same Guard instructions after every iteration.
type LoopInstr struct {
	Body  []Instr `msgpack:"body,omitempty"`
	Guard uint32  `msgpack:"guard"`
}

// ListInstr builds a list; each item keeps its own instruction group.
type ListInstr struct {
	Items [][]Instr `msgpack:"items,omitempty"`
}

package ast

import (
	"stackc/internal/source"
	"stackc/internal/types"
)

// NodeKind enumerates typed-tree node kinds produced by the checker.
type NodeKind uint8

const (
	// NodeInvalid marks a zero-valued node.
	NodeInvalid NodeKind = iota
	// NodeLiteral represents int, float, string and bool literals.
	NodeLiteral
	// NodeIdent represents a variable or function reference.
	NodeIdent
	// NodeImport represents `import module.name(params)`.
	NodeImport
	// NodeExtern represents an extern function declaration.
	NodeExtern
	// NodeFunc represents a function definition.
	NodeFunc
	// NodeBinary represents binary operators (+, -, <, ==, &&, ...).
	NodeBinary
	// NodeVarDecl represents `let name = value`.
	NodeVarDecl
	// NodeVarAssign represents `target = value`.
	NodeVarAssign
	// NodeList represents list literals ([a, b, c]).
	NodeList
	// NodeMember represents member access (expr.name).
	NodeMember
	// NodeIndex represents indexing (expr[index]).
	NodeIndex
	// NodeCall represents function calls.
	NodeCall
	// NodeReturn represents `return value`.
	NodeReturn
	// NodeAs represents a type conversion (expr as T).
	NodeAs
	// NodeDiscard represents an expression evaluated for side effects only.
	NodeDiscard
	// NodeIf represents if/else.
	NodeIf
	// NodeBlock represents a braced block.
	NodeBlock
	// NodeWhile represents a while loop.
	NodeWhile
	// NodePosInfo carries position metadata only.
	NodePosInfo
)

// String returns a human-readable name for the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeLiteral:
		return "Literal"
	case NodeIdent:
		return "Ident"
	case NodeImport:
		return "Import"
	case NodeExtern:
		return "Extern"
	case NodeFunc:
		return "Func"
	case NodeBinary:
		return "Binary"
	case NodeVarDecl:
		return "VarDecl"
	case NodeVarAssign:
		return "VarAssign"
	case NodeList:
		return "List"
	case NodeMember:
		return "Member"
	case NodeIndex:
		return "Index"
	case NodeCall:
		return "Call"
	case NodeReturn:
		return "Return"
	case NodeAs:
		return "As"
	case NodeDiscard:
		return "Discard"
	case NodeIf:
		return "If"
	case NodeBlock:
		return "Block"
	case NodeWhile:
		return "While"
	case NodePosInfo:
		return "PosInfo"
	default:
		return "Unknown"
	}
}

// KindByName resolves the String form back to a kind.
func KindByName(name string) (NodeKind, bool) {
	for k := NodeLiteral; k <= NodePosInfo; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return NodeInvalid, false
}

// Node is one element of the typed tree.
type Node struct {
	Kind NodeKind
	Type types.Type  // resolved by the checker
	Span source.Span // source location for diagnostics
	Data NodeData    // kind-specific payload
}

// NodeData is the interface for node-specific payloads.
type NodeData interface {
	nodeData()
}

// Ident is a name together with its resolved type.
type Ident struct {
	Name string
	Type types.Type
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
)

// Literal holds a literal value.
type Literal struct {
	Kind        LiteralKind
	IntValue    int64
	FloatValue  float64
	StringValue string
	BoolValue   bool
}

// LiteralData holds data for NodeLiteral.
type LiteralData struct {
	Value Literal
}

func (LiteralData) nodeData() {}

// IdentData holds data for NodeIdent.
type IdentData struct {
	Name string
}

func (IdentData) nodeData() {}

// ImportData holds data for NodeImport.
type ImportData struct {
	Module string
	Name   string
	Params []Ident
}

func (ImportData) nodeData() {}

// ExternData holds data for NodeExtern. Name.Type is the return type.
type ExternData struct {
	Name   Ident
	Params []Ident
}

func (ExternData) nodeData() {}

// FuncData holds data for NodeFunc.
type FuncData struct {
	Name   string
	Params []Ident
	Result types.Type
	Body   []*Node
}

func (FuncData) nodeData() {}

// BinaryData holds data for NodeBinary.
type BinaryData struct {
	Op    BinaryOp
	Left  *Node
	Right *Node
}

func (BinaryData) nodeData() {}

// VarDeclData holds data for NodeVarDecl.
type VarDeclData struct {
	Name  Ident
	Value *Node
}

func (VarDeclData) nodeData() {}

// VarAssignData holds data for NodeVarAssign.
type VarAssignData struct {
	Target *Node
	Value  *Node
}

func (VarAssignData) nodeData() {}

// ListData holds data for NodeList.
type ListData struct {
	Items []*Node
}

func (ListData) nodeData() {}

// MemberData holds data for NodeMember.
type MemberData struct {
	Parent *Node
	Name   string
}

func (MemberData) nodeData() {}

// IndexData holds data for NodeIndex.
type IndexData struct {
	Parent *Node
	Index  *Node
}

func (IndexData) nodeData() {}

// CallData holds data for NodeCall.
type CallData struct {
	Callee *Node
	Args   []*Node
}

func (CallData) nodeData() {}

// ReturnData holds data for NodeReturn.
type ReturnData struct {
	Value *Node
}

func (ReturnData) nodeData() {}

// AsData holds data for NodeAs. The target type is the node's own Type.
type AsData struct {
	Value *Node
}

func (AsData) nodeData() {}

// DiscardData holds data for NodeDiscard.
type DiscardData struct {
	Value *Node
}

func (DiscardData) nodeData() {}

// IfData holds data for NodeIf. HasElse distinguishes an absent else from
// an empty one.
type IfData struct {
	Cond    *Node
	Then    []*Node
	Else    []*Node
	HasElse bool
}

func (IfData) nodeData() {}

// BlockData holds data for NodeBlock.
type BlockData struct {
	Body []*Node
}

func (BlockData) nodeData() {}

// WhileData holds data for NodeWhile.
type WhileData struct {
	Cond *Node
	Body []*Node
}

func (WhileData) nodeData() {}

// PosInfoData holds data for NodePosInfo.
type PosInfoData struct {
	File string
	Line uint32
	Col  uint32
}

func (PosInfoData) nodeData() {}

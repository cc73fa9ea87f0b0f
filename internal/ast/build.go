package ast

import "stackc/internal/types"

// Constructors for hand-built trees (decoders and tests). Spans are left
// empty; callers that need positions set Node.Span afterwards.

func IntLit(v int64) *Node {
	return &Node{Kind: NodeLiteral, Type: types.Int, Data: LiteralData{Value: Literal{Kind: LiteralInt, IntValue: v}}}
}

func FloatLit(v float64) *Node {
	return &Node{Kind: NodeLiteral, Type: types.Float, Data: LiteralData{Value: Literal{Kind: LiteralFloat, FloatValue: v}}}
}

func StringLit(v string) *Node {
	return &Node{Kind: NodeLiteral, Type: types.String, Data: LiteralData{Value: Literal{Kind: LiteralString, StringValue: v}}}
}

func BoolLit(v bool) *Node {
	return &Node{Kind: NodeLiteral, Type: types.Bool, Data: LiteralData{Value: Literal{Kind: LiteralBool, BoolValue: v}}}
}

func Name(name string, t types.Type) *Node {
	return &Node{Kind: NodeIdent, Type: t, Data: IdentData{Name: name}}
}

func Binary(op BinaryOp, t types.Type, left, right *Node) *Node {
	return &Node{Kind: NodeBinary, Type: t, Data: BinaryData{Op: op, Left: left, Right: right}}
}

func VarDecl(name string, value *Node) *Node {
	t := types.Type{}
	if value != nil {
		t = value.Type
	}
	return &Node{Kind: NodeVarDecl, Type: types.Void, Data: VarDeclData{Name: Ident{Name: name, Type: t}, Value: value}}
}

func VarAssign(target, value *Node) *Node {
	return &Node{Kind: NodeVarAssign, Type: types.Void, Data: VarAssignData{Target: target, Value: value}}
}

func List(elem types.Type, items ...*Node) *Node {
	return &Node{Kind: NodeList, Type: types.MakeList(elem), Data: ListData{Items: items}}
}

func Member(t types.Type, parent *Node, name string) *Node {
	return &Node{Kind: NodeMember, Type: t, Data: MemberData{Parent: parent, Name: name}}
}

func Index(t types.Type, parent, index *Node) *Node {
	return &Node{Kind: NodeIndex, Type: t, Data: IndexData{Parent: parent, Index: index}}
}

func Call(t types.Type, callee *Node, args ...*Node) *Node {
	return &Node{Kind: NodeCall, Type: t, Data: CallData{Callee: callee, Args: args}}
}

func Return(value *Node) *Node {
	t := types.Void
	if value != nil {
		t = value.Type
	}
	return &Node{Kind: NodeReturn, Type: t, Data: ReturnData{Value: value}}
}

func As(target types.Type, value *Node) *Node {
	return &Node{Kind: NodeAs, Type: target, Data: AsData{Value: value}}
}

func Discard(value *Node) *Node {
	return &Node{Kind: NodeDiscard, Type: types.Void, Data: DiscardData{Value: value}}
}

func If(cond *Node, then []*Node, els []*Node) *Node {
	return &Node{Kind: NodeIf, Type: types.Void, Data: IfData{Cond: cond, Then: then, Else: els, HasElse: els != nil}}
}

func Block(body ...*Node) *Node {
	return &Node{Kind: NodeBlock, Type: types.Void, Data: BlockData{Body: body}}
}

func While(cond *Node, body ...*Node) *Node {
	return &Node{Kind: NodeWhile, Type: types.Void, Data: WhileData{Cond: cond, Body: body}}
}

func Func(name string, params []Ident, result types.Type, body ...*Node) *Node {
	pts := make([]types.Type, 0, len(params))
	for _, p := range params {
		pts = append(pts, p.Type)
	}
	return &Node{
		Kind: NodeFunc,
		Type: types.MakeFunc(pts, result),
		Data: FuncData{Name: name, Params: params, Result: result, Body: body},
	}
}

func Extern(name string, params []Ident, result types.Type) *Node {
	return &Node{Kind: NodeExtern, Type: result, Data: ExternData{Name: Ident{Name: name, Type: result}, Params: params}}
}

func Import(t types.Type, module, name string, params []Ident) *Node {
	return &Node{Kind: NodeImport, Type: t, Data: ImportData{Module: module, Name: name, Params: params}}
}

func PosInfo(file string, line, col uint32) *Node {
	return &Node{Kind: NodePosInfo, Type: types.Void, Data: PosInfoData{File: file, Line: line, Col: col}}
}

package lower

import (
	"fortio.org/safecast"

	"stackc/internal/ast"
	"stackc/internal/diag"
	"stackc/internal/ir"
	"stackc/internal/symbols"
)

func (e *Engine) lowerLiteral(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.LiteralData)
	if !ok {
		return nil, payloadError(n)
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	lit := data.Value
	var v ir.Value
	switch lit.Kind {
	case ast.LiteralInt:
		v.Int = lit.IntValue
	case ast.LiteralFloat:
		v.Float = lit.FloatValue
	case ast.LiteralString:
		v.Str = lit.StringValue
	case ast.LiteralBool:
		v.Bool = lit.BoolValue
	default:
		return nil, errorf(diag.LowUnsupportedConstruct, n.Span, "literal kind %d", lit.Kind)
	}
	return []ir.Instr{ir.Const(c, v)}, nil
}

func (e *Engine) lowerIdent(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.IdentData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Name == "" {
		return nil, errorf(diag.LowMalformedNode, n.Span, "identifier without a name")
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	return []ir.Instr{ir.Load(c, symbols.Normalize(data.Name))}, nil
}

// lowerBinary lowers the right operand before the left one and emits the
// groups in that order, so the left operand ends up on top of the stack.
// For < and <= the groups are swapped and the operator flipped, which makes
// a < b lower exactly like b > a.
func (e *Engine) lowerBinary(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.BinaryData)
	if !ok {
		return nil, payloadError(n)
	}
	op, err := e.binaryOp(n, data.Op)
	if err != nil {
		return nil, err
	}

	right, err := e.lowerNode(data.Right)
	if err != nil {
		return nil, err
	}
	left, err := e.lowerNode(data.Left)
	if err != nil {
		return nil, err
	}

	first, second := right, left
	if data.Op.IsLessClass() {
		first, second = left, right
	}
	out := make([]ir.Instr, 0, len(first)+len(second)+1)
	out = append(out, first...)
	out = append(out, second...)
	return append(out, op), nil
}

func (e *Engine) binaryOp(n *ast.Node, op ast.BinaryOp) (ir.Instr, error) {
	switch op {
	case ast.BinaryAdd, ast.BinarySub, ast.BinaryMul, ast.BinaryDiv, ast.BinaryMod:
		c, err := tag(n.Type, n.Span)
		if err != nil {
			return ir.Instr{}, err
		}
		return ir.Arith(arithOps[op], c), nil
	case ast.BinaryGreater, ast.BinaryLess:
		return ir.Cmp(ir.OpGt), nil
	case ast.BinaryGreaterEq, ast.BinaryLessEq:
		return ir.Cmp(ir.OpGe), nil
	case ast.BinaryEq:
		return ir.Cmp(ir.OpEq), nil
	case ast.BinaryLogicalAnd:
		return ir.Cmp(ir.OpAnd), nil
	case ast.BinaryLogicalOr:
		return ir.Cmp(ir.OpOr), nil
	default:
		return ir.Instr{}, errorf(diag.LowUnknownOperator, n.Span, "binary operator %s", op)
	}
}

var arithOps = map[ast.BinaryOp]ir.Op{
	ast.BinaryAdd: ir.OpAdd,
	ast.BinarySub: ir.OpSub,
	ast.BinaryMul: ir.OpMul,
	ast.BinaryDiv: ir.OpDiv,
	ast.BinaryMod: ir.OpMod,
}

// lowerList keeps every item in its own group.
func (e *Engine) lowerList(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.ListData)
	if !ok {
		return nil, payloadError(n)
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	items := make([][]ir.Instr, 0, len(data.Items))
	for _, item := range data.Items {
		code, err := e.lowerNode(item)
		if err != nil {
			return nil, err
		}
		items = append(items, code)
	}
	return []ir.Instr{ir.List(c, items)}, nil
}

func (e *Engine) lowerMember(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.MemberData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Name == "" {
		return nil, errorf(diag.LowMalformedNode, n.Span, "member access without a name")
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	parent, err := e.lowerNode(data.Parent)
	if err != nil {
		return nil, err
	}
	return append(parent, ir.LoadMember(c, data.Name)), nil
}

func (e *Engine) lowerIndex(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.IndexData)
	if !ok {
		return nil, payloadError(n)
	}
	// LoadIndex carries the element type it leaves on the stack.
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	parent, err := e.lowerNode(data.Parent)
	if err != nil {
		return nil, err
	}
	index, err := e.lowerNode(data.Index)
	if err != nil {
		return nil, err
	}
	out := append(parent, index...)
	return append(out, ir.LoadIndex(c)), nil
}

// lowerCall stages the arguments in source order, then the callee.
func (e *Engine) lowerCall(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.CallData)
	if !ok {
		return nil, payloadError(n)
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	argc, err := safecast.Conv[uint16](len(data.Args))
	if err != nil {
		return nil, wrapf(diag.LowArgCountOverflow, n.Span, err, "%d call arguments", len(data.Args))
	}
	var out []ir.Instr
	for _, arg := range data.Args {
		code, err := e.lowerNode(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	callee, err := e.lowerNode(data.Callee)
	if err != nil {
		return nil, err
	}
	out = append(out, callee...)
	return append(out, ir.Call(c, argc)), nil
}

func (e *Engine) lowerAs(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.AsData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Value == nil {
		return nil, errorf(diag.LowMalformedNode, n.Span, "conversion without an operand")
	}
	to, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	from, err := tag(data.Value.Type, data.Value.Span)
	if err != nil {
		return nil, err
	}
	inner, err := e.lowerNode(data.Value)
	if err != nil {
		return nil, err
	}
	return append(inner, ir.Conv(to, from)), nil
}

// lowerDiscard drops the value of an expression statement. Void expressions
// leave nothing on the stack, so nothing is popped.
func (e *Engine) lowerDiscard(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.DiscardData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Value == nil {
		return nil, errorf(diag.LowMalformedNode, n.Span, "discard without an operand")
	}
	inner, err := e.lowerNode(data.Value)
	if err != nil {
		return nil, err
	}
	if data.Value.Type.IsVoid() {
		return inner, nil
	}
	return append(inner, ir.Pop()), nil
}

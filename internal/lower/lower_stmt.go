package lower

import (
	"errors"

	"fortio.org/safecast"

	"stackc/internal/ast"
	"stackc/internal/diag"
	"stackc/internal/ir"
	"stackc/internal/symbols"
	"stackc/internal/types"
)

// lowerVarDecl allocates the slot before the initializer runs, so the new
// binding exists even when the initializer mentions a shadowed outer name.
func (e *Engine) lowerVarDecl(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.VarDeclData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Name.Name == "" || data.Value == nil {
		return nil, errorf(diag.LowMalformedNode, n.Span, "variable declaration needs a name and an initializer")
	}
	declared := data.Name.Type
	if declared.Kind == types.KindInvalid {
		declared = data.Value.Type
	}
	c, err := tag(declared, n.Span)
	if err != nil {
		return nil, err
	}

	name := symbols.Normalize(data.Name.Name)
	sym := symbols.Symbol{
		Name:     name,
		Kind:     symbols.SymbolLet,
		Type:     declared,
		Expected: declared,
		Span:     n.Span,
	}
	if lit, isLit := data.Value.Data.(ast.LiteralData); isLit && data.Value.Kind == ast.NodeLiteral {
		value := lit.Value
		sym.RefersToConst = true
		sym.Value = &value
	}

	out := []ir.Instr{ir.Alloc(c, name)}
	if err := e.env.Add(sym); err != nil {
		return nil, redeclared(n, err)
	}
	initCode, err := e.lowerNode(data.Value)
	if err != nil {
		return nil, err
	}
	out = append(out, initCode...)
	return append(out, ir.Store(c, name)), nil
}

func (e *Engine) lowerVarAssign(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.VarAssignData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Value == nil {
		return nil, errorf(diag.LowMalformedNode, n.Span, "assignment without a value")
	}
	target, err := e.lowerNode(data.Target)
	if err != nil {
		return nil, err
	}
	value, err := e.lowerNode(data.Value)
	if err != nil {
		return nil, err
	}
	c, err := tag(data.Value.Type, data.Value.Span)
	if err != nil {
		return nil, err
	}
	out := append(target, value...)
	return append(out, ir.Set(c)), nil
}

func (e *Engine) lowerReturn(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.ReturnData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Value == nil {
		return []ir.Instr{ir.Ret(types.ConstVoid)}, nil
	}
	inner, err := e.lowerNode(data.Value)
	if err != nil {
		return nil, err
	}
	c, err := tag(data.Value.Type, data.Value.Span)
	if err != nil {
		return nil, err
	}
	return append(inner, ir.Ret(c)), nil
}

func (e *Engine) lowerIf(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.IfData)
	if !ok {
		return nil, payloadError(n)
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	cond, err := e.lowerNode(data.Cond)
	if err != nil {
		return nil, err
	}
	then, err := e.lowerScoped(data.Then)
	if err != nil {
		return nil, err
	}
	els := []ir.Instr{}
	if data.HasElse || len(data.Else) > 0 {
		els, err = e.lowerScoped(data.Else)
		if err != nil {
			return nil, err
		}
	}
	return append(cond, ir.If(c, then, els)), nil
}

func (e *Engine) lowerBlock(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.BlockData)
	if !ok {
		return nil, payloadError(n)
	}
	return e.lowerScoped(data.Body)
}

// lowerWhile emits the condition once, ahead of the loop; Loop.Guard records
// its length so the consumer can re-run it after every iteration.
func (e *Engine) lowerWhile(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.WhileData)
	if !ok {
		return nil, payloadError(n)
	}
	cond, err := e.lowerNode(data.Cond)
	if err != nil {
		return nil, err
	}
	guard, err := safecast.Conv[uint32](len(cond))
	if err != nil {
		return nil, wrapf(diag.LowMalformedNode, n.Span, err, "loop condition of %d instructions", len(cond))
	}

	id := e.env.Enter(symbols.ScopeBlock)
	body, err := e.lowerSeq(data.Body)
	if err == nil {
		body, err = e.deallocScope(body)
	}
	if err != nil {
		e.env.Exit(id)
		return nil, err
	}
	loop := ir.Loop(body, guard)
	e.env.Exit(id)
	return append(cond, loop), nil
}

// lowerScoped lowers body inside a fresh block scope and releases every
// symbol the scope gained, in declaration order, before closing it.
func (e *Engine) lowerScoped(body []*ast.Node) ([]ir.Instr, error) {
	id := e.env.Enter(symbols.ScopeBlock)
	code, err := e.lowerSeq(body)
	if err == nil {
		code, err = e.deallocScope(code)
	}
	e.env.Exit(id)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// deallocScope appends one Dealloc per symbol of the innermost scope.
func (e *Engine) deallocScope(code []ir.Instr) ([]ir.Instr, error) {
	for _, sym := range e.env.Symbols() {
		c, err := tag(sym.Type, sym.Span)
		if err != nil {
			return nil, err
		}
		code = append(code, ir.Dealloc(c, sym.Name))
	}
	return code, nil
}

func redeclared(n *ast.Node, err error) error {
	if errors.Is(err, symbols.ErrRedeclared) {
		return wrapf(diag.LowRedeclared, n.Span, err, "%s", n.Kind)
	}
	return wrapf(diag.LowMalformedNode, n.Span, err, "%s", n.Kind)
}

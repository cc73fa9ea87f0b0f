package lower

import (
	"stackc/internal/ast"
	"stackc/internal/diag"
	"stackc/internal/ir"
	"stackc/internal/symbols"
	"stackc/internal/trace"
	"stackc/internal/types"
)

func (e *Engine) lowerImport(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.ImportData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Module == "" || data.Name == "" {
		return nil, errorf(diag.LowMalformedNode, n.Span, "import needs a module and a name")
	}
	c, err := tag(n.Type, n.Span)
	if err != nil {
		return nil, err
	}
	ps, err := params(data.Params, n.Span)
	if err != nil {
		return nil, err
	}
	return []ir.Instr{ir.Import(c, data.Module, data.Name, ps)}, nil
}

func (e *Engine) lowerExtern(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.ExternData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Name.Name == "" {
		return nil, errorf(diag.LowMalformedNode, n.Span, "extern without a name")
	}
	ret, err := tag(data.Name.Type, n.Span)
	if err != nil {
		return nil, err
	}
	ps, err := params(data.Params, n.Span)
	if err != nil {
		return nil, err
	}
	return []ir.Instr{ir.Extern(ret, data.Name.Name, ps)}, nil
}

// lowerFunc binds the parameters, lowers the body in order, reconciles the
// return tags and wraps everything in one Def.
func (e *Engine) lowerFunc(n *ast.Node) ([]ir.Instr, error) {
	data, ok := n.Data.(ast.FuncData)
	if !ok {
		return nil, payloadError(n)
	}
	if data.Name == "" {
		return nil, errorf(diag.LowMalformedNode, n.Span, "function without a name")
	}
	ret, err := tag(data.Result, n.Span)
	if err != nil {
		return nil, err
	}
	ps, err := params(data.Params, n.Span)
	if err != nil {
		return nil, err
	}

	var body []ir.Instr
	switch e.opts.ParamScope {
	case ParamScopeCaller:
		body, err = e.lowerFuncBody(n, data)
	default:
		id := e.env.Enter(symbols.ScopeFunction)
		body, err = e.lowerFuncBody(n, data)
		e.env.Exit(id)
	}
	if err != nil {
		return nil, err
	}

	if inferred, has := ir.Reconcile(body); has && inferred == types.ConstDynamic {
		if e.tracer.Enabled() {
			trace.Point(e.tracer, trace.ScopeNode, "lower.widen", data.Name+": "+ret.String()+" -> dyn", e.opts.ParentSpan)
		}
		ret = types.ConstDynamic
	}
	return []ir.Instr{ir.Def(ret, data.Name, ps, body)}, nil
}

// lowerFuncBody registers the parameters in the innermost scope and lowers
// the statements.
func (e *Engine) lowerFuncBody(n *ast.Node, data ast.FuncData) ([]ir.Instr, error) {
	for _, p := range data.Params {
		if p.Name == "" {
			return nil, errorf(diag.LowMalformedNode, n.Span, "function %s: unnamed parameter", data.Name)
		}
		sym := symbols.Symbol{
			Name:     p.Name,
			Kind:     symbols.SymbolParam,
			Type:     p.Type,
			Expected: p.Type,
			Span:     n.Span,
		}
		if err := e.env.Add(sym); err != nil {
			return nil, redeclared(n, err)
		}
	}
	return e.lowerSeq(data.Body)
}

package lower

import (
	"fmt"

	"stackc/internal/ast"
	"stackc/internal/diag"
	"stackc/internal/ir"
	"stackc/internal/source"
	"stackc/internal/symbols"
	"stackc/internal/trace"
	"stackc/internal/types"
)

// ParamScope selects where function parameters are bound.
type ParamScope uint8

const (
	// ParamScopeFunction opens a dedicated function scope for parameters and
	// body locals. The scope is closed after the body without emitting
	// deallocations: the callee frame is discarded on return.
	ParamScopeFunction ParamScope = iota
	// ParamScopeCaller binds parameters directly into the scope that is open
	// at the definition site. Two sibling functions sharing a parameter name
	// then collide.
	ParamScopeCaller
)

func (p ParamScope) String() string {
	switch p {
	case ParamScopeFunction:
		return "function"
	case ParamScopeCaller:
		return "caller"
	default:
		return fmt.Sprintf("ParamScope(%d)", p)
	}
}

// ParseParamScope accepts "function" (or "") and "caller".
func ParseParamScope(s string) (ParamScope, error) {
	switch s {
	case "", "function":
		return ParamScopeFunction, nil
	case "caller":
		return ParamScopeCaller, nil
	default:
		return ParamScopeFunction, fmt.Errorf("lower: unknown param scope %q (want function or caller)", s)
	}
}

// Options configures an Engine.
type Options struct {
	ParamScope ParamScope
	// Tracer receives one point event per lowered node at trace.ScopeNode.
	Tracer trace.Tracer
	// ParentSpan links node events to the caller's span.
	ParentSpan uint64
}

// Engine lowers typed nodes into IR. It mutates its Env while walking and
// must not be shared between goroutines.
type Engine struct {
	env    *symbols.Env
	opts   Options
	tracer trace.Tracer
}

// New returns an engine over env. A nil env gets a fresh one.
func New(env *symbols.Env, opts Options) *Engine {
	if env == nil {
		env = symbols.NewEnv()
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	return &Engine{env: env, opts: opts, tracer: tr}
}

// Env exposes the environment the engine mutates.
func (e *Engine) Env() *symbols.Env {
	return e.env
}

// Lower transforms one node into an instruction sequence. On failure no
// instructions are returned and the error is a *Error.
func (e *Engine) Lower(n *ast.Node) ([]ir.Instr, error) {
	return e.lowerNode(n)
}

// LowerAll lowers a whole program in order and concatenates the results.
// The first failing top-level node aborts the program.
func (e *Engine) LowerAll(nodes []*ast.Node) ([]ir.Instr, error) {
	var out []ir.Instr
	for _, n := range nodes {
		code, err := e.lowerNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	return out, nil
}

func (e *Engine) lowerNode(n *ast.Node) ([]ir.Instr, error) {
	if n == nil {
		return nil, errorf(diag.LowMalformedNode, source.Span{}, "nil node")
	}
	if e.tracer.Enabled() {
		trace.Point(e.tracer, trace.ScopeNode, "lower."+n.Kind.String(), n.Span.String(), e.opts.ParentSpan)
	}

	switch n.Kind {
	case ast.NodeLiteral:
		return e.lowerLiteral(n)
	case ast.NodeIdent:
		return e.lowerIdent(n)
	case ast.NodeImport:
		return e.lowerImport(n)
	case ast.NodeExtern:
		return e.lowerExtern(n)
	case ast.NodeFunc:
		return e.lowerFunc(n)
	case ast.NodeBinary:
		return e.lowerBinary(n)
	case ast.NodeVarDecl:
		return e.lowerVarDecl(n)
	case ast.NodeVarAssign:
		return e.lowerVarAssign(n)
	case ast.NodeList:
		return e.lowerList(n)
	case ast.NodeMember:
		return e.lowerMember(n)
	case ast.NodeIndex:
		return e.lowerIndex(n)
	case ast.NodeCall:
		return e.lowerCall(n)
	case ast.NodeReturn:
		return e.lowerReturn(n)
	case ast.NodeAs:
		return e.lowerAs(n)
	case ast.NodeDiscard:
		return e.lowerDiscard(n)
	case ast.NodeIf:
		return e.lowerIf(n)
	case ast.NodeBlock:
		return e.lowerBlock(n)
	case ast.NodeWhile:
		return e.lowerWhile(n)
	case ast.NodePosInfo:
		return []ir.Instr{}, nil
	default:
		return nil, errorf(diag.LowUnsupportedConstruct, n.Span, "node kind %s", n.Kind)
	}
}

// lowerSeq lowers nodes in order into one flat sequence.
func (e *Engine) lowerSeq(nodes []*ast.Node) ([]ir.Instr, error) {
	out := make([]ir.Instr, 0, len(nodes))
	for _, n := range nodes {
		code, err := e.lowerNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, code...)
	}
	return out, nil
}

// tag maps a source type to its IR tag.
func tag(t types.Type, span source.Span) (types.ConstType, error) {
	c, err := types.ConstOf(t)
	if err != nil {
		return types.ConstInvalid, wrapf(diag.LowUnmappedType, span, err, "type %s", t)
	}
	return c, nil
}

func params(idents []ast.Ident, span source.Span) ([]ir.Param, error) {
	out := make([]ir.Param, 0, len(idents))
	for _, id := range idents {
		c, err := tag(id.Type, span)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.Param{Name: symbols.Normalize(id.Name), Type: c})
	}
	return out, nil
}

func payloadError(n *ast.Node) error {
	return errorf(diag.LowUnsupportedConstruct, n.Span, "%s: unexpected payload %T", n.Kind, n.Data)
}

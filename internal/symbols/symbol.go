package symbols

import (
	"stackc/internal/ast"
	"stackc/internal/source"
	"stackc/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolLet
	SymbolParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "param"
	default:
		return "invalid"
	}
}

// Symbol is a named binding registered while lowering.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type types.Type
	// RefersToConst is set when the binding was initialised from a literal;
	// Value then holds that literal.
	RefersToConst bool
	Value         *ast.Literal
	// Expected is the type the binding was declared with.
	Expected types.Type
	Span     source.Span
}

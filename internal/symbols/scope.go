package symbols

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/unicode/norm"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeUnit               // root scope of one compilation unit
	ScopeFunction           // function parameters and body
	ScopeBlock              // block, if-branch or while body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUnit:
		return "unit"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// ScopeID is the depth-stamped handle returned by Enter. It must be passed
// back to Exit so that mismatched pairs are caught.
type ScopeID struct {
	depth int
	seq   uint64
}

// ErrRedeclared reports a second declaration of a name within one scope.
var ErrRedeclared = errors.New("name already declared in this scope")

// Scope is one frame of the environment: a lookup index plus the symbols in
// declaration order.
type Scope struct {
	Kind      ScopeKind
	NameIndex map[string]int
	Symbols   []Symbol
	seq       uint64
}

// Env is a stack of scopes. The bottom scope is never closed.
type Env struct {
	scopes  []*Scope
	nextSeq uint64
}

// NewEnv creates an environment with one open unit scope.
func NewEnv() *Env {
	e := &Env{}
	e.push(ScopeUnit)
	return e
}

func (e *Env) push(kind ScopeKind) *Scope {
	e.nextSeq++
	s := &Scope{Kind: kind, NameIndex: make(map[string]int), seq: e.nextSeq}
	e.scopes = append(e.scopes, s)
	return s
}

// Enter opens a nested scope whose lookups fall back to the enclosing one.
func (e *Env) Enter(kind ScopeKind) ScopeID {
	s := e.push(kind)
	return ScopeID{depth: len(e.scopes), seq: s.seq}
}

// Exit closes the innermost scope and discards its symbols. Exiting anything
// other than the innermost scope means the lowering recursion has lost track
// of its scopes; nothing emitted afterwards could be trusted, so it panics.
func (e *Env) Exit(id ScopeID) {
	if len(e.scopes) <= 1 {
		panic(fmt.Sprintf("symbols: exit of scope depth %d with only the unit scope open", id.depth))
	}
	top := e.scopes[len(e.scopes)-1]
	if id.depth != len(e.scopes) || id.seq != top.seq {
		panic(fmt.Sprintf("symbols: unbalanced scope exit: closing depth %d (seq %d), innermost is depth %d (seq %d)",
			id.depth, id.seq, len(e.scopes), top.seq))
	}
	e.scopes[len(e.scopes)-1] = nil
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// Depth returns the number of open scopes, including the unit scope.
func (e *Env) Depth() int {
	return len(e.scopes)
}

// Current returns the innermost scope.
func (e *Env) Current() *Scope {
	return e.scopes[len(e.scopes)-1]
}

// Add registers sym in the innermost scope. Redeclaring a name in the same
// scope fails; shadowing a name from an enclosing scope is allowed.
func (e *Env) Add(sym Symbol) error {
	sym.Name = Normalize(sym.Name)
	cur := e.Current()
	if _, exists := cur.NameIndex[sym.Name]; exists {
		return fmt.Errorf("%w: %q", ErrRedeclared, sym.Name)
	}
	cur.NameIndex[sym.Name] = len(cur.Symbols)
	cur.Symbols = append(cur.Symbols, sym)
	return nil
}

// Lookup resolves name walking outward from the innermost scope.
func (e *Env) Lookup(name string) (*Symbol, bool) {
	name = Normalize(name)
	for i := len(e.scopes) - 1; i >= 0; i-- {
		s := e.scopes[i]
		if idx, ok := s.NameIndex[name]; ok {
			return &s.Symbols[idx], true
		}
	}
	return nil, false
}

// LookupLocal resolves name in the innermost scope only.
func (e *Env) LookupLocal(name string) (*Symbol, bool) {
	cur := e.Current()
	if idx, ok := cur.NameIndex[Normalize(name)]; ok {
		return &cur.Symbols[idx], true
	}
	return nil, false
}

// Symbols returns a copy of the innermost scope's symbols in declaration
// order.
func (e *Env) Symbols() []Symbol {
	return slices.Clone(e.Current().Symbols)
}

// Normalize returns the NFC form under which names are stored and looked up.
func Normalize(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

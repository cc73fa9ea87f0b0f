package symbols

import (
	"errors"
	"strings"
	"testing"

	"stackc/internal/types"
)

func TestEnvShadowingAcrossScopes(t *testing.T) {
	env := NewEnv()
	if err := env.Add(Symbol{Name: "x", Kind: SymbolLet, Type: types.Int}); err != nil {
		t.Fatalf("add outer: %v", err)
	}
	id := env.Enter(ScopeBlock)
	if err := env.Add(Symbol{Name: "x", Kind: SymbolLet, Type: types.Float}); err != nil {
		t.Fatalf("shadowing in nested scope must be legal: %v", err)
	}
	sym, ok := env.Lookup("x")
	if !ok || !sym.Type.Equal(types.Float) {
		t.Fatalf("expected inner x: float, got %+v", sym)
	}
	env.Exit(id)
	sym, ok = env.Lookup("x")
	if !ok || !sym.Type.Equal(types.Int) {
		t.Fatalf("expected outer x: int after exit, got %+v", sym)
	}
}

func TestEnvRejectsRedeclarationInSameScope(t *testing.T) {
	env := NewEnv()
	if err := env.Add(Symbol{Name: "a", Type: types.Int}); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := env.Add(Symbol{Name: "a", Type: types.Float})
	if !errors.Is(err, ErrRedeclared) {
		t.Fatalf("expected ErrRedeclared, got %v", err)
	}
	if got := len(env.Symbols()); got != 1 {
		t.Fatalf("rejected symbol must not be registered, have %d", got)
	}
}

func TestEnvSymbolsInDeclarationOrder(t *testing.T) {
	env := NewEnv()
	id := env.Enter(ScopeBlock)
	names := []string{"zeta", "alpha", "mid", "beta", "omega", "a1", "a0"}
	for _, n := range names {
		if err := env.Add(Symbol{Name: n, Type: types.Int}); err != nil {
			t.Fatalf("add %s: %v", n, err)
		}
	}
	// Repeat to make accidental map ordering visible.
	for range 20 {
		got := env.Symbols()
		for i := range names {
			if got[i].Name != names[i] {
				t.Fatalf("symbol %d = %s, want %s", i, got[i].Name, names[i])
			}
		}
	}
	env.Exit(id)
	if env.Depth() != 1 {
		t.Fatalf("depth after exit = %d", env.Depth())
	}
}

func TestEnvLookupIsNFCNormalized(t *testing.T) {
	env := NewEnv()
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	if err := env.Add(Symbol{Name: decomposed, Type: types.String}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, ok := env.Lookup(composed); !ok {
		t.Fatalf("composed spelling should resolve the decomposed declaration")
	}
	if err := env.Add(Symbol{Name: composed, Type: types.String}); !errors.Is(err, ErrRedeclared) {
		t.Fatalf("equivalent spellings must collide, got %v", err)
	}
}

func TestEnvUnbalancedExitPanics(t *testing.T) {
	env := NewEnv()
	outer := env.Enter(ScopeBlock)
	_ = env.Enter(ScopeBlock)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic on out-of-order exit")
		}
		if msg, _ := r.(string); !strings.Contains(msg, "unbalanced") {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	env.Exit(outer)
}

func TestEnvExitOfUnitScopePanics(t *testing.T) {
	env := NewEnv()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when closing the unit scope")
		}
	}()
	env.Exit(ScopeID{depth: 1, seq: 1})
}

func TestEnvStaleScopeIDPanics(t *testing.T) {
	env := NewEnv()
	first := env.Enter(ScopeBlock)
	env.Exit(first)
	_ = env.Enter(ScopeBlock) // same depth, new scope

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for a stale scope id")
		}
	}()
	env.Exit(first)
}

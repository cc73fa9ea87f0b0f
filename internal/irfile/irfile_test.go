package irfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"stackc/internal/ast"
	"stackc/internal/ir"
	"stackc/internal/lower"
	"stackc/internal/types"
)

func lowered(t *testing.T) []ir.Instr {
	t.Helper()
	n := ast.Name("n", types.Int)
	prog := []*ast.Node{
		ast.Func("clamp", []ast.Ident{{Name: "n", Type: types.Int}}, types.Int,
			ast.If(ast.Binary(ast.BinaryGreater, types.Bool, n, ast.IntLit(10)),
				[]*ast.Node{ast.Return(ast.IntLit(10))},
				[]*ast.Node{ast.VarDecl("half", ast.FloatLit(0.5)), ast.Return(ast.As(types.Float, n))},
			),
			ast.Return(n),
		),
		ast.VarDecl("xs", ast.List(types.String, ast.StringLit("a"), ast.StringLit("b"))),
		ast.While(ast.BoolLit(false), ast.Discard(ast.IntLit(1))),
	}
	code, err := lower.New(nil, lower.Options{}).LowerAll(prog)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return code
}

func TestWriteReadRoundTrip(t *testing.T) {
	code := lowered(t)
	unit, err := NewUnit("main", code)
	if err != nil {
		t.Fatalf("unit: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "main.sir")
	if err := Write(path, []Unit{unit}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(f.Units) != 1 || f.Units[0].Name != "main" {
		t.Fatalf("unexpected units: %+v", f.Units)
	}
	if got, want := ir.Format(f.Units[0].Code), ir.Format(code); got != want {
		t.Fatalf("round trip changed the code:\n--- got\n%s--- want\n%s", got, want)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestCountIncludesNestedBodies(t *testing.T) {
	code := []ir.Instr{
		ir.ConstBool(true),
		ir.If(types.ConstVoid, []ir.Instr{ir.ConstInt(1), ir.Pop()}, []ir.Instr{ir.ConstInt(2), ir.Pop()}),
		ir.List(types.ConstList, [][]ir.Instr{{ir.ConstInt(1)}, {ir.ConstInt(2)}}),
	}
	if got := Count(code); got != 9 {
		t.Fatalf("Count = %d, want 9", got)
	}
}

func TestUnmarshalRejectsForeignData(t *testing.T) {
	data, err := msgpack.Marshal(&File{Magic: "other", Schema: schemaVersion})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	data, err = msgpack.Marshal(&File{Magic: magic, Schema: schemaVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for a newer schema, got %v", err)
	}
}

func TestUnmarshalChecksCounts(t *testing.T) {
	unit, err := NewUnit("u", []ir.Instr{ir.ConstInt(1), ir.Pop()})
	if err != nil {
		t.Fatal(err)
	}
	unit.Count = 5
	data, err := Marshal([]Unit{unit})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Fatalf("expected count mismatch error")
	}
}

package treefile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stackc/internal/ast"
	"stackc/internal/ir"
	"stackc/internal/lower"
	"stackc/internal/types"
)

const countdownYAML = `schema: 1
file: countdown.sc
nodes:
  - kind: Extern
    name: print_int
    params: [{name: v, type: int}]
    result: void
  - kind: VarDecl
    name: n
    line: 2
    col: 1
    value: {kind: Literal, int: 3}
  - kind: While
    line: 3
    cond:
      kind: Binary
      op: ">"
      type: bool
      left: {kind: Ident, name: n, type: int}
      right: {kind: Literal, int: 0}
    body:
      - kind: Discard
        value:
          kind: Call
          type: void
          callee: {kind: Ident, name: print_int, type: "fn(int) -> void"}
          args:
            - {kind: Ident, name: n, type: int}
      - kind: VarAssign
        target: {kind: Ident, name: n, type: int}
        value:
          kind: Binary
          op: "-"
          type: int
          left: {kind: Ident, name: n, type: int}
          right: {kind: Literal, int: 1}
`

func lowerProgram(t *testing.T, prog *Program) string {
	t.Helper()
	code, err := lower.New(nil, lower.Options{}).LowerAll(prog.Nodes)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	return ir.Format(code)
}

func TestDecodeYAMLProgram(t *testing.T) {
	prog, err := Decode([]byte(countdownYAML), FormatYAML, 7)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if prog.File != "countdown.sc" || len(prog.Nodes) != 3 {
		t.Fatalf("unexpected program header: %q, %d nodes", prog.File, len(prog.Nodes))
	}
	decl := prog.Nodes[1]
	if decl.Span.File != 7 || decl.Span.Line != 2 || decl.Span.Col != 1 {
		t.Fatalf("span not decoded: %+v", decl.Span)
	}

	hand := []*ast.Node{
		ast.Extern("print_int", []ast.Ident{{Name: "v", Type: types.Int}}, types.Void),
		ast.VarDecl("n", ast.IntLit(3)),
		ast.While(ast.Binary(ast.BinaryGreater, types.Bool, ast.Name("n", types.Int), ast.IntLit(0)),
			ast.Discard(ast.Call(types.Void, ast.Name("print_int", types.MakeFunc([]types.Type{types.Int}, types.Void)), ast.Name("n", types.Int))),
			ast.VarAssign(ast.Name("n", types.Int), ast.Binary(ast.BinarySub, types.Int, ast.Name("n", types.Int), ast.IntLit(1))),
		),
	}
	want := lowerProgram(t, &Program{Nodes: hand})
	if got := lowerProgram(t, prog); got != want {
		t.Fatalf("decoded program lowers differently:\n--- got\n%s--- want\n%s", got, want)
	}
}

func TestRoundTripBothFormats(t *testing.T) {
	prog, err := Decode([]byte(countdownYAML), FormatYAML, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := lowerProgram(t, prog)
	for _, format := range []Format{FormatYAML, FormatMsgpack} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := Encode(prog, format)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			back, err := Decode(data, format, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := lowerProgram(t, back); got != want {
				t.Fatalf("round trip changed the program:\n--- got\n%s--- want\n%s", got, want)
			}
		})
	}
}

func TestRoundTripKeepsElseAndLiterals(t *testing.T) {
	prog := &Program{File: "x.sc", Nodes: []*ast.Node{
		ast.If(ast.BoolLit(true), []*ast.Node{ast.Discard(ast.FloatLit(1.25))}, []*ast.Node{}),
		ast.Discard(ast.List(types.String, ast.StringLit("a"), ast.StringLit("b"))),
		ast.Discard(ast.As(types.Float, ast.IntLit(2))),
		ast.PosInfo("x.sc", 4, 2),
	}}
	data, err := Encode(prog, FormatMsgpack)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(data, FormatMsgpack, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ifData := back.Nodes[0].Data.(ast.IfData)
	if !ifData.HasElse {
		t.Fatalf("explicit empty else lost")
	}
	pos := back.Nodes[3].Data.(ast.PosInfoData)
	if pos.File != "x.sc" || pos.Line != 4 || pos.Col != 2 {
		t.Fatalf("position info lost: %+v", pos)
	}
	if got, want := lowerProgram(t, back), lowerProgram(t, prog); got != want {
		t.Fatalf("mismatch:\n%s---\n%s", got, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"schema", "schema: 9\nnodes: []\n", "unsupported schema"},
		{"unknown kind", "schema: 1\nnodes:\n  - kind: Lambda\n", `unknown node kind "Lambda"`},
		{"unknown field", "schema: 1\nnodes:\n  - kind: Literal\n    int: 1\n    colour: red\n", "colour"},
		{"two literal values", "schema: 1\nnodes:\n  - {kind: Literal, int: 1, str: x}\n", "exactly one"},
		{"bad operator", "schema: 1\nnodes:\n  - {kind: Binary, op: '**', type: int}\n", "unknown operator"},
		{"missing type", "schema: 1\nnodes:\n  - {kind: Ident, name: x}\n", "missing type"},
		{"bad type", "schema: 1\nnodes:\n  - {kind: Ident, name: x, type: 'fn(int'}\n", "nodes[0].Ident"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), FormatYAML, 0)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.yaml")
	if err := os.WriteFile(path, []byte(countdownYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	prog, err := Load(path, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(prog.Nodes) != 3 {
		t.Fatalf("got %d nodes", len(prog.Nodes))
	}

	if _, err := Load(filepath.Join(dir, "prog.txt"), 1); err == nil {
		t.Fatalf("expected unknown extension error")
	}
	_, err = Load(filepath.Join(dir, "missing.mp"), 1)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

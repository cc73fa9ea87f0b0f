package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"stackc/internal/ast"
	"stackc/internal/ir"
	"stackc/internal/lower"
	"stackc/internal/types"
)

var printlnType = types.MakeFunc([]types.Type{types.Int}, types.Void)

func intName(n string) *ast.Node { return ast.Name(n, types.Int) }

func printLine(arg *ast.Node) *ast.Node {
	return ast.Discard(ast.Call(types.Void, ast.Name("println", printlnType), arg))
}

func externPrintln() *ast.Node {
	return ast.Extern("println", []ast.Ident{{Name: "v", Type: types.Int}}, types.Void)
}

// runProgram lowers nodes and executes them, returning the VM and its output.
func runProgram(t *testing.T, nodes ...*ast.Node) (*VM, string) {
	t.Helper()
	code, err := lower.New(nil, lower.Options{}).LowerAll(nodes)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := ir.Validate(code); err != nil {
		t.Fatalf("validate: %v", err)
	}
	var out bytes.Buffer
	m := New(Options{Stdout: &out, MaxSteps: 100000})
	if err := m.Run(code); err != nil {
		t.Fatalf("run: %v", err)
	}
	return m, out.String()
}

func expectGlobal(t *testing.T, m *VM, name, want string) {
	t.Helper()
	v, ok := m.Global(name)
	if !ok {
		t.Fatalf("global %q is not bound", name)
	}
	if got := v.String(); got != want {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

func expectPanic(t *testing.T, err error, code PanicCode) *VMError {
	t.Helper()
	var vmErr *VMError
	if !errors.As(err, &vmErr) {
		t.Fatalf("expected VM panic %s, got %v", code, err)
	}
	if vmErr.Code != code {
		t.Fatalf("panic code = %s, want %s (%s)", vmErr.Code, code, vmErr.Message)
	}
	return vmErr
}

func TestLoopGuardIsRerunEachIteration(t *testing.T) {
	m, out := runProgram(t,
		externPrintln(),
		ast.VarDecl("i", ast.IntLit(3)),
		ast.While(ast.Binary(ast.BinaryGreater, types.Bool, intName("i"), ast.IntLit(0)),
			printLine(intName("i")),
			ast.VarAssign(intName("i"), ast.Binary(ast.BinarySub, types.Int, intName("i"), ast.IntLit(1))),
		),
	)
	if out != "3\n2\n1\n" {
		t.Fatalf("output = %q", out)
	}
	expectGlobal(t, m, "i", "0")
	if len(m.Stack()) != 0 {
		t.Fatalf("operand stack not empty: %v", m.Stack())
	}
}

func TestLoopThatNeverRuns(t *testing.T) {
	_, out := runProgram(t,
		externPrintln(),
		ast.VarDecl("i", ast.IntLit(0)),
		ast.While(ast.Binary(ast.BinaryLess, types.Bool, intName("i"), ast.IntLit(0)),
			printLine(intName("i")),
		),
	)
	if out != "" {
		t.Fatalf("output = %q", out)
	}
}

func TestLoopBodyDeallocsEachIteration(t *testing.T) {
	m, out := runProgram(t,
		externPrintln(),
		ast.VarDecl("i", ast.IntLit(0)),
		ast.While(ast.Binary(ast.BinaryLess, types.Bool, intName("i"), ast.IntLit(2)),
			ast.VarDecl("sq", ast.Binary(ast.BinaryMul, types.Int, intName("i"), intName("i"))),
			printLine(intName("sq")),
			ast.VarAssign(intName("i"), ast.Binary(ast.BinaryAdd, types.Int, intName("i"), ast.IntLit(1))),
		),
	)
	if out != "0\n1\n" {
		t.Fatalf("output = %q", out)
	}
	if _, ok := m.Global("sq"); ok {
		t.Fatalf("loop local leaked into the unit frame")
	}
}

func TestRunsLoweredFunctions(t *testing.T) {
	sum := ast.Func("sum", []ast.Ident{{Name: "n", Type: types.Int}}, types.Int,
		ast.VarDecl("acc", ast.IntLit(0)),
		ast.VarDecl("i", ast.IntLit(0)),
		ast.While(ast.Binary(ast.BinaryLess, types.Bool, intName("i"), intName("n")),
			ast.VarAssign(intName("acc"), ast.Binary(ast.BinaryAdd, types.Int, intName("acc"), intName("i"))),
			ast.VarAssign(intName("i"), ast.Binary(ast.BinaryAdd, types.Int, intName("i"), ast.IntLit(1))),
		),
		ast.Return(intName("acc")),
	)
	sumT := types.MakeFunc([]types.Type{types.Int}, types.Int)
	m, out := runProgram(t,
		externPrintln(),
		sum,
		ast.VarDecl("total", ast.Call(types.Int, ast.Name("sum", sumT), ast.IntLit(5))),
		printLine(intName("total")),
	)
	if out != "10\n" {
		t.Fatalf("output = %q", out)
	}
	expectGlobal(t, m, "total", "10")

	v, err := m.Call("sum", MakeInt(4))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !v.Equal(MakeInt(6)) {
		t.Fatalf("sum(4) = %s", v)
	}
}

func TestArgumentOrder(t *testing.T) {
	subT := types.MakeFunc([]types.Type{types.Int, types.Int}, types.Int)
	sub := ast.Func("sub", []ast.Ident{{Name: "a", Type: types.Int}, {Name: "b", Type: types.Int}}, types.Int,
		ast.Return(ast.Binary(ast.BinarySub, types.Int, intName("a"), intName("b"))),
	)
	m, _ := runProgram(t,
		sub,
		ast.VarDecl("d", ast.Call(types.Int, ast.Name("sub", subT), ast.IntLit(10), ast.IntLit(3))),
	)
	expectGlobal(t, m, "d", "7")
}

func TestWidenedFunctionReturnsEitherShape(t *testing.T) {
	pick := ast.Func("pick", []ast.Ident{{Name: "n", Type: types.Int}}, types.Int,
		ast.If(ast.Binary(ast.BinaryGreater, types.Bool, intName("n"), ast.IntLit(0)),
			[]*ast.Node{ast.Return(ast.IntLit(1))}, nil),
		ast.Return(ast.StringLit("neg")),
	)
	m, _ := runProgram(t, pick)

	pos, err := m.Call("pick", MakeInt(5))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	neg, err := m.Call("pick", MakeInt(-5))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if pos.Tag != types.ConstInt || pos.Int != 1 {
		t.Fatalf("pick(5) = %s (%s)", pos, pos.Tag)
	}
	if neg.Tag != types.ConstStr || neg.Str != "neg" {
		t.Fatalf("pick(-5) = %s (%s)", neg, neg.Tag)
	}
}

func TestWidenedValuelessReturn(t *testing.T) {
	f := ast.Func("f", []ast.Ident{{Name: "n", Type: types.Int}}, types.Int,
		ast.If(ast.Binary(ast.BinaryGreater, types.Bool, intName("n"), ast.IntLit(0)),
			[]*ast.Node{ast.Return(ast.IntLit(1))}, nil),
		ast.Return(nil),
	)
	m, _ := runProgram(t, f)

	// Leave an unrelated operand below the frame; the bare return must not take it.
	m.push(MakeInt(42))
	neg, err := m.Call("f", MakeInt(-5))
	if err != nil {
		t.Fatalf("f(-5): %v", err)
	}
	if neg.Tag != types.ConstVoid {
		t.Fatalf("f(-5) = %s (%s), want void", neg, neg.Tag)
	}
	pos, err := m.Call("f", MakeInt(5))
	if err != nil {
		t.Fatalf("f(5): %v", err)
	}
	if pos.Tag != types.ConstInt || pos.Int != 1 {
		t.Fatalf("f(5) = %s (%s)", pos, pos.Tag)
	}
	if len(m.stack) != 1 || m.stack[0].Int != 42 {
		t.Fatalf("caller operands changed: %v", m.stack)
	}
}

func TestFailedCallReleasesItsFrame(t *testing.T) {
	boom := ast.Func("boom", nil, types.Int,
		ast.Return(ast.Binary(ast.BinaryDiv, types.Int, ast.IntLit(1), ast.IntLit(0))),
	)
	m, _ := runProgram(t, boom)

	for range 2 {
		_, err := m.Call("boom")
		vmErr := expectPanic(t, err, PanicDivByZero)
		if got := strings.Join(vmErr.Backtrace, ","); got != "boom,<unit>" {
			t.Fatalf("backtrace = %s", got)
		}
	}
	if len(m.frames) != 1 || len(m.stack) != 0 {
		t.Fatalf("after failed calls: %d frames, %d operands", len(m.frames), len(m.stack))
	}
}

func TestBlockShadowing(t *testing.T) {
	m, out := runProgram(t,
		externPrintln(),
		ast.VarDecl("x", ast.IntLit(1)),
		ast.Block(
			ast.VarDecl("x", ast.IntLit(2)),
			printLine(intName("x")),
		),
		printLine(intName("x")),
	)
	if out != "2\n1\n" {
		t.Fatalf("output = %q", out)
	}
	expectGlobal(t, m, "x", "1")
}

func TestAssignThroughIndex(t *testing.T) {
	listT := types.MakeList(types.Int)
	m, _ := runProgram(t,
		ast.VarDecl("xs", ast.List(types.Int, ast.IntLit(1), ast.IntLit(2), ast.IntLit(3))),
		ast.VarAssign(ast.Index(types.Int, ast.Name("xs", listT), ast.IntLit(1)), ast.IntLit(20)),
		ast.VarDecl("n", ast.Member(types.Int, ast.Name("xs", listT), "len")),
	)
	expectGlobal(t, m, "xs", "[1, 20, 3]")
	expectGlobal(t, m, "n", "3")
}

func TestImportedNative(t *testing.T) {
	absT := types.MakeFunc([]types.Type{types.Int}, types.Int)
	m, _ := runProgram(t,
		ast.Import(absT, "math", "abs", []ast.Ident{{Name: "v", Type: types.Int}}),
		ast.VarDecl("a", ast.Call(types.Int, ast.Name("abs", absT), ast.IntLit(-7))),
	)
	expectGlobal(t, m, "a", "7")
}

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		name        string
		right, left ir.Instr
		op          ir.Instr
		want        Value
	}{
		{"int sub", ir.ConstInt(3), ir.ConstInt(10), ir.Arith(ir.OpSub, types.ConstInt), MakeInt(7)},
		{"int div", ir.ConstInt(2), ir.ConstInt(7), ir.Arith(ir.OpDiv, types.ConstInt), MakeInt(3)},
		{"int mod", ir.ConstInt(4), ir.ConstInt(10), ir.Arith(ir.OpMod, types.ConstInt), MakeInt(2)},
		{"mixed add", ir.ConstInt(2), ir.ConstFloat(1.5), ir.Arith(ir.OpAdd, types.ConstFloat), MakeFloat(3.5)},
		{"concat", ir.ConstStr("b"), ir.ConstStr("a"), ir.Arith(ir.OpAdd, types.ConstStr), MakeStr("ab")},
		{"gt", ir.ConstInt(1), ir.ConstInt(2), ir.Cmp(ir.OpGt), MakeBool(true)},
		{"ge equal", ir.ConstInt(2), ir.ConstInt(2), ir.Cmp(ir.OpGe), MakeBool(true)},
		{"string gt", ir.ConstStr("b"), ir.ConstStr("a"), ir.Cmp(ir.OpGt), MakeBool(false)},
		{"eq numeric", ir.ConstFloat(2), ir.ConstInt(2), ir.Cmp(ir.OpEq), MakeBool(true)},
		{"and", ir.ConstBool(false), ir.ConstBool(true), ir.Cmp(ir.OpAnd), MakeBool(false)},
		{"or", ir.ConstBool(false), ir.ConstBool(true), ir.Cmp(ir.OpOr), MakeBool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Options{})
			if err := m.Run([]ir.Instr{tt.right, tt.left, tt.op}); err != nil {
				t.Fatalf("run: %v", err)
			}
			stack := m.Stack()
			if len(stack) != 1 || !stack[0].Equal(tt.want) || stack[0].Tag != tt.want.Tag {
				t.Fatalf("stack = %v, want [%s]", stack, tt.want)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		in   ir.Instr
		conv ir.Instr
		want Value
	}{
		{"int to float", ir.ConstInt(2), ir.Conv(types.ConstFloat, types.ConstInt), MakeFloat(2)},
		{"float to int", ir.ConstFloat(2.9), ir.Conv(types.ConstInt, types.ConstFloat), MakeInt(2)},
		{"int to str", ir.ConstInt(42), ir.Conv(types.ConstStr, types.ConstInt), MakeStr("42")},
		{"str to int", ir.ConstStr("17"), ir.Conv(types.ConstInt, types.ConstStr), MakeInt(17)},
		{"to dyn keeps value", ir.ConstStr("x"), ir.Conv(types.ConstDynamic, types.ConstStr), MakeStr("x")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Options{})
			if err := m.Run([]ir.Instr{tt.in, tt.conv}); err != nil {
				t.Fatalf("run: %v", err)
			}
			stack := m.Stack()
			if len(stack) != 1 || stack[0].Tag != tt.want.Tag || !stack[0].Equal(tt.want) {
				t.Fatalf("stack = %v, want [%s]", stack, tt.want)
			}
		})
	}
}

func TestRuntimePanics(t *testing.T) {
	tests := []struct {
		name string
		code []ir.Instr
		want PanicCode
	}{
		{"use before init", []ir.Instr{ir.Alloc(types.ConstInt, "x"), ir.Load(types.ConstInt, "x")}, PanicUseBeforeInit},
		{"unknown name", []ir.Instr{ir.Load(types.ConstInt, "ghost")}, PanicUnknownName},
		{"division by zero", []ir.Instr{ir.ConstInt(0), ir.ConstInt(1), ir.Arith(ir.OpDiv, types.ConstInt)}, PanicDivByZero},
		{"underflow", []ir.Instr{ir.Pop()}, PanicStackUnderflow},
		{"missing native", []ir.Instr{ir.Extern(types.ConstVoid, "nope", nil)}, PanicMissingNative},
		{"bad condition", []ir.Instr{ir.ConstInt(1), ir.If(types.ConstVoid, nil, nil)}, PanicTypeMismatch},
		{"index out of range", []ir.Instr{
			ir.List(types.ConstList, [][]ir.Instr{{ir.ConstInt(1)}}),
			ir.ConstInt(5),
			ir.LoadIndex(types.ConstInt),
		}, PanicOutOfBounds},
		{"set on a temporary", []ir.Instr{ir.ConstInt(1), ir.ConstInt(2), ir.Set(types.ConstInt)}, PanicTypeMismatch},
		{"ret at unit level", []ir.Instr{ir.Ret(types.ConstVoid)}, PanicBadProgram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectPanic(t, New(Options{}).Run(tt.code), tt.want)
		})
	}
}

func TestStepLimit(t *testing.T) {
	// An empty guard recomputes nothing, so the body pushes the next condition.
	code := []ir.Instr{
		ir.ConstBool(true),
		ir.Loop([]ir.Instr{ir.ConstBool(true)}, 0),
	}
	expectPanic(t, New(Options{MaxSteps: 50}).Run(code), PanicStepLimit)
}

func TestPanicBacktrace(t *testing.T) {
	boom := ast.Func("boom", nil, types.Int,
		ast.Return(ast.Binary(ast.BinaryDiv, types.Int, ast.IntLit(1), ast.IntLit(0))),
	)
	code, err := lower.New(nil, lower.Options{}).LowerAll([]*ast.Node{
		boom,
		ast.Discard(ast.Call(types.Int, ast.Name("boom", types.MakeFunc(nil, types.Int)))),
	})
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	vmErr := expectPanic(t, New(Options{}).Run(code), PanicDivByZero)
	if got := strings.Join(vmErr.Backtrace, ","); got != "boom,<unit>" {
		t.Fatalf("backtrace = %s", got)
	}
	if !strings.Contains(vmErr.Format(), "backtrace:\n  0: boom\n") {
		t.Fatalf("format = %q", vmErr.Format())
	}
}

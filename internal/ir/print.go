package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"stackc/internal/types"
)

// Format returns the text form of an instruction sequence.
func Format(code []Instr) string {
	var sb strings.Builder
	_ = Fprint(&sb, code) //nolint:errcheck // strings.Builder never fails
	return sb.String()
}

// Fprint writes one line per instruction; nested bodies are indented by two
// spaces and wrapped in braces. The output is deterministic and is what
// golden tests compare.
func Fprint(w io.Writer, code []Instr) error {
	p := &printer{w: w}
	p.seq(code, 0)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) seq(code []Instr, depth int) {
	for i := range code {
		p.instr(&code[i], depth)
	}
}

func (p *printer) instr(ins *Instr, depth int) {
	switch ins.Op {
	case OpDef:
		var params []Param
		var body []Instr
		if ins.Def != nil {
			params, body = ins.Def.Params, ins.Def.Body
		}
		p.line(depth, "def %s %s(%s) {", ins.Type, ins.Name, formatParams(params))
		p.seq(body, depth+1)
		p.line(depth, "}")

	case OpExtern:
		var params []Param
		if ins.Extern != nil {
			params = ins.Extern.Params
		}
		p.line(depth, "extern %s %s(%s)", ins.Type, ins.Name, formatParams(params))

	case OpImport:
		module := ""
		var params []Param
		if ins.Import != nil {
			module, params = ins.Import.Module, ins.Import.Params
		}
		p.line(depth, "import %s %s.%s(%s)", ins.Type, module, ins.Name, formatParams(params))

	case OpAlloc, OpDealloc, OpStore, OpLoad, OpLoadMember:
		p.line(depth, "%s %s %s", ins.Op, ins.Type, ins.Name)

	case OpLoadIndex, OpSet, OpAdd, OpSub, OpMul, OpDiv, OpMod, OpRet:
		p.line(depth, "%s %s", ins.Op, ins.Type)

	case OpGt, OpGe, OpEq, OpAnd, OpOr, OpPop:
		p.line(depth, "%s", ins.Op)

	case OpIf:
		p.line(depth, "if %s {", ins.Type)
		if ins.If != nil {
			p.seq(ins.If.Then, depth+1)
			if len(ins.If.Else) > 0 {
				p.line(depth, "} else {")
				p.seq(ins.If.Else, depth+1)
			}
		}
		p.line(depth, "}")

	case OpLoop:
		guard := uint32(0)
		var body []Instr
		if ins.Loop != nil {
			guard, body = ins.Loop.Guard, ins.Loop.Body
		}
		p.line(depth, "loop guard=%d {", guard)
		p.seq(body, depth+1)
		p.line(depth, "}")

	case OpConst:
		v := Value{}
		if ins.Const != nil {
			v = ins.Const.Value
		}
		p.line(depth, "const %s %s", ins.Type, FormatValue(ins.Type, v))

	case OpList:
		p.line(depth, "list %s [", ins.Type)
		if ins.List != nil {
			for _, item := range ins.List.Items {
				p.line(depth+1, "item {")
				p.seq(item, depth+2)
				p.line(depth+1, "}")
			}
		}
		p.line(depth, "]")

	case OpCall:
		argc := uint16(0)
		if ins.Call != nil {
			argc = ins.Call.Argc
		}
		p.line(depth, "call %s %d", ins.Type, argc)

	case OpConv:
		from := types.ConstInvalid
		if ins.Conv != nil {
			from = ins.Conv.From
		}
		p.line(depth, "conv %s %s", ins.Type, from)

	default:
		p.line(depth, "<invalid op %d>", ins.Op)
	}
}

func formatParams(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, prm := range params {
		parts = append(parts, prm.Name+" "+prm.Type.String())
	}
	return strings.Join(parts, ", ")
}

// FormatValue renders a literal according to its tag.
func FormatValue(t types.ConstType, v Value) string {
	switch t {
	case types.ConstInt:
		return strconv.FormatInt(v.Int, 10)
	case types.ConstFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case types.ConstStr:
		return strconv.Quote(v.Str)
	case types.ConstBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "?"
	}
}

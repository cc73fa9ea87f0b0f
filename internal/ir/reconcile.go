package ir

import "stackc/internal/types"

// returnTags accumulates the tags of a function's Ret instructions.
type returnTags struct {
	seen      types.ConstType
	has       bool
	disagreed bool
}

func (r *returnTags) add(t types.ConstType) {
	if !r.has {
		r.seen, r.has = t, true
		return
	}
	if joined := types.Join(r.seen, t); joined != r.seen {
		r.seen = joined
		r.disagreed = true
	}
}

// Reconcile unifies the return tags of one function body. If every Ret
// carries the same tag that tag is returned. On the first disagreement all
// Ret instructions of the body are rewritten in place to ConstDynamic, which
// is then returned. Rets inside If and Loop bodies belong to the function;
// Rets inside nested Def bodies do not. ok is false when the body has no Ret.
func Reconcile(body []Instr) (t types.ConstType, ok bool) {
	var acc returnTags
	if scanReturns(body, &acc) {
		rewriteReturns(body, types.ConstDynamic)
		return types.ConstDynamic, true
	}
	return acc.seen, acc.has
}

// scanReturns visits Rets in program order and stops at the first
// disagreement, reporting whether one occurred.
func scanReturns(code []Instr, acc *returnTags) bool {
	for i := range code {
		ins := &code[i]
		switch ins.Op {
		case OpRet:
			acc.add(ins.Type)
			if acc.disagreed {
				return true
			}
		case OpIf:
			if ins.If != nil && (scanReturns(ins.If.Then, acc) || scanReturns(ins.If.Else, acc)) {
				return true
			}
		case OpLoop:
			if ins.Loop != nil && scanReturns(ins.Loop.Body, acc) {
				return true
			}
		}
	}
	return false
}

func rewriteReturns(code []Instr, t types.ConstType) {
	for i := range code {
		ins := &code[i]
		switch ins.Op {
		case OpRet:
			ins.Type = t
		case OpIf:
			if ins.If != nil {
				rewriteReturns(ins.If.Then, t)
				rewriteReturns(ins.If.Else, t)
			}
		case OpLoop:
			if ins.Loop != nil {
				rewriteReturns(ins.Loop.Body, t)
			}
		}
	}
}

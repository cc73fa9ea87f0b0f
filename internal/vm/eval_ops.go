package vm

import (
	"math"
	"strconv"

	"stackc/internal/ir"
	"stackc/internal/types"
)

// binary pops the left operand (top of stack) and then the right one.
func (vm *VM) binary(op ir.Op) error {
	left, err := vm.pop()
	if err != nil {
		return err
	}
	right, err := vm.pop()
	if err != nil {
		return err
	}
	var out Value
	switch op {
	case ir.OpAnd, ir.OpOr:
		if left.Tag != types.ConstBool || right.Tag != types.ConstBool {
			return vm.panicf(PanicTypeMismatch, "%s of %s and %s", op, left.Tag, right.Tag)
		}
		if op == ir.OpAnd {
			out = MakeBool(left.Bool && right.Bool)
		} else {
			out = MakeBool(left.Bool || right.Bool)
		}
	case ir.OpEq:
		out = MakeBool(left.Equal(right))
	case ir.OpGt, ir.OpGe:
		out, err = vm.compare(op, left, right)
	default:
		out, err = vm.arith(op, left, right)
	}
	if err != nil {
		return err
	}
	vm.push(out)
	return nil
}

func (vm *VM) compare(op ir.Op, left, right Value) (Value, error) {
	if left.Tag == types.ConstStr && right.Tag == types.ConstStr {
		if op == ir.OpGt {
			return MakeBool(left.Str > right.Str), nil
		}
		return MakeBool(left.Str >= right.Str), nil
	}
	if left.Tag == types.ConstInt && right.Tag == types.ConstInt {
		if op == ir.OpGt {
			return MakeBool(left.Int > right.Int), nil
		}
		return MakeBool(left.Int >= right.Int), nil
	}
	a, b, ok := numericPair(left, right)
	if !ok {
		return Value{}, vm.panicf(PanicTypeMismatch, "%s of %s and %s", op, left.Tag, right.Tag)
	}
	if op == ir.OpGt {
		return MakeBool(a > b), nil
	}
	return MakeBool(a >= b), nil
}

// arith computes left op right. Mixed int and float operands are promoted
// to float.
func (vm *VM) arith(op ir.Op, left, right Value) (Value, error) {
	if op == ir.OpAdd && left.Tag == types.ConstStr && right.Tag == types.ConstStr {
		return MakeStr(left.Str + right.Str), nil
	}
	if left.Tag == types.ConstInt && right.Tag == types.ConstInt {
		a, b := left.Int, right.Int
		switch op {
		case ir.OpAdd:
			return MakeInt(a + b), nil
		case ir.OpSub:
			return MakeInt(a - b), nil
		case ir.OpMul:
			return MakeInt(a * b), nil
		case ir.OpDiv, ir.OpMod:
			if b == 0 {
				return Value{}, vm.panicf(PanicDivByZero, "%s by zero", op)
			}
			if op == ir.OpDiv {
				return MakeInt(a / b), nil
			}
			return MakeInt(a % b), nil
		}
	}
	a, b, ok := numericPair(left, right)
	if !ok {
		return Value{}, vm.panicf(PanicTypeMismatch, "%s of %s and %s", op, left.Tag, right.Tag)
	}
	switch op {
	case ir.OpAdd:
		return MakeFloat(a + b), nil
	case ir.OpSub:
		return MakeFloat(a - b), nil
	case ir.OpMul:
		return MakeFloat(a * b), nil
	case ir.OpDiv:
		return MakeFloat(a / b), nil
	case ir.OpMod:
		return MakeFloat(math.Mod(a, b)), nil
	default:
		return Value{}, vm.panicf(PanicUnimplemented, "op %s", op)
	}
}

// convert rewrites the top of stack from ins.Conv.From to ins.Type.
func (vm *VM) convert(ins *ir.Instr) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	v.place = nil
	to := ins.Type
	if to == types.ConstDynamic || to == v.Tag {
		vm.push(v)
		return nil
	}
	var out Value
	switch {
	case to == types.ConstFloat && v.Tag == types.ConstInt:
		out = MakeFloat(float64(v.Int))
	case to == types.ConstInt && v.Tag == types.ConstFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return vm.panicf(PanicTypeMismatch, "cannot convert %v to int", v.Float)
		}
		out = MakeInt(int64(v.Float))
	case to == types.ConstInt && v.Tag == types.ConstBool:
		out = MakeInt(0)
		if v.Bool {
			out.Int = 1
		}
	case to == types.ConstStr:
		out = MakeStr(v.String())
	case to == types.ConstInt && v.Tag == types.ConstStr:
		n, perr := strconv.ParseInt(v.Str, 10, 64)
		if perr != nil {
			return vm.panicf(PanicTypeMismatch, "cannot convert %q to int", v.Str)
		}
		out = MakeInt(n)
	case to == types.ConstFloat && v.Tag == types.ConstStr:
		f, perr := strconv.ParseFloat(v.Str, 64)
		if perr != nil {
			return vm.panicf(PanicTypeMismatch, "cannot convert %q to float", v.Str)
		}
		out = MakeFloat(f)
	case to == types.ConstBool && v.Tag == types.ConstInt:
		out = MakeBool(v.Int != 0)
	default:
		return vm.panicf(PanicTypeMismatch, "cannot convert %s to %s", v.Tag, to)
	}
	vm.push(out)
	return nil
}

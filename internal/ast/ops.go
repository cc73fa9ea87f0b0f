package ast

// BinaryOp enumerates binary operator kinds.
type BinaryOp uint8

const (
	BinaryInvalid BinaryOp = iota
	// BinaryAdd represents the addition operator (+).
	BinaryAdd
	// BinarySub represents the subtraction operator (-).
	BinarySub
	// BinaryMul represents the multiplication operator (*).
	BinaryMul
	// BinaryDiv represents the division operator (/).
	BinaryDiv
	// BinaryMod represents the modulo operator (%).
	BinaryMod
	// BinaryGreater represents the greater than operator (>).
	BinaryGreater
	// BinaryGreaterEq represents the greater than or equal operator (>=).
	BinaryGreaterEq
	// BinaryLess represents the less than operator (<).
	BinaryLess
	// BinaryLessEq represents the less than or equal operator (<=).
	BinaryLessEq
	// BinaryEq represents the equality operator (==).
	BinaryEq
	// BinaryLogicalAnd represents the logical AND operator (&&).
	BinaryLogicalAnd
	// BinaryLogicalOr represents the logical OR operator (||).
	BinaryLogicalOr
)

// String returns the symbol representation of a binary operator.
func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryGreater:
		return ">"
	case BinaryGreaterEq:
		return ">="
	case BinaryLess:
		return "<"
	case BinaryLessEq:
		return "<="
	case BinaryEq:
		return "=="
	case BinaryLogicalAnd:
		return "&&"
	case BinaryLogicalOr:
		return "||"
	default:
		return "?"
	}
}

// ParseBinaryOp maps operator text to its kind. `&` and `|` are accepted as
// spellings of the logical operators.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	switch s {
	case "+":
		return BinaryAdd, true
	case "-":
		return BinarySub, true
	case "*":
		return BinaryMul, true
	case "/":
		return BinaryDiv, true
	case "%":
		return BinaryMod, true
	case ">":
		return BinaryGreater, true
	case ">=":
		return BinaryGreaterEq, true
	case "<":
		return BinaryLess, true
	case "<=":
		return BinaryLessEq, true
	case "==":
		return BinaryEq, true
	case "&&", "&":
		return BinaryLogicalAnd, true
	case "||", "|":
		return BinaryLogicalOr, true
	}
	return BinaryInvalid, false
}

// IsLessClass reports operators lowered by swapping operands of their
// greater-than counterpart.
func (op BinaryOp) IsLessClass() bool {
	return op == BinaryLess || op == BinaryLessEq
}

package types

import (
	"errors"
	"fmt"
)

// ConstType is the narrow runtime-shape tag carried by IR operands.
// Numeric values are part of the serialized IR; append only.
type ConstType uint8

const (
	ConstInvalid ConstType = 0
	ConstInt     ConstType = 1
	ConstFloat   ConstType = 2
	ConstStr     ConstType = 3
	// ConstDynamic is the fallback applied when a function's returns disagree.
	// It is never produced from a declared type.
	ConstDynamic ConstType = 4
	ConstBool    ConstType = 5
	ConstList    ConstType = 6
	ConstFunc    ConstType = 7
	ConstObject  ConstType = 8
	ConstVoid    ConstType = 9
)

func (c ConstType) String() string {
	switch c {
	case ConstInt:
		return "int"
	case ConstFloat:
		return "float"
	case ConstStr:
		return "str"
	case ConstDynamic:
		return "dyn"
	case ConstBool:
		return "bool"
	case ConstList:
		return "list"
	case ConstFunc:
		return "func"
	case ConstObject:
		return "obj"
	case ConstVoid:
		return "void"
	default:
		return fmt.Sprintf("ConstType(%d)", c)
	}
}

// IsValid reports whether c is one of the defined tags.
func (c ConstType) IsValid() bool {
	return c >= ConstInt && c <= ConstVoid
}

// ErrUnmappedType reports a source type with no ConstType counterpart.
var ErrUnmappedType = errors.New("type has no IR tag")

// ConstOf maps a source type to its IR tag. Every kind the checker can
// produce has exactly one tag; anything else is a contract violation.
func ConstOf(t Type) (ConstType, error) {
	switch t.Kind {
	case KindVoid:
		return ConstVoid, nil
	case KindBool:
		return ConstBool, nil
	case KindInt:
		return ConstInt, nil
	case KindFloat:
		return ConstFloat, nil
	case KindString:
		return ConstStr, nil
	case KindList:
		return ConstList, nil
	case KindFunc:
		return ConstFunc, nil
	case KindObject:
		return ConstObject, nil
	default:
		return ConstInvalid, fmt.Errorf("%w: %s", ErrUnmappedType, t)
	}
}

// Join is the least upper bound in the flat tag lattice: equal tags join
// to themselves and everything else widens to ConstDynamic.
func Join(a, b ConstType) ConstType {
	if a == b {
		return a
	}
	return ConstDynamic
}

package types

import (
	"fmt"
	"strings"
)

// Kind enumerates all supported kinds of source-level types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindFunc
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindFunc:
		return "func"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for a resolved source type, as attached to
// every node of the typed tree by the checker.
type Type struct {
	Kind   Kind
	Elem   *Type  // for lists
	Params []Type // for funcs
	Result *Type  // for funcs
	Name   string // for objects
}

// Descriptor helpers ---------------------------------------------------------

var (
	Void   = Type{Kind: KindVoid}
	Bool   = Type{Kind: KindBool}
	Int    = Type{Kind: KindInt}
	Float  = Type{Kind: KindFloat}
	String = Type{Kind: KindString}
)

// MakeList describes a homogeneous list of elem.
func MakeList(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// MakeFunc describes a function signature.
func MakeFunc(params []Type, result Type) Type {
	return Type{Kind: KindFunc, Params: params, Result: &result}
}

// MakeObject describes a named object (record, module handle).
func MakeObject(name string) Type {
	return Type{Kind: KindObject, Name: name}
}

// IsVoid reports whether t produces no value.
func (t Type) IsVoid() bool { return t.Kind == KindVoid }

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Name != o.Name || len(t.Params) != len(o.Params) {
		return false
	}
	if !equalPtr(t.Elem, o.Elem) || !equalPtr(t.Result, o.Result) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

func equalPtr(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (t Type) String() string {
	switch t.Kind {
	case KindList:
		if t.Elem == nil {
			return "[]?"
		}
		return "[]" + t.Elem.String()
	case KindFunc:
		parts := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			parts = append(parts, p.String())
		}
		res := "void"
		if t.Result != nil {
			res = t.Result.String()
		}
		return "fn(" + strings.Join(parts, ", ") + ") -> " + res
	case KindObject:
		if t.Name == "" {
			return "object"
		}
		return t.Name
	default:
		return t.Kind.String()
	}
}

// Parse reads the textual form produced by String. It accepts the basic
// kind names, "[]T" lists, "fn(A, B) -> R" signatures and any other
// identifier as a named object.
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Type{}, fmt.Errorf("types: empty type")
	case "void":
		return Void, nil
	case "bool":
		return Bool, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "string", "str":
		return String, nil
	case "object":
		return MakeObject(""), nil
	}
	if rest, ok := strings.CutPrefix(s, "[]"); ok {
		elem, err := Parse(rest)
		if err != nil {
			return Type{}, err
		}
		return MakeList(elem), nil
	}
	if rest, ok := strings.CutPrefix(s, "fn("); ok {
		return parseFunc(rest)
	}
	for _, r := range s {
		if !(r == '_' || r == '.' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return Type{}, fmt.Errorf("types: malformed type %q", s)
		}
	}
	return MakeObject(s), nil
}

func parseFunc(rest string) (Type, error) {
	depth := 1
	closeIdx := -1
	for i, r := range rest {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && closeIdx < 0 {
				closeIdx = i
			}
		}
	}
	if closeIdx < 0 {
		return Type{}, fmt.Errorf("types: unclosed parameter list in %q", "fn("+rest)
	}
	var params []Type
	for _, part := range splitTop(rest[:closeIdx]) {
		p, err := Parse(part)
		if err != nil {
			return Type{}, err
		}
		params = append(params, p)
	}
	tail := strings.TrimSpace(rest[closeIdx+1:])
	result := Void
	if after, ok := strings.CutPrefix(tail, "->"); ok {
		r, err := Parse(after)
		if err != nil {
			return Type{}, err
		}
		result = r
	} else if tail != "" {
		return Type{}, fmt.Errorf("types: unexpected %q after parameter list", tail)
	}
	return MakeFunc(params, result), nil
}

// splitTop splits on commas that are not nested inside parentheses.
func splitTop(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

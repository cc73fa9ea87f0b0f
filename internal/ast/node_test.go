package ast

import (
	"testing"

	"stackc/internal/types"
)

func TestKindByNameCoversAllKinds(t *testing.T) {
	for k := NodeLiteral; k <= NodePosInfo; k++ {
		got, ok := KindByName(k.String())
		if !ok || got != k {
			t.Fatalf("KindByName(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := KindByName("Lambda"); ok {
		t.Fatalf("unexpected kind for unknown name")
	}
}

func TestParseBinaryOpRoundTrip(t *testing.T) {
	for op := BinaryAdd; op <= BinaryLogicalOr; op++ {
		got, ok := ParseBinaryOp(op.String())
		if !ok || got != op {
			t.Fatalf("ParseBinaryOp(%q) = %v, %v", op.String(), got, ok)
		}
	}
	if got, _ := ParseBinaryOp("&"); got != BinaryLogicalAnd {
		t.Fatalf("& should parse as logical and, got %v", got)
	}
	if _, ok := ParseBinaryOp("<<"); ok {
		t.Fatalf("<< is not a supported operator")
	}
}

func TestConstructorsFillTypes(t *testing.T) {
	decl := VarDecl("x", FloatLit(1.5))
	data := decl.Data.(VarDeclData)
	if !data.Name.Type.Equal(types.Float) {
		t.Fatalf("declared type should follow initializer, got %s", data.Name.Type)
	}
	if ifn := If(BoolLit(true), nil, nil); ifn.Data.(IfData).HasElse {
		t.Fatalf("nil else must read as absent")
	}
	if ifn := If(BoolLit(true), nil, []*Node{}); !ifn.Data.(IfData).HasElse {
		t.Fatalf("empty else must read as present")
	}
}

package diag

import (
	"fmt"
)

// Code is the small numeric failure code carried by every diagnostic.
type Code uint16

const (
	UnknownCode Code = 0

	// Lowering (1000-1999)
	LowInfo                 Code = 1000
	LowUnsupportedConstruct Code = 1001 // node kind or payload the engine does not handle
	LowUnmappedType         Code = 1002 // source type without an IR tag
	LowUnknownOperator      Code = 1003
	LowRedeclared           Code = 1004 // name declared twice in one scope
	LowMalformedNode        Code = 1005 // missing child
	LowArgCountOverflow     Code = 1006 // too many call arguments for the IR encoding

	// IR structure (2000-2999)
	IRInfo    Code = 2000
	IRInvalid Code = 2001 // lowered output failed validation

	// Input/output (4000-4999)
	IOLoadFileError Code = 4001
	IODecodeError   Code = 4002
	IOEncodeError   Code = 4003

	// Reference interpreter (6000-6999)
	VMRuntimeError Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		LowInfo:                 "Lowering information",
		LowUnsupportedConstruct: "Unsupported construct",
		LowUnmappedType:         "Type has no IR tag",
		LowUnknownOperator:      "Unknown binary operator",
		LowRedeclared:           "Name already declared in this scope",
		LowMalformedNode:        "Malformed tree node",
		LowArgCountOverflow:     "Too many call arguments",
		IRInfo:                  "IR information",
		IRInvalid:               "Invalid IR",
		IOLoadFileError:         "I/O load file error",
		IODecodeError:           "Cannot decode input",
		IOEncodeError:           "Cannot encode output",
		VMRuntimeError:          "Runtime error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("VM%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

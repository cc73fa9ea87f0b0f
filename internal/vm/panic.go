package vm

import (
	"fmt"
	"strings"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicUseBeforeInit  PanicCode = 1001 // VM1001: slot read before a store
	PanicUnknownName    PanicCode = 1002 // VM1002: name not bound anywhere
	PanicTypeMismatch   PanicCode = 1003 // VM1003: operand of the wrong shape
	PanicOutOfBounds    PanicCode = 1004 // VM1004: index out of range
	PanicMissingNative  PanicCode = 1005 // VM1005: extern or import without host implementation
	PanicStackUnderflow PanicCode = 1006 // VM1006: pop from an empty operand stack
	PanicDivByZero      PanicCode = 1007 // VM1007: integer division or modulo by zero
	PanicStepLimit      PanicCode = 1008 // VM1008: step budget exhausted
	PanicBadProgram     PanicCode = 1009 // VM1009: structurally invalid IR
	PanicUnimplemented  PanicCode = 1999 // VM1999: unimplemented opcode
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code      PanicCode
	Message   string
	Backtrace []string // function names from innermost to outermost
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its backtrace.
func (p *VMError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, fn := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s\n", i, fn)
		}
	}
	return sb.String()
}

func (vm *VM) panicf(code PanicCode, format string, args ...any) *VMError {
	e := &VMError{Code: code, Message: fmt.Sprintf(format, args...)}
	for i := len(vm.frames) - 1; i >= 0; i-- {
		e.Backtrace = append(e.Backtrace, vm.frames[i].Name)
	}
	return e
}

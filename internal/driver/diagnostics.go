package driver

import (
	"errors"

	"stackc/internal/diag"
	"stackc/internal/lower"
	"stackc/internal/source"
	"stackc/internal/vm"
)

// Diagnostic converts a pipeline error into a diagnostic for path.
// Lowering errors keep their code and node span; interpreter panics carry
// the backtrace as notes.
func Diagnostic(path string, err error) diag.Diagnostic {
	var le *lower.Error
	if errors.As(err, &le) {
		msg := le.Msg
		if le.Err != nil {
			msg += ": " + le.Err.Error()
		}
		return diag.Errorf(le.Code, path, le.Span, "%s", msg)
	}
	var ve *vm.VMError
	if errors.As(err, &ve) {
		d := diag.Errorf(diag.VMRuntimeError, path, source.Span{}, "%s: %s", ve.Code, ve.Message)
		for _, fn := range ve.Backtrace {
			d.Notes = append(d.Notes, diag.Note{Msg: "in " + fn})
		}
		return d
	}
	return diag.Errorf(diag.UnknownCode, path, source.Span{}, "%v", err)
}

package lower

import (
	"errors"
	"fmt"

	"stackc/internal/diag"
	"stackc/internal/source"
)

// Error is a lowering failure. Code is the small integer surfaced to
// callers; Span locates the node that failed.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("lower: %s: %s", e.Code.ID(), e.Msg)
	if e.Span.Known() {
		msg = fmt.Sprintf("lower: %s: %s: %s", e.Code.ID(), e.Span, e.Msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(code diag.Code, span source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...)}
}

func wrapf(code diag.Code, span source.Span, err error, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Msg: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the failure code from err, or diag.UnknownCode when err
// did not come from the engine.
func CodeOf(err error) diag.Code {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return diag.UnknownCode
}

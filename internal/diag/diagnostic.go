package diag

import (
	"fmt"

	"stackc/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one reported finding. Path names the compilation unit it
// belongs to; Primary locates it inside that unit when known.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Primary  source.Span
	Notes    []Note
}

// Errorf builds an error-severity diagnostic.
func Errorf(code Code, path string, span source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Primary:  span,
	}
}

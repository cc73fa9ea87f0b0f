package source

import (
	"fmt"
)

// FileID identifies an input file within one driver run.
type FileID uint32

type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
	Line  uint32 // 1-based, 0 when unknown
	Col   uint32 // 1-based, 0 when unknown
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Known reports whether the span carries a line position.
func (s Span) Known() bool {
	return s.Line != 0
}

func (s Span) String() string {
	if s.Known() {
		return fmt.Sprintf("%d:%d:%d", s.File, s.Line, s.Col)
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
		s.Line, s.Col = other.Line, other.Col
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

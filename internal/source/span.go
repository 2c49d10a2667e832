package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// NoSpan marks diagnostics located by something other than source text
// (a module name, a referenced assembly). It is the zero Span.
var NoSpan = Span{}

func (s Span) Empty() bool {
	return s.Start == s.End
}

// IsValid reports whether the span points into a real file.
func (s Span) IsValid() bool {
	return s.File != NoFileID
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if !s.IsValid() {
		return "<nospan>"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether other lies inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && other.Start >= s.Start && other.End <= s.End
}

// Compare orders spans by file, start, end. Invalid spans sort last.
func (s Span) Compare(other Span) int {
	switch sv, ov := s.IsValid(), other.IsValid(); {
	case sv != ov:
		if sv {
			return -1
		}
		return 1
	case s.File != other.File:
		if s.File < other.File {
			return -1
		}
		return 1
	case s.Start != other.Start:
		if s.Start < other.Start {
			return -1
		}
		return 1
	case s.End != other.End:
		if s.End < other.End {
			return -1
		}
		return 1
	}
	return 0
}

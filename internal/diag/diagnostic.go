package diag

import (
	"strings"

	"github.com/dotnet/roslyn-sub221/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding. Primary is source.NoSpan for findings that are
// located by a module or assembly; Location then carries its display name.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Args     []string
	Primary  source.Span
	Location string
	// Order is the declaration ordinal of the symbol the finding is about.
	// It breaks ties between diagnostics sharing a span.
	Order uint32
	Notes []Note
}

// New builds a diagnostic with the code's default severity and formatted message.
func New(code Code, primary source.Span, args ...string) *Diagnostic {
	return &Diagnostic{
		Severity: code.DefaultSeverity(),
		Code:     code,
		Message:  code.Format(args...),
		Args:     args,
		Primary:  primary,
	}
}

// HasSpan reports whether the diagnostic points at source text.
func (d *Diagnostic) HasSpan() bool {
	return d.Primary.IsValid()
}

func (d *Diagnostic) key() string {
	var b strings.Builder
	b.WriteString(d.Code.ID())
	b.WriteByte('|')
	b.WriteString(d.Primary.String())
	b.WriteByte('|')
	b.WriteString(d.Location)
	for _, a := range d.Args {
		b.WriteByte('|')
		b.WriteString(a)
	}
	return b.String()
}

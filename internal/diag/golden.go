package diag

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dotnet/roslyn-sub221/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Where    string
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and test assertions:
//
//	error CS0102 a.cs:3:7 The type 'C' already contains a definition for 'P'
//	error CS8007 <M2> Type 'X' forwarded to assembly 'A' conflicts with ...
//
// Input order is preserved; callers sort through Bag.Sort or Sink.Drain.
func FormatGoldenDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]goldenDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = appendDiagnostic(rendered, d, fs, includeNotes)
	}

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, d.Where, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Diagnostic, fs *source.FileSet, includeNotes bool) []goldenDiagnostic {
	out = append(out, goldenDiagnostic{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Where:    where(fs, d.Primary, d.Location),
		Message:  sanitizeMessage(d.Message),
	})
	if includeNotes {
		for _, note := range d.Notes {
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Where:    where(fs, note.Span, ""),
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}
	return out
}

func where(fs *source.FileSet, span source.Span, location string) string {
	if !span.IsValid() || fs == nil || fs.Get(span.File) == nil {
		if location == "" {
			location = "?"
		}
		return "<" + location + ">"
	}
	file := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	path := normalizePath(file.FormatPath("relative", fs.BaseDir()))
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

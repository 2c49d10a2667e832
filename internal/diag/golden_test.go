package diag

import (
	"testing"

	"github.com/dotnet/roslyn-sub221/internal/source"
)

func TestFormatGoldenDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("sample.cs", []byte("class C\n{\n  int P;\n}\n"))
	field, _ := fs.Locate(file, "P", 0)

	dup := New(ErrDuplicateNameInType, field, "C", "P")
	dup.Notes = []Note{{Span: source.Span{File: file, Start: 6, End: 7}, Msg: "previous definition\nis here"}}
	fwd := New(ErrForwardedTypesConflict, source.NoSpan, "X", "A", "X", "B")
	fwd.Location = "M2"

	expected := "error CS0102 sample.cs:3:7 The type 'C' already contains a definition for 'P'\n" +
		"note CS0102 sample.cs:1:7 previous definition is here\n" +
		"error CS8007 <M2> Type 'X' forwarded to assembly 'A' conflicts with type 'X' forwarded to assembly 'B'."

	if got := FormatGoldenDiagnostics([]*Diagnostic{dup, fwd}, fs, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

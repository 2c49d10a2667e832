package diagfmt

import (
	"fmt"
	"io"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
)

// MSBuild prints one line per diagnostic in the canonical compiler form
// understood by editors and CI log parsers:
//
//	a.cs(3,7): error CS0102: The type 'C' already contains a definition for 'P'
//	App.dll: error CS8006: Forwarded type 'N.X' conflicts with ...
func MSBuild(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) error {
	for _, d := range bag.Items() {
		loc, pos, ok := where(fs, d.Primary, d.Location, mode)
		if ok {
			loc = fmt.Sprintf("%s(%d,%d)", loc, pos.Line, pos.Col)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, d.Severity.Label(), d.Code.ID(), d.Message); err != nil {
			return err
		}
	}
	return nil
}

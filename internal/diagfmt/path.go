package diagfmt

import (
	"github.com/dotnet/roslyn-sub221/internal/source"
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return ""
	}
	switch mode {
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	default:
		return f.FormatPath(mode.String(), "")
	}
}

// where renders "path:line:col" for a span, or the fallback location
// (a module or assembly name) for findings that have none.
func where(fs *source.FileSet, span source.Span, fallback string, mode PathMode) (string, source.LineCol, bool) {
	if !span.IsValid() || fs == nil || fs.Get(span.File) == nil {
		if fallback == "" {
			fallback = "<unknown>"
		}
		return fallback, source.LineCol{}, false
	}
	start, _ := fs.Resolve(span)
	return formatPath(fs, span.File, mode), start, true
}

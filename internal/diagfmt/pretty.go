package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgWhite, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Диагностики без Span (экспорт модулей) печатаются с именем модуля.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		loc, pos, ok := where(fs, d.Primary, d.Location, opts.PathMode)
		if ok {
			loc = fmt.Sprintf("%s:%d:%d", loc, pos.Line, pos.Col)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			pal.path.Sprint(loc),
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			d.Message)
		if ok {
			writeSnippet(w, fs, d.Primary, opts, pal)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				nloc, npos, nok := where(fs, n.Span, "", opts.PathMode)
				if nok {
					nloc = fmt.Sprintf("%s:%d:%d", nloc, npos.Line, npos.Col)
				}
				fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), nloc, n.Msg)
				if nok && opts.Context > 0 {
					writeSnippet(w, fs, n.Span, opts, pal)
				}
			}
		}
	}
}

func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, pal palette) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		if ln > uint32(len(f.LineIdx))+1 {
			break
		}
		text := f.GetLine(ln)
		text = strings.ReplaceAll(text, "\t", " ")
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), text)
		if ln != start.Line {
			continue
		}
		prefix := text
		if int(start.Col-1) <= len(prefix) {
			prefix = prefix[:start.Col-1]
		}
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			width = max(runewidth.StringWidth(fs.Text(span)), 1)
		} else if end.Line > start.Line {
			width = max(runewidth.StringWidth(text)-runewidth.StringWidth(prefix), 1)
		}
		marker := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n",
			pal.gutter.Sprintf("%*s |", gutterWidth, ""),
			strings.Repeat(" ", runewidth.StringWidth(prefix)),
			pal.caret.Sprint(marker))
	}
}

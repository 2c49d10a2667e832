package diag

import "github.com/dotnet/roslyn-sub221/internal/source"

// Reporter: минимальный контракт получения диагностик от проходов.
// Реализации: Sink (потокобезопасный), BagReporter, DedupReporter.
type Reporter interface {
	Report(d *Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     *Diagnostic
	emitted  bool
}

// Report starts a diagnostic for code at primary with positional message arguments.
func Report(r Reporter, code Code, primary source.Span, args ...string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(code, primary, args...)}
}

// ReportAt starts a diagnostic located by a module or assembly display name.
func ReportAt(r Reporter, code Code, location string, args ...string) *ReportBuilder {
	d := New(code, source.NoSpan, args...)
	d.Location = location
	return &ReportBuilder{reporter: r, diag: d}
}

// Ordered sets the declaration ordinal used as a sort tiebreak.
func (b *ReportBuilder) Ordered(order uint32) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Order = order
	return b
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	if sp.IsValid() {
		b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	}
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() *Diagnostic {
	if b == nil {
		return nil
	}
	return b.diag
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d *Diagnostic) {
	if r.Bag == nil || d == nil {
		return
	}
	r.Bag.Add(d)
}

package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// CheckSymbolSpans runs a minimal set of span invariants on a compilation:
// 1) every source symbol span is non-empty and within its file's content
// 2) member spans live in the same file as the declaring type (partial
// members excepted, they may come from any part)
// 3) metadata symbols carry no span
func CheckSymbolSpans(comp *symbols.Compilation) error {
	if comp == nil {
		return fmt.Errorf("nil compilation")
	}
	for _, s := range comp.Symbols.All() {
		if !s.ID.IsValid() || s.Kind == symbols.KindNamespace {
			continue
		}
		if s.HasFlag(symbols.FlagFromMetadata) || !comp.IsSource(s.ID) {
			if s.Span.IsValid() {
				return fmt.Errorf("metadata symbol %s has span %v", comp.Display(s.ID), s.Span)
			}
			continue
		}
		if !s.Span.IsValid() {
			if s.HasFlag(symbols.FlagImplicit) {
				continue
			}
			return fmt.Errorf("source symbol %s has no span", comp.Display(s.ID))
		}
		sp := s.Span
		if sp.End <= sp.Start {
			return fmt.Errorf("empty span for %s: %v", comp.Display(s.ID), sp)
		}
		f := comp.Files.Get(sp.File)
		if f == nil {
			return fmt.Errorf("span of %s points to unknown file %d", comp.Display(s.ID), sp.File)
		}
		lenContent, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		if sp.End > lenContent {
			return fmt.Errorf("span end of %s beyond content: %d > %d", comp.Display(s.ID), sp.End, lenContent)
		}
		owner := comp.Sym(s.Container)
		if owner == nil || owner.Kind == symbols.KindNamespace || !owner.Span.IsValid() {
			continue
		}
		if owner.Is(symbols.ModPartial) || s.Is(symbols.ModPartial) {
			continue
		}
		if owner.Span.File != sp.File {
			return fmt.Errorf("member %s declared in file %d, its type in %d", comp.Display(s.ID), sp.File, owner.Span.File)
		}
	}
	return nil
}

// CheckDiagnosticOrder verifies what Drain promises: items sorted by
// diag.Compare, no duplicates, every code known and no more than the cap.
func CheckDiagnosticOrder(bag *diag.Bag) error {
	if bag == nil {
		return fmt.Errorf("nil bag")
	}
	items := bag.Items()
	if c := bag.Cap(); c > 0 && len(items) > c {
		return fmt.Errorf("bag holds %d diagnostics, cap %d", len(items), c)
	}
	for i, d := range items {
		if !d.Code.Known() {
			return fmt.Errorf("diagnostic %d has unknown code %d", i, d.Code)
		}
		if d.Message == "" {
			return fmt.Errorf("diagnostic %d (%s) has empty message", i, d.Code.ID())
		}
		if !d.HasSpan() && d.Location == "" {
			return fmt.Errorf("diagnostic %d (%s) has neither span nor location", i, d.Code.ID())
		}
		if i == 0 {
			continue
		}
		prev := items[i-1]
		switch c := diag.Compare(prev, d); {
		case c > 0:
			return fmt.Errorf("diagnostics %d and %d out of order: %s after %s", i-1, i, d.Code.ID(), prev.Code.ID())
		case c == 0 && prev.Message == d.Message:
			return fmt.Errorf("duplicate diagnostic %s at %d", d.Code.ID(), i)
		}
	}
	return nil
}

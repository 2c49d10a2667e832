package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// hides reports whether member m, declared in a derived type, hides the
// inherited member b viewed through subst.
func (c *checker) hides(m, b *symbols.Symbol, subst symbols.Subst) bool {
	if !c.sameLookupName(m, b) {
		return false
	}
	switch {
	case m.Kind == symbols.KindIndexer:
		return b.Kind == symbols.KindIndexer && sameSignature(m, b, subst, symbols.CompareExact)
	case m.Kind == symbols.KindMethod && b.Kind == symbols.KindMethod:
		return sameSignature(m, b, subst, symbols.CompareExact)
	case m.Kind == symbols.KindMethod:
		return true
	case m.Kind.IsType() && b.Kind.IsType():
		return m.Arity() == b.Arity()
	}
	return true
}

// hiddenMember finds the nearest accessible inherited member hidden by m.
func (c *checker) hiddenMember(typ symbols.SymbolID, m *symbols.Symbol) (*symbols.Symbol, bool) {
	for _, level := range c.baseLevels(typ, false) {
		for _, id := range c.sym(level.typ).Members {
			b := c.sym(id)
			if b.IsExplicitImpl() || b.HasFlag(symbols.FlagImplicit) {
				continue
			}
			if !c.comp.IsAccessibleFrom(b.ID, typ) {
				continue
			}
			if c.hides(m, b, level.subst) {
				return b, true
			}
		}
	}
	return nil, false
}

func (c *checker) hidingCandidate(m *symbols.Symbol) bool {
	switch m.Kind {
	case symbols.KindConstructor, symbols.KindDestructor, symbols.KindOperator:
		return false
	}
	return !m.IsExplicitImpl() && !m.Is(symbols.ModOverride) && !m.HasFlag(symbols.FlagImplicit)
}

// checkHiding: CS0108, CS0114, CS0109 and CS0533.
func (c *checker) checkHiding(typ symbols.SymbolID) {
	t := c.sym(typ)
	if t.Kind == symbols.KindEnum || t.Kind == symbols.KindDelegate {
		return
	}
	for _, id := range t.Members {
		m := c.sym(id)
		if !c.hidingCandidate(m) {
			continue
		}
		hidden, ok := c.hiddenMember(typ, m)
		isNew := m.Is(symbols.ModNew)
		switch {
		case !ok && isNew:
			c.reportOn(diag.WrnNewNotRequired, m.ID, c.display(m.ID))
		case ok && isNew:
			if hidden.Is(symbols.ModAbstract) && t.Kind != symbols.KindInterface {
				c.report(diag.ErrHidingAbstractMethod, m.Span, m.ID, c.display(m.ID), c.display(hidden.ID)).
					WithNote(hidden.Span, "hidden member is declared here").
					Emit()
			}
		case ok:
			code := diag.WrnNewRequired
			if hidden.Modifiers.Any(symbols.ModVirtual|symbols.ModAbstract|symbols.ModOverride) &&
				!hidden.IsStatic() && !m.IsStatic() && groupOf(hidden) == groupOf(m) {
				code = diag.WrnNewOrOverrideExpected
			}
			c.report(code, m.Span, m.ID, c.display(m.ID), c.display(hidden.ID)).
				WithNote(hidden.Span, "hidden member is declared here").
				Emit()
		}
	}
}

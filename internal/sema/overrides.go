package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// overrideLookup is the result of searching the base chain for the member
// an override replaces.
type overrideLookup struct {
	// found is the matching member of the same kind.
	found *symbols.Symbol
	// subst views found's containing type from the overrider's type.
	subst symbols.Subst
	// other is the nearest same-named member of a different kind, set when
	// nothing matched.
	other *symbols.Symbol
}

// overriddenMember searches the base classes nearest first. A level holding
// a same-named member of another kind stops the search.
func (c *checker) overriddenMember(m *symbols.Symbol) overrideLookup {
	if r, ok := c.overridden[m.ID]; ok {
		return r
	}
	r := c.findOverridden(m)
	c.overridden[m.ID] = r
	return r
}

func (c *checker) findOverridden(m *symbols.Symbol) overrideLookup {
	typ := m.Container
	t := c.sym(typ)
	if t.Kind != symbols.KindClass && t.Kind != symbols.KindStruct {
		return overrideLookup{}
	}
	group := groupOf(m)
	for _, level := range c.baseLevels(typ, false) {
		var other *symbols.Symbol
		for _, id := range c.sym(level.typ).Members {
			b := c.sym(id)
			if !c.sameLookupName(m, b) || !c.comp.IsAccessibleFrom(b.ID, typ) {
				continue
			}
			if groupOf(b) != group {
				if other == nil {
					other = b
				}
				continue
			}
			switch group {
			case groupMethod, groupIndexer:
				if sameSignature(m, b, level.subst, symbols.CompareExact) {
					return overrideLookup{found: b, subst: level.subst}
				}
			default:
				return overrideLookup{found: b, subst: level.subst}
			}
		}
		if other != nil {
			return overrideLookup{other: other}
		}
	}
	return overrideLookup{}
}

func isOverrideKind(s *symbols.Symbol) bool {
	switch s.Kind {
	case symbols.KindMethod, symbols.KindProperty, symbols.KindIndexer, symbols.KindEvent:
		return true
	}
	return false
}

// expectedOverrideAccess is the accessibility an override of b must declare.
// protected internal seen from another assembly becomes protected.
func (c *checker) expectedOverrideAccess(m symbols.SymbolID, b symbols.SymbolID, acc symbols.Accessibility) symbols.Accessibility {
	if acc == symbols.AccProtectedInternal && !c.comp.SameAssembly(m, b) {
		return symbols.AccProtected
	}
	return acc
}

// isBogus reports inherited members the language cannot override: flagged by
// the importer, or properties whose accessors disagree on virtuality or are
// more accessible than the property.
func (c *checker) isBogus(b *symbols.Symbol) bool {
	if b.HasFlag(symbols.FlagBogus) {
		return true
	}
	if !b.HasFlag(symbols.FlagFromMetadata) || !b.Kind.IsPropertyLike() {
		return false
	}
	const virt = symbols.ModVirtual | symbols.ModAbstract | symbols.ModOverride
	declared := c.comp.DeclaredAccessibility(b.ID)
	for i, a := range b.Accessors {
		if i > 0 && a.Modifiers.Any(virt) != b.Accessors[0].Modifiers.Any(virt) {
			return true
		}
		if acc, ok := symbols.AccessibilityOf(a.Modifiers); ok && declared.LessThan(acc) {
			return true
		}
	}
	return false
}

// checkOverrides validates every override declared in typ.
func (c *checker) checkOverrides(typ symbols.SymbolID) {
	t := c.sym(typ)
	if t.Kind != symbols.KindClass && t.Kind != symbols.KindStruct {
		return
	}
	for _, id := range t.Members {
		m := c.sym(id)
		if !m.Is(symbols.ModOverride) || m.IsStatic() || !isOverrideKind(m) || m.IsExplicitImpl() {
			continue
		}
		c.checkOverride(m)
	}
}

func (c *checker) checkOverride(m *symbols.Symbol) {
	r := c.overriddenMember(m)
	if r.found == nil {
		if r.other != nil {
			code := diag.ErrCantOverrideNonFunction
			switch m.Kind {
			case symbols.KindProperty, symbols.KindIndexer:
				code = diag.ErrCantOverrideNonProperty
			case symbols.KindEvent:
				code = diag.ErrOverrideNotEvent
			}
			c.reportOn(code, m.ID, c.display(m.ID), c.display(r.other.ID))
			return
		}
		c.reportOn(diag.ErrOverrideNotExpected, m.ID, c.display(m.ID))
		return
	}
	b := r.found
	switch {
	case c.isBogus(b):
		c.reportOn(diag.ErrCantOverrideBogusMethod, m.ID, c.display(m.ID), c.display(b.ID))
		return
	case b.IsStatic() || !b.Modifiers.Any(symbols.ModVirtual|symbols.ModAbstract|symbols.ModOverride):
		c.report(diag.ErrCantOverrideNonVirtual, m.Span, m.ID, c.display(m.ID), c.display(b.ID)).
			WithNote(b.Span, "overridden member is declared here").
			Emit()
		return
	case b.Is(symbols.ModSealed):
		c.report(diag.ErrCantOverrideSealed, m.Span, m.ID, c.display(m.ID), c.display(b.ID)).
			WithNote(b.Span, "overridden member is declared here").
			Emit()
		return
	}

	want := c.expectedOverrideAccess(m.ID, b.ID, c.comp.DeclaredAccessibility(b.ID))
	accessOK := c.comp.DeclaredAccessibility(m.ID) == want
	if !accessOK {
		c.reportOn(diag.ErrCantChangeAccessOnOverride, m.ID, c.display(m.ID), want.String(), c.display(b.ID))
	}
	if !sameReturn(m, b, r.subst) {
		expected := c.typeDisplay(memberSubst(m, b, r.subst).Apply(b.Sig.Return))
		code := diag.ErrCantChangeTypeOnOverride
		if m.Kind == symbols.KindMethod {
			code = diag.ErrCantChangeReturnTypeOnOverride
		}
		c.reportOn(code, m.ID, c.display(m.ID), expected, c.display(b.ID))
	}
	if m.Sig.RefReturn != b.Sig.RefReturn {
		c.reportOn(diag.ErrCantChangeRefReturnOnOverride, m.ID, c.display(m.ID), c.display(b.ID))
	}
	if m.Kind.IsPropertyLike() {
		c.checkOverrideAccessors(m, b, accessOK)
	}
}

// overriddenAccessor walks b and what b itself overrides until a property
// declaring accessor k is found.
func (c *checker) overriddenAccessor(b *symbols.Symbol, k symbols.AccessorKind) *symbols.Symbol {
	seen := make(map[symbols.SymbolID]struct{})
	for p := b; p != nil; {
		if _, ok := seen[p.ID]; ok {
			return nil
		}
		seen[p.ID] = struct{}{}
		if p.HasAccessor(k) {
			return p
		}
		if !p.Is(symbols.ModOverride) {
			return nil
		}
		p = c.overriddenMember(p).found
	}
	return nil
}

// checkOverrideAccessors: CS0545, CS0546, CS0239 and CS0507 per accessor.
func (c *checker) checkOverrideAccessors(m, b *symbols.Symbol, accessOK bool) {
	for _, a := range m.Accessors {
		if a.Kind != symbols.AccessorGet && a.Kind != symbols.AccessorSet {
			continue
		}
		at := a.Span
		if !at.IsValid() {
			at = m.Span
		}
		base := c.overriddenAccessor(b, a.Kind)
		if base == nil || c.comp.AccessorAccessibility(base.ID, a.Kind) == symbols.AccPrivate {
			code := diag.ErrNoGetToOverride
			if a.Kind == symbols.AccessorSet {
				code = diag.ErrNoSetToOverride
			}
			c.report(code, at, m.ID, c.comp.AccessorDisplay(m.ID, a.Kind), c.display(b.ID)).Emit()
			continue
		}
		if ba, _ := base.Accessor(a.Kind); ba.Modifiers.Has(symbols.ModSealed) {
			c.report(diag.ErrCantOverrideSealed, at, m.ID,
				c.comp.AccessorDisplay(m.ID, a.Kind), c.comp.AccessorDisplay(base.ID, a.Kind)).Emit()
			continue
		}
		if !accessOK {
			continue
		}
		want := c.expectedOverrideAccess(m.ID, base.ID, c.comp.AccessorAccessibility(base.ID, a.Kind))
		if got := c.comp.AccessorAccessibility(m.ID, a.Kind); got != want {
			c.report(diag.ErrCantChangeAccessOnOverride, at, m.ID,
				c.comp.AccessorDisplay(m.ID, a.Kind), want.String(), c.comp.AccessorDisplay(base.ID, a.Kind)).Emit()
		}
	}
}

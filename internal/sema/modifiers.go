package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// checkModifiers validates the modifiers of typ and its non-type members.
// Nested types get their own turn.
func (c *checker) checkModifiers(typ symbols.SymbolID) {
	t := c.sym(typ)
	c.checkDeclModifiers(t)
	c.checkTypeModifiers(t)
	for _, id := range t.Members {
		m := c.sym(id)
		if m.Kind.IsType() {
			continue
		}
		c.checkDeclModifiers(m)
		c.checkMemberModifiers(t, m)
		c.checkAccessorModifiers(m)
	}
}

// checkDeclModifiers: CS0106 per keyword not allowed here, CS1527 and CS0515.
func (c *checker) checkDeclModifiers(s *symbols.Symbol) {
	allowed := c.allowedModifiers(s)
	where := c.containerOf(s)
	staticCtor := s.Kind == symbols.KindConstructor && s.Is(symbols.ModStatic)
	namespaceAccess := false
	s.Modifiers.Each(func(mod symbols.Modifiers, name string) {
		switch {
		case where == inNamespace && s.Kind.IsType() && namespaceForbidden.Has(mod):
			namespaceAccess = true
			return
		case staticCtor && access.Has(mod):
			return
		case s.Kind == symbols.KindOperator && access.Has(mod):
			return
		case allowed.Has(mod):
			return
		}
		c.reportOn(diag.ErrBadMemberFlag, s.ID, name)
	})
	if namespaceAccess {
		c.reportOn(diag.ErrNoNamespacePrivate, s.ID)
	}
	if staticCtor && s.Modifiers.Any(access) {
		c.reportOn(diag.ErrStaticConstructorWithAccessModifiers, s.ID, c.display(s.ID))
	}
}

// checkTypeModifiers: CS0418 and CS0441.
func (c *checker) checkTypeModifiers(t *symbols.Symbol) {
	if t.Kind != symbols.KindClass {
		return
	}
	if t.Is(symbols.ModAbstract) && t.Modifiers.Any(symbols.ModSealed|symbols.ModStatic) {
		c.reportOn(diag.ErrAbstractSealedStatic, t.ID, c.display(t.ID))
	}
	if t.Is(symbols.ModStatic) && t.Is(symbols.ModSealed) {
		c.reportOn(diag.ErrSealedStaticClass, t.ID, c.display(t.ID))
	}
}

func memberKindWord(m *symbols.Symbol) string {
	switch m.Kind {
	case symbols.KindProperty:
		return "property"
	case symbols.KindIndexer:
		return "indexer"
	case symbols.KindEvent:
		return "event"
	}
	return "method"
}

func (c *checker) checkMemberModifiers(t, m *symbols.Symbol) {
	where := c.containerOf(m)
	name := c.display(m.ID)
	methodLike := m.Kind.IsMethodLike()
	virtualKind := isOverrideKind(m)

	if m.Is(symbols.ModAbstract) {
		if methodLike && m.HasBody() {
			c.reportOn(diag.ErrAbstractHasBody, m.ID, name)
		}
		if m.Is(symbols.ModVirtual) {
			c.reportOn(diag.ErrAbstractNotVirtual, m.ID, memberKindWord(m), name)
		}
		if m.Is(symbols.ModSealed) {
			c.reportOn(diag.ErrAbstractAndSealed, m.ID, name)
		}
		if m.Is(symbols.ModExtern) {
			c.reportOn(diag.ErrAbstractAndExtern, m.ID, name)
		}
		if m.Is(symbols.ModStatic) && where != inInterface {
			c.reportOn(diag.ErrStaticNotVirtual, m.ID, "abstract")
		}
		if where == inClass && !t.Is(symbols.ModAbstract) {
			c.reportOn(diag.ErrAbstractInConcreteClass, m.ID, name, c.display(t.ID))
		}
	}
	if where != inInterface && virtualKind {
		if m.Is(symbols.ModVirtual) && m.Is(symbols.ModStatic) {
			c.reportOn(diag.ErrStaticNotVirtual, m.ID, "virtual")
		}
		if m.Is(symbols.ModOverride) && m.Is(symbols.ModStatic) {
			c.reportOn(diag.ErrStaticNotVirtual, m.ID, "override")
		}
		if m.Modifiers.Any(symbols.ModVirtual|symbols.ModAbstract) && c.comp.DeclaredAccessibility(m.ID) == symbols.AccPrivate {
			c.reportOn(diag.ErrVirtualPrivate, m.ID, name)
		}
		if m.Is(symbols.ModSealed) && !m.Is(symbols.ModOverride) {
			c.reportOn(diag.ErrSealedNonOverride, m.ID, name)
		}
		if m.Is(symbols.ModVirtual) && where == inClass && t.Is(symbols.ModSealed) {
			c.reportOn(diag.ErrNewVirtualInSealed, m.ID, name, c.display(t.ID))
		}
	}
	if m.Is(symbols.ModOverride) && m.Modifiers.Any(symbols.ModNew|symbols.ModVirtual) {
		c.reportOn(diag.ErrOverrideNotNew, m.ID, name)
	}
	if methodLike && m.Is(symbols.ModExtern) && m.HasBody() {
		c.reportOn(diag.ErrExternHasBody, m.ID, name)
	}
	if methodLike && (where == inClass || where == inStruct) && !m.HasBody() &&
		!m.Modifiers.Any(symbols.ModAbstract|symbols.ModExtern|symbols.ModPartial) && !m.HasFlag(symbols.FlagImplicit) {
		c.reportOn(diag.ErrConcreteMissingBody, m.ID, name)
	}

	switch m.Kind {
	case symbols.KindOperator:
		if !m.Is(symbols.ModPublic|symbols.ModStatic) || m.Modifiers.Any(access&^symbols.ModPublic) {
			c.reportOn(diag.ErrOperatorsMustBeStatic, m.ID, name)
		}
	case symbols.KindField:
		if m.Is(symbols.ModReadonly | symbols.ModVolatile) {
			c.reportOn(diag.ErrVolatileAndReadonly, m.ID, name)
		}
	case symbols.KindDestructor:
		if where != inClass {
			c.reportOn(diag.ErrOnlyClassesCanContainDestructors, m.ID)
		}
	case symbols.KindConstructor:
		if m.Is(symbols.ModStatic) && len(m.Sig.Params) > 0 {
			c.reportOn(diag.ErrStaticConstParam, m.ID, c.display(t.ID))
		}
	}
	if where == inStruct && m.Is(symbols.ModProtected) && !m.Is(symbols.ModOverride) {
		c.reportOn(diag.ErrProtectedInStruct, m.ID, name)
	}
}

// checkAccessorModifiers: CS0106, CS0500 and CS0179 on accessor bodies,
// and CS0273, CS0274, CS0276 and CS0442 for accessor accessibility.
func (c *checker) checkAccessorModifiers(m *symbols.Symbol) {
	if len(m.Accessors) == 0 {
		return
	}
	var restricted []symbols.Accessor
	for _, a := range m.Accessors {
		at := a.Span
		if !at.IsValid() {
			at = m.Span
		}
		extra := a.Modifiers
		if m.Kind != symbols.KindEvent {
			extra &^= access
		}
		extra.Each(func(_ symbols.Modifiers, name string) {
			c.report(diag.ErrBadMemberFlag, at, m.ID, name).Emit()
		})
		if m.Is(symbols.ModAbstract) && a.HasBody {
			c.report(diag.ErrAbstractHasBody, at, m.ID, c.comp.AccessorDisplay(m.ID, a.Kind)).Emit()
		}
		if m.Is(symbols.ModExtern) && a.HasBody {
			c.report(diag.ErrExternHasBody, at, m.ID, c.comp.AccessorDisplay(m.ID, a.Kind)).Emit()
		}
		if m.Kind != symbols.KindEvent && a.Modifiers.Any(access) {
			restricted = append(restricted, a)
		}
	}
	if len(restricted) == 0 {
		return
	}
	name := c.display(m.ID)
	switch {
	case len(m.Accessors) < 2:
		c.reportOn(diag.ErrAccessModMissingAccessor, m.ID, name)
		return
	case len(restricted) > 1:
		c.reportOn(diag.ErrDuplicatePropertyAccessMods, m.ID, name)
		return
	}
	a := restricted[0]
	at := a.Span
	if !at.IsValid() {
		at = m.Span
	}
	acc, _ := symbols.AccessibilityOf(a.Modifiers)
	if !acc.LessThan(c.comp.DeclaredAccessibility(m.ID)) {
		c.report(diag.ErrInvalidPropertyAccessMod, at, m.ID, c.comp.AccessorDisplay(m.ID, a.Kind), name).Emit()
	}
	if m.Is(symbols.ModAbstract) && acc == symbols.AccPrivate {
		c.report(diag.ErrPrivateAbstractAccessor, at, m.ID, c.comp.AccessorDisplay(m.ID, a.Kind)).Emit()
	}
}

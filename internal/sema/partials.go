package sema

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

const extendedMods = symbols.ModVirtual | symbols.ModOverride | symbols.ModSealed | symbols.ModNew

// partialKey groups the parts of one partial member: same kind, name,
// arity and parameter types. Ref kinds are compared afterwards.
func (c *checker) partialKey(m *symbols.Symbol) string {
	var b strings.Builder
	if m.Kind == symbols.KindMethod {
		b.WriteString("M:")
	} else {
		b.WriteString("P:")
	}
	name := m.Name
	if m.Kind == symbols.KindIndexer {
		name = "this[]"
	}
	b.WriteString(c.comp.FoldName(name))
	b.WriteByte('`')
	b.WriteString(strconv.Itoa(m.Arity()))
	norm := symbols.MethodTypeParamMap(m.ID, symbols.NoSymbolID, m.Arity())
	for _, p := range m.Sig.Params {
		b.WriteByte('|')
		b.WriteString(norm.Apply(p.Type).Key())
	}
	return b.String()
}

// checkPartials groups partial members of typ and validates each group.
func (c *checker) checkPartials(typ symbols.SymbolID) {
	t := c.sym(typ)
	var order []string
	groups := make(map[string][]*symbols.Symbol)
	for _, id := range t.Members {
		m := c.sym(id)
		if !m.Is(symbols.ModPartial) || (m.Kind != symbols.KindMethod && !m.Kind.IsPropertyLike()) {
			continue
		}
		if !t.Is(symbols.ModPartial) {
			c.reportOn(diag.ErrPartialMemberOnlyInPartialClass, m.ID)
		}
		if m.Is(symbols.ModAbstract) {
			c.reportOn(diag.ErrPartialMemberCannotBeAbstract, m.ID)
		}
		if m.IsExplicitImpl() {
			c.reportOn(diag.ErrPartialMemberNotExplicit, m.ID)
			continue
		}
		key := c.partialKey(m)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}
	for _, key := range order {
		parts := groups[key]
		if parts[0].Kind == symbols.KindMethod {
			c.checkPartialMethod(parts)
		} else {
			c.checkPartialProperty(parts)
		}
	}
}

func (c *checker) isVoid(r symbols.TypeRef) bool {
	return r.IsNone() || r.Kind == symbols.RefNamed && c.comp.IsSpecial(r.Symbol, symbols.SpecialVoid)
}

func (c *checker) checkPartialMethod(parts []*symbols.Symbol) {
	var defs, impls []*symbols.Symbol
	for _, p := range parts {
		if p.HasBody() || p.Is(symbols.ModExtern) {
			impls = append(impls, p)
		} else {
			defs = append(defs, p)
		}
	}
	for _, d := range tail(defs) {
		c.reportOn(diag.ErrPartialMethodOnlyOneLatent, d.ID)
	}
	for _, i := range tail(impls) {
		c.reportOn(diag.ErrPartialMethodOnlyOneActual, i.ID)
	}
	if len(defs) == 0 {
		for _, i := range impls {
			c.reportOn(diag.ErrPartialMethodMustHaveLatent, i.ID, c.display(i.ID))
		}
	}
	for _, p := range parts {
		c.checkPartialAccessRequirement(p)
	}
	if len(defs) == 0 {
		return
	}
	def := defs[0]
	if len(impls) == 0 {
		if def.Modifiers.Any(access) {
			c.reportOn(diag.ErrPartialMethodWithAccessibilityModsMustHaveImplementation, def.ID, c.display(def.ID))
		}
		return
	}
	c.comparePartialMethods(def, impls[0])
}

func tail(parts []*symbols.Symbol) []*symbols.Symbol {
	if len(parts) < 2 {
		return nil
	}
	return parts[1:]
}

// checkPartialAccessRequirement: a part without accessibility modifiers
// must return void, have no out parameters and no extended modifiers.
// Only the first unmet requirement is reported.
func (c *checker) checkPartialAccessRequirement(p *symbols.Symbol) {
	if p.Modifiers.Any(access) {
		return
	}
	name := c.display(p.ID)
	switch {
	case !c.isVoid(p.Sig.Return):
		c.reportOn(diag.ErrPartialMethodWithNonVoidReturnMustHaveAccessMods, p.ID, name)
	case p.Sig.HasOutParam():
		c.reportOn(diag.ErrPartialMethodWithOutParamMustHaveAccessMods, p.ID, name)
	case p.Modifiers.Any(extendedMods | symbols.ModExtern):
		c.reportOn(diag.ErrPartialMethodWithExtendedModMustHaveAccessMods, p.ID, name)
	}
}

// comparePartialModifiers reports modifier differences shared by partial
// methods and properties, on the implementing part.
func (c *checker) comparePartialModifiers(def, impl *symbols.Symbol) {
	diff := def.Modifiers ^ impl.Modifiers
	if diff.Any(symbols.ModStatic) {
		c.reportOn(diag.ErrPartialMemberStaticDifference, impl.ID)
	}
	if diff.Any(symbols.ModUnsafe) {
		c.reportOn(diag.ErrPartialMemberUnsafeDifference, impl.ID)
	}
	if diff.Any(access) {
		c.reportOn(diag.ErrPartialMemberAccessibilityDifference, impl.ID)
	}
	if diff.Any(extendedMods) {
		c.reportOn(diag.ErrPartialMemberExtendedModDifference, impl.ID)
	}
	if diff.Any(symbols.ModReadonly) {
		c.reportOn(diag.ErrPartialMemberReadOnlyDifference, impl.ID)
	}
	if def.Sig.RefReturn != impl.Sig.RefReturn {
		c.reportOn(diag.ErrPartialMemberRefReturnDifference, impl.ID)
	}
}

func (c *checker) comparePartialMethods(def, impl *symbols.Symbol) {
	if def.Sig.HasParamsArray() != impl.Sig.HasParamsArray() {
		c.reportOn(diag.ErrPartialMethodParamsDifference, impl.ID)
	}
	if def.HasFlag(symbols.FlagExtension) != impl.HasFlag(symbols.FlagExtension) {
		c.reportOn(diag.ErrPartialMethodExtensionDifference, impl.ID)
	}
	if !sameSignature(def, impl, nil, symbols.CompareExact) {
		c.reportOn(diag.ErrPartialMemberRefKindDifference, impl.ID, c.display(impl.ID))
	}
	c.comparePartialModifiers(def, impl)
	if !sameReturn(def, impl, nil) {
		c.reportOn(diag.ErrPartialMethodReturnTypeDifference, impl.ID)
	}
	toDef := symbols.MethodTypeParamMap(impl.ID, def.ID, impl.Arity())
	for i := range def.TypeParams {
		if !sameConstraints(def.TypeParams[i].Constraints, substConstraints(impl.TypeParams[i].Constraints, toDef)) {
			c.reportOn(diag.ErrPartialMethodInconsistentConstraints, impl.ID, c.display(impl.ID), impl.TypeParams[i].Name)
		}
	}
}

func refKeys(refs []symbols.TypeRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Key()
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func sameConstraints(a, b symbols.ConstraintSet) bool {
	if a.Class != b.Class || a.New != b.New {
		return false
	}
	switch {
	case a.BaseType == nil && b.BaseType == nil:
	case a.BaseType == nil || b.BaseType == nil:
		return false
	case !a.BaseType.Equal(*b.BaseType):
		return false
	}
	return slices.Equal(refKeys(a.Interfaces), refKeys(b.Interfaces)) &&
		slices.Equal(refKeys(a.TypeParams), refKeys(b.TypeParams))
}

func isPropertyImpl(p *symbols.Symbol) bool {
	if p.Is(symbols.ModExtern) {
		return true
	}
	for _, a := range p.Accessors {
		if a.HasBody {
			return true
		}
	}
	return false
}

func (c *checker) checkPartialProperty(parts []*symbols.Symbol) {
	var defs, impls []*symbols.Symbol
	for _, p := range parts {
		if isPropertyImpl(p) {
			impls = append(impls, p)
		} else {
			defs = append(defs, p)
		}
	}
	for _, d := range tail(defs) {
		c.reportOn(diag.ErrPartialPropertyDuplicateDefinition, d.ID)
	}
	for _, i := range tail(impls) {
		c.reportOn(diag.ErrPartialPropertyDuplicateImplementation, i.ID)
	}
	switch {
	case len(defs) == 0:
		for _, i := range impls {
			c.reportOn(diag.ErrPartialPropertyMissingDefinition, i.ID, c.display(i.ID))
		}
		return
	case len(impls) == 0:
		for _, d := range defs {
			c.reportOn(diag.ErrPartialPropertyMissingImplementation, d.ID, c.display(d.ID))
		}
		return
	}
	def, impl := defs[0], impls[0]
	for _, a := range def.Accessors {
		if !impl.HasAccessor(a.Kind) {
			c.reportOn(diag.ErrPartialPropertyMissingAccessor, impl.ID, c.comp.AccessorDisplay(def.ID, a.Kind))
		}
	}
	for _, a := range impl.Accessors {
		if def.HasAccessor(a.Kind) {
			da, _ := def.Accessor(a.Kind)
			if (da.Modifiers^a.Modifiers)&access != 0 {
				c.reportOn(diag.ErrPartialMemberAccessibilityDifference, impl.ID)
			}
			continue
		}
		at := a.Span
		if !at.IsValid() {
			at = impl.Span
		}
		c.report(diag.ErrPartialPropertyUnexpectedAccessor, at, impl.ID, c.comp.AccessorDisplay(impl.ID, a.Kind)).Emit()
	}
	c.comparePartialModifiers(def, impl)
	if !sameReturn(def, impl, nil) {
		c.reportOn(diag.ErrPartialPropertyTypeDifference, impl.ID)
	}
	if !sameSignature(def, impl, nil, symbols.CompareExact) {
		c.reportOn(diag.ErrPartialMemberRefKindDifference, impl.ID, c.display(impl.ID))
	}
}

package symbols

// BaseRef returns the base class reference of a type, explicit or implied
// by its kind. Interfaces and object have none.
func (c *Compilation) BaseRef(id SymbolID) (TypeRef, bool) {
	s := c.MustSym(id)
	switch s.Kind {
	case KindInterface, KindNamespace:
		return TypeRef{}, false
	case KindStruct:
		return c.SpecialRef(SpecialValueType), true
	case KindEnum:
		return c.SpecialRef(SpecialEnum), true
	case KindDelegate:
		return c.SpecialRef(SpecialMulticastDelegate), true
	case KindClass:
		if s.Base != nil {
			return *s.Base, true
		}
		if c.IsSpecial(id, SpecialObject) {
			return TypeRef{}, false
		}
		return c.SpecialRef(SpecialObject), true
	}
	return TypeRef{}, false
}

// Based is one step of a base chain. Ref is the base as seen from the
// starting type; Subst maps the base type's own type parameters.
type Based struct {
	Type  SymbolID
	Ref   TypeRef
	Subst Subst
}

// BaseChain lists the base classes of a type, nearest first. Cyclic base
// lists (already reported by the binder) are cut at the repetition.
func (c *Compilation) BaseChain(id SymbolID) []Based {
	var out []Based
	visited := map[SymbolID]struct{}{id: {}}
	var subst Subst
	cur := id
	for {
		ref, ok := c.BaseRef(cur)
		if !ok || ref.Kind != RefNamed {
			return out
		}
		ref = subst.Apply(ref)
		if _, seen := visited[ref.Symbol]; seen {
			return out
		}
		visited[ref.Symbol] = struct{}{}
		subst = Subst(nil).Bind(ref.Symbol, ref.Args)
		out = append(out, Based{Type: ref.Symbol, Ref: ref, Subst: subst})
		cur = ref.Symbol
	}
}

// DerivesFrom reports whether base is a proper base class of id.
func (c *Compilation) DerivesFrom(id, base SymbolID) bool {
	for _, b := range c.BaseChain(id) {
		if b.Type == base {
			return true
		}
	}
	return false
}

// AllInterfaces lists every interface a type implements: its own, those its
// interfaces inherit, and those of its base classes, expressed in terms of
// the type's own type parameters. Duplicates are dropped; order is stable.
func (c *Compilation) AllInterfaces(id SymbolID) []TypeRef {
	var out []TypeRef
	seen := make(map[string]struct{})
	var add func(ref TypeRef)
	add = func(ref TypeRef) {
		if ref.Kind != RefNamed {
			return
		}
		key := ref.Key()
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		iface := c.MustSym(ref.Symbol)
		if iface.Kind != KindInterface {
			return
		}
		out = append(out, ref)
		sub := Subst(nil).Bind(iface.ID, ref.Args)
		for _, inh := range iface.Interfaces {
			add(sub.Apply(inh))
		}
	}
	for _, r := range c.MustSym(id).Interfaces {
		add(r)
	}
	for _, b := range c.BaseChain(id) {
		for _, r := range c.MustSym(b.Type).Interfaces {
			add(b.Subst.Apply(r))
		}
	}
	return out
}

// Supertypes lists the base classes and interfaces of a constructed named
// type, each substituted with the reference's type arguments.
func (c *Compilation) Supertypes(ref TypeRef) []TypeRef {
	if ref.Kind != RefNamed {
		return nil
	}
	outer := Subst(nil).Bind(ref.Symbol, ref.Args)
	var out []TypeRef
	for _, b := range c.BaseChain(ref.Symbol) {
		out = append(out, outer.Apply(b.Ref))
	}
	for _, i := range c.AllInterfaces(ref.Symbol) {
		out = append(out, outer.Apply(i))
	}
	return out
}

// ImplementsInterface reports whether id (through any path) implements iface.
func (c *Compilation) ImplementsInterface(id SymbolID, iface TypeRef) bool {
	for _, r := range c.AllInterfaces(id) {
		if r.Equal(iface) {
			return true
		}
	}
	return false
}

// IsNestedIn reports whether id is (transitively) nested inside outer.
func (c *Compilation) IsNestedIn(id, outer SymbolID) bool {
	for s := c.Sym(id); s != nil && s.Container.IsValid(); s = c.Sym(s.Container) {
		if s.Container == outer {
			return true
		}
	}
	return false
}

// ContainingType returns the type that owns a member or nested type.
func (c *Compilation) ContainingType(id SymbolID) SymbolID {
	s := c.MustSym(id)
	if p := c.Sym(s.Container); p != nil && p.Kind.IsType() {
		return p.ID
	}
	return NoSymbolID
}

// DeclaredAccessibility applies the language defaults to explicit modifiers.
func (c *Compilation) DeclaredAccessibility(id SymbolID) Accessibility {
	s := c.MustSym(id)
	if acc, ok := AccessibilityOf(s.Modifiers); ok {
		return acc
	}
	if s.Kind == KindNamespace {
		return AccPublic
	}
	parent := c.MustSym(s.Container)
	switch {
	case parent.Kind == KindNamespace:
		return AccInternal
	case parent.Kind == KindInterface:
		return AccPublic
	case s.Kind == KindDestructor:
		return AccProtected
	}
	return AccPrivate
}

// AccessorAccessibility is the accessor's own accessibility or its member's.
func (c *Compilation) AccessorAccessibility(id SymbolID, k AccessorKind) Accessibility {
	s := c.MustSym(id)
	if a, ok := s.Accessor(k); ok {
		if acc, explicit := AccessibilityOf(a.Modifiers); explicit {
			return acc
		}
	}
	return c.DeclaredAccessibility(id)
}

// EffectiveAccessibility restricts the declared accessibility by every
// containing type.
func (c *Compilation) EffectiveAccessibility(id SymbolID) Accessibility {
	acc := c.DeclaredAccessibility(id)
	for p := c.Sym(c.MustSym(id).Container); p != nil && p.Kind.IsType(); p = c.Sym(p.Container) {
		acc = acc.Restrict(c.DeclaredAccessibility(p.ID))
	}
	return acc
}

// RefAccessibility is the effective accessibility of a type reference: the
// most restrictive of every named type it mentions.
func (c *Compilation) RefAccessibility(ref TypeRef) (Accessibility, SymbolID) {
	acc, worst := AccPublic, NoSymbolID
	ref.Walk(func(r TypeRef) {
		if r.Kind != RefNamed {
			return
		}
		if a := c.EffectiveAccessibility(r.Symbol); a.LessThan(acc) {
			acc, worst = a, r.Symbol
		}
	})
	return acc, worst
}

// IsAccessibleFrom reports whether member can be seen from code in type from.
func (c *Compilation) IsAccessibleFrom(member, from SymbolID) bool {
	owner := c.MustSym(member).Container
	switch c.DeclaredAccessibility(member) {
	case AccPublic:
		return true
	case AccInternal:
		return c.SameAssembly(member, from)
	case AccPrivate:
		return from == owner || c.IsNestedIn(from, owner)
	case AccProtected:
		return c.insideOrDerived(from, owner)
	case AccProtectedInternal:
		return c.SameAssembly(member, from) || c.insideOrDerived(from, owner)
	case AccPrivateProtected:
		return c.SameAssembly(member, from) && c.insideOrDerived(from, owner)
	}
	return false
}

func (c *Compilation) insideOrDerived(from, owner SymbolID) bool {
	for t := c.Sym(from); t != nil && t.Kind.IsType(); t = c.Sym(t.Container) {
		if t.ID == owner || c.DerivesFrom(t.ID, owner) {
			return true
		}
	}
	return false
}

// IsSealedType reports types that cannot be derived from.
func (c *Compilation) IsSealedType(id SymbolID) bool {
	s := c.MustSym(id)
	switch s.Kind {
	case KindStruct, KindEnum, KindDelegate:
		return true
	case KindClass:
		return s.Modifiers.Any(ModSealed | ModStatic)
	}
	return false
}

// IsStaticClass reports a class declared static.
func (c *Compilation) IsStaticClass(id SymbolID) bool {
	s := c.MustSym(id)
	return s.Kind == KindClass && s.Is(ModStatic)
}

// IsValueTypeSymbol reports structs and enums.
func (c *Compilation) IsValueTypeSymbol(id SymbolID) bool {
	k := c.MustSym(id).Kind
	return k == KindStruct || k == KindEnum
}

// HasPublicParameterlessConstructor reports whether new T() is allowed for a
// named type. Source classes without instance constructors get an implicit one.
func (c *Compilation) HasPublicParameterlessConstructor(id SymbolID) bool {
	s := c.MustSym(id)
	switch s.Kind {
	case KindStruct, KindEnum:
		return true
	case KindClass:
	default:
		return false
	}
	if s.Modifiers.Any(ModAbstract | ModStatic) {
		return false
	}
	declared := false
	for _, m := range s.Members {
		ctor := c.MustSym(m)
		if ctor.Kind != KindConstructor || ctor.IsStatic() {
			continue
		}
		declared = true
		if len(ctor.Sig.Params) == 0 && c.DeclaredAccessibility(m) == AccPublic {
			return true
		}
	}
	return !declared && (c.IsSource(id) || c.IsSpecial(id, SpecialObject))
}

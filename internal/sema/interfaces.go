package sema

import (
	"strconv"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

func isImplementable(s *symbols.Symbol) bool {
	switch s.Kind {
	case symbols.KindMethod, symbols.KindProperty, symbols.KindIndexer, symbols.KindEvent:
		return !s.IsStatic() && !s.IsExplicitImpl()
	}
	return false
}

func substParams(params []symbols.Param, s symbols.Subst) []symbols.Param {
	if len(s) == 0 {
		return params
	}
	out := make([]symbols.Param, len(params))
	for i, p := range params {
		p.Type = s.Apply(p.Type)
		out[i] = p
	}
	return out
}

// explicitTarget finds the interface member an explicit implementation
// names. loose counts members matching when ref, out and in are treated
// alike.
func (c *checker) explicitTarget(m *symbols.Symbol) (target *symbols.Symbol, subst symbols.Subst, loose int) {
	ref := *m.ExplicitInterface
	iface := c.comp.Sym(ref.Symbol)
	if ref.Kind != symbols.RefNamed || iface == nil || iface.Kind != symbols.KindInterface {
		return nil, nil, 0
	}
	subst = symbols.Subst(nil).Bind(iface.ID, ref.Args)
	group := groupOf(m)
	for _, id := range iface.Members {
		im := c.sym(id)
		if !isImplementable(im) || groupOf(im) != group {
			continue
		}
		if group != groupIndexer && !c.comp.SameName(im.Name, m.Name) {
			continue
		}
		switch group {
		case groupMethod, groupIndexer:
			if !sameSignature(m, im, subst, symbols.CompareMetadata) {
				continue
			}
			loose++
			if target == nil && sameSignature(m, im, subst, symbols.CompareExact) &&
				sameReturn(m, im, subst) && m.Sig.RefReturn == im.Sig.RefReturn {
				target = im
			}
		default:
			if target == nil && sameReturn(m, im, subst) {
				target = im
			}
		}
	}
	return target, subst, loose
}

func implKey(member symbols.SymbolID, iface symbols.TypeRef) string {
	return strconv.FormatUint(uint64(member), 10) + "|" + iface.Key()
}

// checkExplicitImpls: CS0538, CS0540, CS0539, CS0473, CS0550 and CS8646.
func (c *checker) checkExplicitImpls(typ symbols.SymbolID) {
	t := c.sym(typ)
	seen := make(map[string]struct{})
	for _, id := range t.Members {
		m := c.sym(id)
		if !m.IsExplicitImpl() {
			continue
		}
		ref := *m.ExplicitInterface
		at := ref.Span
		if !at.IsValid() {
			at = m.Span
		}
		if iface := c.comp.Sym(ref.Symbol); ref.Kind != symbols.RefNamed || iface == nil || iface.Kind != symbols.KindInterface {
			c.report(diag.ErrExplicitInterfaceNotInterface, at, m.ID, c.typeDisplay(ref)).Emit()
			continue
		}
		if !c.comp.ImplementsInterface(typ, ref) {
			c.report(diag.ErrClassDoesntImplementInterface, at, m.ID, c.display(m.ID), c.typeDisplay(ref)).Emit()
			continue
		}
		target, _, loose := c.explicitTarget(m)
		if target == nil {
			c.reportOn(diag.ErrInterfaceMemberNotFound, m.ID, c.display(m.ID))
			continue
		}
		if loose > 1 {
			c.reportOn(diag.WrnExplicitImplCollision, m.ID, c.display(m.ID))
		}
		key := implKey(target.ID, ref)
		if _, dup := seen[key]; dup {
			c.reportOn(diag.ErrDuplicateExplicitImpl, m.ID, c.typeDisplay(ref)+"."+c.comp.MemberDisplay(target.ID))
			continue
		}
		seen[key] = struct{}{}
		for _, a := range m.Accessors {
			if target.HasAccessor(a.Kind) {
				continue
			}
			span := a.Span
			if !span.IsValid() {
				span = m.Span
			}
			c.report(diag.ErrExplicitPropertyAddingAccessor, span, m.ID,
				c.comp.AccessorDisplay(m.ID, a.Kind), c.display(target.ID)).Emit()
		}
	}
}

// explicitImplIndex lists the interface members explicitly implemented by
// typ or its base classes, keyed by implKey in typ's terms.
func (c *checker) explicitImplIndex(typ symbols.SymbolID) map[string]struct{} {
	out := make(map[string]struct{})
	for _, level := range c.baseLevels(typ, true) {
		for _, id := range c.sym(level.typ).Members {
			m := c.sym(id)
			if !m.IsExplicitImpl() {
				continue
			}
			target, _, _ := c.explicitTarget(m)
			if target == nil {
				continue
			}
			out[implKey(target.ID, level.subst.Apply(*m.ExplicitInterface))] = struct{}{}
		}
	}
	return out
}

// interfaceSpan is where typ lists iface, or typ's own span when the
// interface is inherited.
func (c *checker) interfaceSpan(t *symbols.Symbol, iface symbols.TypeRef) source.Span {
	for _, r := range t.Interfaces {
		if r.Equal(iface) && r.Span.IsValid() {
			return r.Span
		}
	}
	return t.Span
}

// checkInterfaceImpls: CS0535, CS0736, CS0737 and CS0738. Interfaces a base
// class already brings are its business unless typ lists them again.
func (c *checker) checkInterfaceImpls(typ symbols.SymbolID) {
	t := c.sym(typ)
	if t.Kind != symbols.KindClass && t.Kind != symbols.KindStruct {
		return
	}
	all := c.comp.AllInterfaces(typ)
	if len(all) == 0 {
		return
	}
	inherited := make(map[string]struct{})
	if chain := c.comp.BaseChain(typ); len(chain) > 0 {
		for _, r := range c.comp.AllInterfaces(chain[0].Type) {
			inherited[chain[0].Subst.Apply(r).Key()] = struct{}{}
		}
	}
	direct := make(map[string]struct{}, len(t.Interfaces))
	for _, r := range t.Interfaces {
		direct[r.Key()] = struct{}{}
	}
	explicit := c.explicitImplIndex(typ)
	for _, ref := range all {
		key := ref.Key()
		_, inh := inherited[key]
		_, dir := direct[key]
		if inh && !dir {
			continue
		}
		iface := c.sym(ref.Symbol)
		subst := symbols.Subst(nil).Bind(iface.ID, ref.Args)
		at := c.interfaceSpan(t, ref)
		for _, id := range iface.Members {
			im := c.sym(id)
			if !isImplementable(im) || im.HasBody() || im.HasFlag(symbols.FlagDefaultImpl) {
				continue
			}
			if _, ok := explicit[implKey(im.ID, ref)]; ok {
				continue
			}
			c.checkImplicitImpl(t, im, subst, at)
		}
	}
}

// implementsSignature compares candidate x (seen through xs) with interface member
// im (seen through is). Returns are compared separately.
func (c *checker) implementsSignature(x *symbols.Symbol, xs symbols.Subst, im *symbols.Symbol, is symbols.Subst) bool {
	if x.Arity() != im.Arity() {
		return false
	}
	return symbols.SameParams(substParams(x.Sig.Params, xs), substParams(im.Sig.Params, memberSubst(x, im, is)), nil, symbols.CompareExact)
}

func (c *checker) checkImplicitImpl(t *symbols.Symbol, im *symbols.Symbol, subst symbols.Subst, at source.Span) {
	var closest *symbols.Symbol
	var closestCode diag.Code
	expected := subst.Apply(im.Sig.Return)
	for _, level := range c.baseLevels(t.ID, true) {
		for _, id := range c.sym(level.typ).Members {
			x := c.sym(id)
			if x.IsExplicitImpl() || groupOf(x) != groupOf(im) || !c.sameLookupName(x, im) {
				continue
			}
			if !c.implementsSignature(x, level.subst, im, subst) {
				continue
			}
			ret := level.subst.Apply(x.Sig.Return)
			want := memberSubst(x, im, subst).Apply(im.Sig.Return)
			var code diag.Code
			switch {
			case x.IsStatic():
				code = diag.ErrInterfaceMemberStatic
			case c.comp.DeclaredAccessibility(x.ID) != symbols.AccPublic:
				code = diag.ErrInterfaceMemberNotPublic
			case !ret.Equal(want) || x.Sig.RefReturn != im.Sig.RefReturn:
				code = diag.ErrInterfaceMemberWrongReturnType
			default:
				c.checkImplAccessors(t, im, x, at)
				return
			}
			if closest == nil {
				closest, closestCode = x, code
			}
		}
	}
	switch {
	case closest == nil:
		c.report(diag.ErrUnimplementedInterfaceMember, at, t.ID, c.display(t.ID), c.display(im.ID)).Emit()
	case closestCode == diag.ErrInterfaceMemberWrongReturnType:
		c.report(closestCode, at, t.ID, c.display(t.ID), c.display(im.ID), c.display(closest.ID), c.typeDisplay(expected)).Emit()
	default:
		c.report(closestCode, at, t.ID, c.display(t.ID), c.display(im.ID), c.display(closest.ID)).Emit()
	}
}

// checkImplAccessors reports interface accessors the implementing property
// lacks.
func (c *checker) checkImplAccessors(t, im, x *symbols.Symbol, at source.Span) {
	if !im.Kind.IsPropertyLike() {
		return
	}
	for _, a := range im.Accessors {
		if !x.HasAccessor(a.Kind) {
			c.report(diag.ErrUnimplementedInterfaceMember, at, t.ID, c.display(t.ID), c.comp.AccessorDisplay(im.ID, a.Kind)).Emit()
		}
	}
}

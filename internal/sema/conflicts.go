package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

type memberPair [2]symbols.SymbolID

func pairOf(a, b symbols.SymbolID) memberPair {
	if a > b {
		a, b = b, a
	}
	return memberPair{a, b}
}

// checkMemberConflicts reports collisions among members declared directly in
// one type. Inherited members are the business of checkHiding.
func (c *checker) checkMemberConflicts(typ symbols.SymbolID) {
	t := c.sym(typ)
	if len(t.Members) == 0 {
		return
	}
	collided := make(map[memberPair]struct{})
	c.checkNameSlots(t, collided)
	c.checkSignatures(t)
	c.checkReservedNames(t, collided)
	c.checkNameSameAsType(t)
	c.checkIndexerNames(t)
}

// slotName is the name a member occupies in its type's declaration space.
func (c *checker) slotName(m *symbols.Symbol) (string, bool) {
	switch m.Kind {
	case symbols.KindConstructor, symbols.KindDestructor, symbols.KindOperator:
		return "", false
	case symbols.KindIndexer:
		if m.IsExplicitImpl() {
			return "", false
		}
		return c.comp.FoldName(m.IndexerMetadataName()), true
	}
	if m.IsExplicitImpl() {
		return "", false
	}
	return c.comp.FoldName(m.Name), true
}

func (c *checker) slotDisplayName(m *symbols.Symbol) string {
	if m.Kind == symbols.KindIndexer {
		return m.IndexerMetadataName()
	}
	return m.Name
}

// coexist reports members that may share a name slot; their signatures are
// compared separately.
func coexist(a, b *symbols.Symbol) bool {
	switch {
	case a.Kind == symbols.KindMethod && b.Kind == symbols.KindMethod:
		return true
	case a.Kind == symbols.KindIndexer && b.Kind == symbols.KindIndexer:
		return true
	case a.Kind.IsType() && b.Kind.IsType():
		return a.Arity() != b.Arity()
	}
	return isPartialPair(a, b)
}

// checkNameSlots: CS0102.
func (c *checker) checkNameSlots(t *symbols.Symbol, collided map[memberPair]struct{}) {
	slots := make(map[string][]*symbols.Symbol, len(t.Members))
	for _, id := range t.Members {
		m := c.sym(id)
		name, ok := c.slotName(m)
		if !ok {
			continue
		}
		for _, prev := range slots[name] {
			if coexist(prev, m) {
				continue
			}
			c.report(diag.ErrDuplicateNameInType, m.Span, m.ID, c.display(t.ID), c.slotDisplayName(m)).
				WithNote(prev.Span, "previous definition is here").
				Emit()
			collided[pairOf(prev.ID, m.ID)] = struct{}{}
			break
		}
		slots[name] = append(slots[name], m)
	}
}

// overloadKey groups members whose parameter lists must differ.
func (c *checker) overloadKey(m *symbols.Symbol) (string, bool) {
	if m.IsExplicitImpl() {
		return "", false
	}
	switch m.Kind {
	case symbols.KindMethod:
		return "M:" + c.comp.FoldName(m.Name), true
	case symbols.KindConstructor:
		if m.IsStatic() {
			return "cctor", true
		}
		return "ctor", true
	case symbols.KindDestructor:
		return "dtor", true
	case symbols.KindOperator:
		return "op:" + c.comp.MemberMetadataName(m.ID), true
	case symbols.KindIndexer:
		return "this", true
	}
	return "", false
}

// overloadName is how CS0111 names the duplicated member.
func (c *checker) overloadName(m *symbols.Symbol) string {
	switch m.Kind {
	case symbols.KindConstructor:
		return c.sym(m.Container).Name
	case symbols.KindDestructor:
		return "~" + c.sym(m.Container).Name
	case symbols.KindOperator:
		return c.comp.MemberMetadataName(m.ID)
	case symbols.KindIndexer:
		return "this"
	}
	return m.Name
}

func overloadKindWord(m *symbols.Symbol) string {
	switch m.Kind {
	case symbols.KindConstructor:
		return "constructor"
	case symbols.KindIndexer:
		return "indexer"
	case symbols.KindOperator:
		return "operator"
	}
	return "method"
}

func isConversionOperator(m *symbols.Symbol) bool {
	return m.Kind == symbols.KindOperator && (m.Name == "implicit" || m.Name == "explicit")
}

// checkSignatures: CS0111 and CS0663. Each later member is reported at most
// once, against the first earlier member it clashes with.
func (c *checker) checkSignatures(t *symbols.Symbol) {
	groups := make(map[string][]*symbols.Symbol)
	for _, id := range t.Members {
		m := c.sym(id)
		key, ok := c.overloadKey(m)
		if !ok {
			continue
		}
		for _, prev := range groups[key] {
			if prev.Arity() != m.Arity() || isPartialPair(prev, m) {
				continue
			}
			if isConversionOperator(m) && !sameReturn(m, prev, nil) {
				continue
			}
			if sameSignature(m, prev, nil, symbols.CompareExact) {
				c.report(diag.ErrMemberAlreadyExists, m.Span, m.ID, c.display(t.ID), c.overloadName(m)).
					WithNote(prev.Span, "previous definition is here").
					Emit()
				break
			}
			if sameSignature(m, prev, nil, symbols.CompareMetadata) {
				i := firstRefKindDifference(prev.Sig.Params, m.Sig.Params)
				c.report(diag.ErrOverloadRefKind, m.Span, m.ID,
					c.display(t.ID), overloadKindWord(m),
					prev.Sig.Params[i].RefKind.String(), m.Sig.Params[i].RefKind.String()).
					Emit()
				break
			}
		}
		groups[key] = append(groups[key], m)
	}
}

func firstRefKindDifference(a, b []symbols.Param) int {
	for i := range a {
		if a[i].RefKind != b[i].RefKind {
			return i
		}
	}
	return 0
}

// reservation is a metadata method name claimed by a member: either a plain
// method or an accessor of a property, indexer or event.
type reservation struct {
	owner    *symbols.Symbol
	accessor bool
	name     string
	display  string
	params   []symbols.Param
	span     source.Span
}

func (c *checker) reservations(t *symbols.Symbol) []reservation {
	var out []reservation
	for _, id := range t.Members {
		m := c.sym(id)
		if m.IsExplicitImpl() {
			continue
		}
		switch {
		case m.Kind == symbols.KindMethod && m.Arity() == 0:
			out = append(out, reservation{
				owner:   m,
				name:    c.comp.FoldName(m.Name),
				display: m.Name,
				params:  m.Sig.Params,
				span:    m.Span,
			})
		case m.Kind == symbols.KindProperty || m.Kind == symbols.KindIndexer || m.Kind == symbols.KindEvent:
			for _, a := range m.Accessors {
				name := c.comp.AccessorMetadataName(m.ID, a.Kind)
				span := a.Span
				if !span.IsValid() {
					span = m.Span
				}
				out = append(out, reservation{
					owner:    m,
					accessor: true,
					name:     c.comp.FoldName(name),
					display:  name,
					params:   c.comp.AccessorParams(m.ID, a.Kind),
					span:     span,
				})
			}
		}
	}
	return out
}

// checkReservedNames: CS0082. Pairs already reported as CS0102 are skipped.
func (c *checker) checkReservedNames(t *symbols.Symbol, collided map[memberPair]struct{}) {
	res := c.reservations(t)
	for i, r := range res {
		for _, prev := range res[:i] {
			if prev.owner == r.owner || prev.name != r.name || (!prev.accessor && !r.accessor) {
				continue
			}
			if _, ok := collided[pairOf(prev.owner.ID, r.owner.ID)]; ok {
				continue
			}
			if isPartialPair(prev.owner, r.owner) {
				continue
			}
			if !symbols.SameParams(r.params, prev.params, nil, symbols.CompareMetadata) {
				continue
			}
			c.report(diag.ErrMemberReserved, r.span, r.owner.ID, c.display(t.ID), r.display).Emit()
			break
		}
	}
}

// checkNameSameAsType: CS0542.
func (c *checker) checkNameSameAsType(t *symbols.Symbol) {
	if t.Kind == symbols.KindEnum {
		return
	}
	for _, id := range t.Members {
		m := c.sym(id)
		if m.IsExplicitImpl() {
			continue
		}
		switch m.Kind {
		case symbols.KindConstructor, symbols.KindDestructor, symbols.KindOperator:
			continue
		}
		if name := c.slotDisplayName(m); c.comp.SameName(name, t.Name) {
			c.reportOn(diag.ErrMemberNameSameAsType, m.ID, name)
			continue
		}
		for _, a := range m.Accessors {
			name := c.comp.AccessorMetadataName(m.ID, a.Kind)
			if !c.comp.SameName(name, t.Name) {
				continue
			}
			span := a.Span
			if !span.IsValid() {
				span = m.Span
			}
			c.report(diag.ErrMemberNameSameAsType, span, m.ID, name).Emit()
		}
	}
}

// checkIndexerNames: CS0668 on every indexer whose metadata name differs from
// the first one's.
func (c *checker) checkIndexerNames(t *symbols.Symbol) {
	first := ""
	for _, id := range t.Members {
		m := c.sym(id)
		if m.Kind != symbols.KindIndexer || m.IsExplicitImpl() {
			continue
		}
		name := c.comp.FoldName(m.IndexerMetadataName())
		if first == "" {
			first = name
			continue
		}
		if name != first {
			c.reportOn(diag.ErrInconsistentIndexerNames, m.ID)
		}
	}
}

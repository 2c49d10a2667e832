package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// mergeSubst returns a substitution applying both maps; b wins on overlap.
func mergeSubst(a, b symbols.Subst) symbols.Subst {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make(symbols.Subst, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// memberSubst views other's signature from self: subst maps other's
// containing type parameters, and other's method type parameters are
// renamed to self's by ordinal.
func memberSubst(self, other *symbols.Symbol, subst symbols.Subst) symbols.Subst {
	if other.Kind != symbols.KindMethod || other.Arity() == 0 {
		return subst
	}
	return mergeSubst(subst, symbols.MethodTypeParamMap(other.ID, self.ID, other.Arity()))
}

// sameSignature compares parameter lists of two members of the same kind.
func sameSignature(self, other *symbols.Symbol, subst symbols.Subst, mode symbols.SigCompare) bool {
	if self.Arity() != other.Arity() {
		return false
	}
	return symbols.SameParams(self.Sig.Params, other.Sig.Params, memberSubst(self, other, subst), mode)
}

// sameReturn compares the return (or property/event) types.
func sameReturn(self, other *symbols.Symbol, subst symbols.Subst) bool {
	return self.Sig.Return.Equal(memberSubst(self, other, subst).Apply(other.Sig.Return))
}

// kindGroup buckets member kinds that can stand in for each other when
// overriding, hiding or implementing.
type kindGroup uint8

const (
	groupOther kindGroup = iota
	groupMethod
	groupProperty
	groupIndexer
	groupEvent
	groupField
	groupType
)

func groupOf(s *symbols.Symbol) kindGroup {
	switch {
	case s.Kind == symbols.KindMethod:
		return groupMethod
	case s.Kind == symbols.KindProperty:
		return groupProperty
	case s.Kind == symbols.KindIndexer:
		return groupIndexer
	case s.Kind == symbols.KindEvent:
		return groupEvent
	case s.Kind == symbols.KindField:
		return groupField
	case s.Kind.IsType():
		return groupType
	}
	return groupOther
}

// lookupName is the name a member is found by in member lookup. Indexers are
// all found by the same name; constructors, destructors and operators are not
// found at all.
func (c *checker) lookupName(s *symbols.Symbol) (string, bool) {
	switch s.Kind {
	case symbols.KindConstructor, symbols.KindDestructor, symbols.KindOperator:
		return "", false
	case symbols.KindIndexer:
		return "this[]", true
	}
	if s.IsExplicitImpl() {
		return "", false
	}
	return c.comp.FoldName(s.Name), true
}

// sameLookupName reports whether two members are found by the same name.
func (c *checker) sameLookupName(a, b *symbols.Symbol) bool {
	na, ok := c.lookupName(a)
	if !ok {
		return false
	}
	nb, ok := c.lookupName(b)
	return ok && na == nb
}

// isPartialPair reports two parts of one partial member; the partials check
// owns their diagnostics.
func isPartialPair(a, b *symbols.Symbol) bool {
	return a.Is(symbols.ModPartial) && b.Is(symbols.ModPartial) && a.Kind == b.Kind
}

// typeMembers lists members of a type together with the substitution that
// expresses them from the type being checked.
type typeMembers struct {
	typ   symbols.SymbolID
	subst symbols.Subst
}

// baseLevels lists the type itself followed by its base classes, or the
// inherited interfaces for an interface.
func (c *checker) baseLevels(typ symbols.SymbolID, includeSelf bool) []typeMembers {
	var out []typeMembers
	if includeSelf {
		out = append(out, typeMembers{typ: typ})
	}
	if c.sym(typ).Kind == symbols.KindInterface {
		for _, ref := range c.comp.AllInterfaces(typ) {
			out = append(out, typeMembers{typ: ref.Symbol, subst: symbols.Subst(nil).Bind(ref.Symbol, ref.Args)})
		}
		return out
	}
	for _, b := range c.comp.BaseChain(typ) {
		out = append(out, typeMembers{typ: b.Type, subst: b.Subst})
	}
	return out
}

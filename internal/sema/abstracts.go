package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

type accessorSlot struct {
	prop symbols.SymbolID
	kind symbols.AccessorKind
}

// checkAbstractImpls: CS0534. The chain is walked from the type towards
// object; an override seen on the way marks what it overrides, so an
// abstract member reached unmarked is still abstract in the type.
func (c *checker) checkAbstractImpls(typ symbols.SymbolID) {
	t := c.sym(typ)
	if t.Kind != symbols.KindClass || t.Modifiers.Any(symbols.ModAbstract|symbols.ModStatic) {
		return
	}
	overridden := make(map[symbols.SymbolID]struct{})
	covered := make(map[accessorSlot]struct{})
	levels := append([]symbols.SymbolID{typ}, chainTypes(c.comp.BaseChain(typ))...)
	for li, level := range levels {
		for _, id := range c.sym(level).Members {
			n := c.sym(id)
			if n.Is(symbols.ModOverride) && !n.IsStatic() && !n.IsExplicitImpl() {
				c.markOverridden(n, overridden, covered)
			}
			if li == 0 || !n.Is(symbols.ModAbstract) || n.IsExplicitImpl() {
				continue
			}
			if _, ok := overridden[n.ID]; !ok {
				c.report(diag.ErrUnimplementedAbstractMethod, t.Span, typ, c.display(typ), c.display(n.ID)).
					WithNote(n.Span, "abstract member is declared here").
					Emit()
				continue
			}
			if !n.Kind.IsPropertyLike() {
				continue
			}
			for _, a := range n.Accessors {
				if _, ok := covered[accessorSlot{n.ID, a.Kind}]; !ok {
					c.report(diag.ErrUnimplementedAbstractMethod, t.Span, typ,
						c.display(typ), c.comp.AccessorDisplay(n.ID, a.Kind)).Emit()
				}
			}
		}
	}
}

// markOverridden records that n replaces its overridden member, carrying
// along the accessors n declares or inherits coverage for.
func (c *checker) markOverridden(n *symbols.Symbol, overridden map[symbols.SymbolID]struct{}, covered map[accessorSlot]struct{}) {
	r := c.overriddenMember(n)
	if r.found == nil {
		return
	}
	overridden[r.found.ID] = struct{}{}
	if !n.Kind.IsPropertyLike() {
		return
	}
	for k := symbols.AccessorGet; k <= symbols.AccessorSet; k++ {
		_, inherited := covered[accessorSlot{n.ID, k}]
		if n.HasAccessor(k) && !n.Is(symbols.ModAbstract) || inherited {
			covered[accessorSlot{r.found.ID, k}] = struct{}{}
		}
	}
}

func chainTypes(chain []symbols.Based) []symbols.SymbolID {
	out := make([]symbols.SymbolID, len(chain))
	for i, b := range chain {
		out[i] = b.Type
	}
	return out
}

package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// checkStaticClass: CS0708, CS0710, CS0711, CS0713, CS0714, CS0715 and CS0720.
func (c *checker) checkStaticClass(typ symbols.SymbolID) {
	t := c.sym(typ)
	if !c.comp.IsStaticClass(typ) {
		return
	}
	if t.Base != nil && !(t.Base.Kind == symbols.RefNamed && c.comp.IsSpecial(t.Base.Symbol, symbols.SpecialObject)) {
		c.report(diag.ErrStaticDerivedFromNonObject, refSpan(*t.Base, t.Span), typ, c.display(typ), c.typeDisplay(*t.Base)).Emit()
	}
	for _, r := range t.Interfaces {
		c.report(diag.ErrStaticClassInterfaceImpl, refSpan(r, t.Span), typ, c.display(typ)).Emit()
	}
	for _, id := range t.Members {
		m := c.sym(id)
		switch {
		case m.Kind.IsType() || m.HasFlag(symbols.FlagImplicit):
		case m.Kind == symbols.KindOperator:
			c.reportOn(diag.ErrOperatorInStaticClass, m.ID, c.display(m.ID))
		case m.Kind == symbols.KindIndexer:
			c.reportOn(diag.ErrIndexerInStaticClass, m.ID, c.display(m.ID))
		case m.Kind == symbols.KindDestructor:
			c.reportOn(diag.ErrDestructorInStaticClass, m.ID)
		case m.Kind == symbols.KindConstructor:
			if !m.IsStatic() {
				c.reportOn(diag.ErrConstructorInStaticClass, m.ID)
			}
		case !m.IsStatic():
			c.reportOn(diag.ErrInstanceMemberInStaticClass, m.ID, m.Name)
		}
	}
}

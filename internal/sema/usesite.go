package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

const maxBoundDepth = 16

// checkUseSites validates every constructed type written in the
// declarations of typ and its members against the target's constraints.
func (c *checker) checkUseSites(typ symbols.SymbolID) {
	t := c.sym(typ)
	if t.Base != nil {
		c.checkConstructed(*t.Base, t)
	}
	for _, r := range t.Interfaces {
		c.checkConstructed(r, t)
	}
	c.checkConstraintUses(t)
	if t.Kind == symbols.KindDelegate {
		c.checkSignatureUses(t)
	}
	for _, id := range t.Members {
		m := c.sym(id)
		if m.Kind.IsType() {
			continue
		}
		c.checkSignatureUses(m)
		if m.ExplicitInterface != nil {
			c.checkConstructed(*m.ExplicitInterface, m)
		}
		c.checkConstraintUses(m)
	}
}

func (c *checker) checkSignatureUses(m *symbols.Symbol) {
	for _, p := range m.Sig.Params {
		c.checkConstructed(p.Type, m)
	}
	c.checkConstructed(m.Sig.Return, m)
}

func (c *checker) checkConstraintUses(d *symbols.Symbol) {
	for i := range d.TypeParams {
		for _, r := range d.TypeParams[i].Constraints.Types() {
			c.checkConstructed(r, d)
		}
	}
}

// checkConstructed walks ref and checks every constructed type inside it.
func (c *checker) checkConstructed(ref symbols.TypeRef, owner *symbols.Symbol) {
	ref.Walk(func(r symbols.TypeRef) {
		if r.Kind == symbols.RefNamed && len(r.Args) > 0 {
			c.checkTypeArgs(r, owner, refSpan(ref, owner.Span))
		}
	})
}

func (c *checker) checkTypeArgs(r symbols.TypeRef, owner *symbols.Symbol, fallback source.Span) {
	target := c.comp.Sym(r.Symbol)
	if target == nil || target.Arity() != len(r.Args) {
		return
	}
	subst := symbols.Subst(nil).Bind(target.ID, r.Args)
	at := refSpan(r, fallback)
	for k, arg := range r.Args {
		c.checkTypeArg(target, k, arg, subst, refSpan(arg, at), owner)
	}
}

// checkTypeArg: CS0452, CS0453, CS0310, CS0311, CS0314 and CS0315.
func (c *checker) checkTypeArg(target *symbols.Symbol, k int, arg symbols.TypeRef, subst symbols.Subst, at source.Span, owner *symbols.Symbol) {
	tp := &target.TypeParams[k]
	cs := &tp.Constraints
	name, argName := c.display(target.ID), c.typeDisplay(arg)
	switch cs.Class {
	case symbols.ConstraintClass:
		if !c.isReferenceType(arg, 0) {
			c.report(diag.ErrRefConstraintNotSatisfied, at, owner.ID, name, tp.Name, argName).Emit()
		}
	case symbols.ConstraintStruct:
		if !c.isValueType(arg) {
			c.report(diag.ErrValConstraintNotSatisfied, at, owner.ID, name, tp.Name, argName).Emit()
		}
	}
	if cs.New && !c.hasDefaultConstructor(arg) {
		c.report(diag.ErrNewConstraintNotSatisfied, at, owner.ID, name, tp.Name, argName).Emit()
	}
	for _, bound := range cs.Types() {
		b := subst.Apply(bound)
		if c.satisfies(arg, b, 0) {
			continue
		}
		code := diag.ErrGenericConstraintRefType
		switch {
		case arg.Kind == symbols.RefTypeParam:
			code = diag.ErrGenericConstraintTyVar
		case arg.Kind == symbols.RefNamed && c.comp.IsValueTypeSymbol(arg.Symbol):
			code = diag.ErrGenericConstraintValType
		}
		c.report(code, at, owner.ID, name, c.typeDisplay(b), tp.Name, argName).Emit()
	}
}

func (c *checker) isReferenceType(r symbols.TypeRef, depth int) bool {
	switch r.Kind {
	case symbols.RefArray:
		return true
	case symbols.RefNamed:
		switch c.sym(r.Symbol).Kind {
		case symbols.KindClass, symbols.KindInterface, symbols.KindDelegate:
			return true
		}
		return false
	case symbols.RefTypeParam:
		if depth > maxBoundDepth {
			return false
		}
		cs := c.typeParamConstraints(r)
		if cs.Class == symbols.ConstraintClass {
			return true
		}
		if cs.BaseType != nil && cs.BaseType.Kind == symbols.RefNamed && c.sym(cs.BaseType.Symbol).Kind == symbols.KindClass &&
			!c.comp.IsSpecial(cs.BaseType.Symbol, symbols.SpecialValueType) && !c.comp.IsSpecial(cs.BaseType.Symbol, symbols.SpecialEnum) {
			return true
		}
		for _, tp := range cs.TypeParams {
			if c.isReferenceType(tp, depth+1) {
				return true
			}
		}
	}
	return false
}

func (c *checker) isValueType(r symbols.TypeRef) bool {
	switch r.Kind {
	case symbols.RefNamed:
		return c.comp.IsValueTypeSymbol(r.Symbol)
	case symbols.RefTypeParam:
		return c.typeParamConstraints(r).Class == symbols.ConstraintStruct
	}
	return false
}

func (c *checker) hasDefaultConstructor(r symbols.TypeRef) bool {
	switch r.Kind {
	case symbols.RefNamed:
		return c.comp.HasPublicParameterlessConstructor(r.Symbol)
	case symbols.RefTypeParam:
		cs := c.typeParamConstraints(r)
		return cs.New || cs.Class == symbols.ConstraintStruct
	}
	return false
}

// satisfies reports an implicit reference, boxing or type parameter
// conversion from arg to bound.
func (c *checker) satisfies(arg, bound symbols.TypeRef, depth int) bool {
	if arg.Equal(bound) {
		return true
	}
	if bound.Kind == symbols.RefNamed && c.comp.IsSpecial(bound.Symbol, symbols.SpecialObject) {
		return true
	}
	if depth > maxBoundDepth {
		return false
	}
	switch arg.Kind {
	case symbols.RefNamed:
		for _, st := range c.comp.Supertypes(arg) {
			if st.Equal(bound) {
				return true
			}
		}
	case symbols.RefArray:
		return bound.Kind == symbols.RefNamed && c.comp.IsSpecial(bound.Symbol, symbols.SpecialArray)
	case symbols.RefTypeParam:
		cs := c.typeParamConstraints(arg)
		if cs.Class == symbols.ConstraintStruct && bound.Kind == symbols.RefNamed && c.comp.IsSpecial(bound.Symbol, symbols.SpecialValueType) {
			return true
		}
		for _, b := range cs.Types() {
			if c.satisfies(b, bound, depth+1) {
				return true
			}
		}
	}
	return false
}

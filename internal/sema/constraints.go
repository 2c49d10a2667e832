package sema

import (
	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// inheritsConstraints reports methods whose constraints come from the
// method they override or implement.
func inheritsConstraints(d *symbols.Symbol) bool {
	return d.Kind == symbols.KindMethod && (d.Is(symbols.ModOverride) || d.IsExplicitImpl())
}

func constraintSpan(tp *symbols.TypeParam, fallback source.Span) source.Span {
	switch {
	case tp.Constraints.Span.IsValid():
		return tp.Constraints.Span
	case tp.Span.IsValid():
		return tp.Span
	}
	return fallback
}

// paramSpan prefers the type parameter's own identifier; cycle and
// conflicting-bound diagnostics belong to the parameter, not its clause.
func paramSpan(tp *symbols.TypeParam, fallback source.Span) source.Span {
	if tp.Span.IsValid() {
		return tp.Span
	}
	return constraintSpan(tp, fallback)
}

func refSpan(r symbols.TypeRef, fallback source.Span) source.Span {
	if r.Span.IsValid() {
		return r.Span
	}
	return fallback
}

// checkTypeConstraints validates the where-clauses of typ and of its
// generic methods.
func (c *checker) checkTypeConstraints(typ symbols.SymbolID) {
	c.checkDeclConstraints(c.sym(typ))
	for _, id := range c.sym(typ).Members {
		if m := c.sym(id); m.Kind == symbols.KindMethod && m.Arity() > 0 {
			c.checkDeclConstraints(m)
		}
	}
}

func (c *checker) checkDeclConstraints(d *symbols.Symbol) {
	if d.Arity() == 0 {
		return
	}
	if inheritsConstraints(d) {
		for i := range d.TypeParams {
			tp := &d.TypeParams[i]
			cs := &tp.Constraints
			if cs.BaseType != nil || len(cs.Interfaces) > 0 || len(cs.TypeParams) > 0 || cs.New {
				c.report(diag.ErrOverrideWithConstraints, constraintSpan(tp, d.Span), d.ID).Emit()
			}
		}
		return
	}
	declAcc := c.comp.EffectiveAccessibility(d.ID)
	for i := range d.TypeParams {
		tp := &d.TypeParams[i]
		cs := &tp.Constraints
		at := constraintSpan(tp, d.Span)
		if cs.BaseType != nil && cs.Class != symbols.ConstraintNone && !c.isKindBound(*cs.BaseType) {
			c.report(diag.ErrRefValBoundWithClass, at, d.ID, tp.Name).Emit()
		}
		if cs.New && cs.Class == symbols.ConstraintStruct {
			c.report(diag.ErrNewBoundWithVal, at, d.ID).Emit()
		}
		if cs.BaseType != nil {
			c.checkBoundType(d, *cs.BaseType, at)
		}
		for _, r := range cs.Interfaces {
			if r.Kind != symbols.RefNamed || c.sym(r.Symbol).Kind != symbols.KindInterface {
				c.report(diag.ErrBadConstraintType, refSpan(r, at), d.ID).Emit()
			}
		}
		for _, r := range cs.TypeParams {
			if other := c.typeParamConstraints(r); other.Class == symbols.ConstraintStruct {
				c.report(diag.ErrConWithValCon, refSpan(r, at), d.ID, tp.Name, c.comp.TypeParamName(symbols.TypeParamKey{Owner: r.Symbol, Ordinal: r.Ordinal})).Emit()
			}
		}
		for _, r := range cs.Types() {
			if acc, _ := c.comp.RefAccessibility(r); acc.LessThan(declAcc) {
				c.report(diag.ErrBadVisBound, refSpan(r, at), d.ID, c.display(d.ID), c.typeDisplay(r)).Emit()
			}
		}
	}
	c.checkConstraintCycles(d)
	c.checkBoundConflicts(d)
}

// validClassBound reports whether r may serve as a class constraint.
func (c *checker) validClassBound(r symbols.TypeRef) bool {
	if r.Kind != symbols.RefNamed {
		return false
	}
	s := c.sym(r.Symbol)
	return s.Kind == symbols.KindClass && !c.isSpecialBound(r.Symbol) && !c.comp.IsSealedType(r.Symbol)
}

// isSpecialBound: object, ValueType and Array never serve as constraints.
func (c *checker) isSpecialBound(id symbols.SymbolID) bool {
	return c.isAnySpecial(id, symbols.SpecialObject, symbols.SpecialValueType, symbols.SpecialArray)
}

// isKindBound reports Enum, Delegate and MulticastDelegate. They constrain
// the kind of type argument and combine with class and struct.
func (c *checker) isKindBound(r symbols.TypeRef) bool {
	return r.Kind == symbols.RefNamed &&
		c.isAnySpecial(r.Symbol, symbols.SpecialEnum, symbols.SpecialDelegate, symbols.SpecialMulticastDelegate)
}

func (c *checker) isAnySpecial(id symbols.SymbolID, sts ...symbols.SpecialType) bool {
	for _, st := range sts {
		if c.comp.IsSpecial(id, st) {
			return true
		}
	}
	return false
}

// checkBoundType: CS0701, CS0702 and CS0717 for the class constraint.
func (c *checker) checkBoundType(d *symbols.Symbol, r symbols.TypeRef, fallback source.Span) {
	at := refSpan(r, fallback)
	switch r.Kind {
	case symbols.RefNamed:
	case symbols.RefArray:
		c.report(diag.ErrBadBoundType, at, d.ID, c.typeDisplay(r)).Emit()
		return
	default:
		return
	}
	s := c.sym(r.Symbol)
	switch {
	case c.isSpecialBound(r.Symbol):
		c.report(diag.ErrSpecialTypeAsBound, at, d.ID, c.typeDisplay(r)).Emit()
	case s.Kind == symbols.KindInterface:
	case c.comp.IsStaticClass(r.Symbol):
		c.report(diag.ErrConstraintIsStaticClass, at, d.ID, c.typeDisplay(r)).Emit()
	case c.comp.IsSealedType(r.Symbol) || s.Kind != symbols.KindClass:
		c.report(diag.ErrBadBoundType, at, d.ID, c.typeDisplay(r)).Emit()
	}
}

// checkConstraintCycles: one CS0454 per type parameter on a cycle, naming
// the parameter whose constraint closes the cycle.
func (c *checker) checkConstraintCycles(d *symbols.Symbol) {
	g := newConstraintGraph(d)
	for i, pred := range g.cycles() {
		if pred < 0 {
			continue
		}
		tp := &d.TypeParams[i]
		c.report(diag.ErrCircularConstraint, paramSpan(tp, d.Span), d.ID, tp.Name, d.TypeParams[pred].Name).Emit()
	}
}

// effectiveBounds collects what a type parameter inherits through
// acyclic type parameter constraints.
type effectiveBounds struct {
	classes   []symbols.TypeRef
	reference bool
	value     bool
}

func (c *checker) collectBounds(d *symbols.Symbol, acyclic [][]int, i int, own bool, visited map[int]struct{}, out *effectiveBounds) {
	if _, ok := visited[i]; ok {
		return
	}
	visited[i] = struct{}{}
	cs := &d.TypeParams[i].Constraints
	if cs.BaseType != nil && c.validClassBound(*cs.BaseType) {
		out.classes = appendBound(out.classes, *cs.BaseType)
	}
	if !own {
		switch cs.Class {
		case symbols.ConstraintClass:
			out.reference = true
		case symbols.ConstraintStruct:
			out.classes = appendBound(out.classes, c.comp.SpecialRef(symbols.SpecialValueType))
		}
	}
	for _, j := range acyclic[i] {
		c.collectBounds(d, acyclic, j, false, visited, out)
	}
	for _, r := range cs.TypeParams {
		if r.Symbol == d.ID {
			continue
		}
		outer := c.typeParamConstraints(r)
		if outer.BaseType != nil && c.validClassBound(*outer.BaseType) {
			out.classes = appendBound(out.classes, *outer.BaseType)
		}
		switch outer.Class {
		case symbols.ConstraintClass:
			out.reference = true
		case symbols.ConstraintStruct:
			out.classes = appendBound(out.classes, c.comp.SpecialRef(symbols.SpecialValueType))
		}
	}
}

func appendBound(list []symbols.TypeRef, r symbols.TypeRef) []symbols.TypeRef {
	for _, x := range list {
		if x.Equal(r) {
			return list
		}
	}
	return append(list, r)
}

// related reports class bounds where one derives from the other.
func (c *checker) related(a, b symbols.TypeRef) bool {
	return a.Symbol == b.Symbol || c.comp.DerivesFrom(a.Symbol, b.Symbol) || c.comp.DerivesFrom(b.Symbol, a.Symbol)
}

// checkBoundConflicts: CS0455, at most once per type parameter.
func (c *checker) checkBoundConflicts(d *symbols.Symbol) {
	acyclic := newConstraintGraph(d).acyclicEdges()
	for i := range d.TypeParams {
		tp := &d.TypeParams[i]
		var eb effectiveBounds
		c.collectBounds(d, acyclic, i, true, make(map[int]struct{}), &eb)
		at := paramSpan(tp, d.Span)
		if tp.Constraints.Class == symbols.ConstraintStruct {
			valueType := c.comp.SpecialRef(symbols.SpecialValueType)
			reported := false
			for _, b := range eb.classes {
				if !c.related(b, valueType) {
					c.report(diag.ErrBaseConstraintConflict, at, d.ID, tp.Name, c.typeDisplay(b), c.typeDisplay(valueType)).Emit()
					reported = true
					break
				}
			}
			if !reported && eb.reference {
				c.report(diag.ErrBaseConstraintConflict, at, d.ID, tp.Name, "class", "struct").Emit()
			}
			continue
		}
	pairs:
		for x := 0; x < len(eb.classes); x++ {
			for y := x + 1; y < len(eb.classes); y++ {
				if !c.related(eb.classes[x], eb.classes[y]) {
					c.report(diag.ErrBaseConstraintConflict, at, d.ID, tp.Name,
						c.typeDisplay(eb.classes[x]), c.typeDisplay(eb.classes[y])).Emit()
					break pairs
				}
			}
		}
	}
}

// typeParamConstraints returns the constraints in force for a type
// parameter reference, expressed in the owner's terms. Overrides and
// explicit implementations take them from the base method.
func (c *checker) typeParamConstraints(r symbols.TypeRef) symbols.ConstraintSet {
	return c.typeParamConstraintsDepth(r, 0)
}

func (c *checker) typeParamConstraintsDepth(r symbols.TypeRef, depth int) symbols.ConstraintSet {
	owner := c.comp.Sym(r.Symbol)
	if r.Kind != symbols.RefTypeParam || owner == nil || r.Ordinal < 0 || r.Ordinal >= owner.Arity() {
		return symbols.ConstraintSet{}
	}
	if !inheritsConstraints(owner) || depth > 8 {
		return owner.TypeParams[r.Ordinal].Constraints
	}
	var base *symbols.Symbol
	var subst symbols.Subst
	if owner.IsExplicitImpl() {
		target, s, _ := c.explicitTarget(owner)
		base, subst = target, s
	} else {
		lk := c.overriddenMember(owner)
		base, subst = lk.found, lk.subst
	}
	if base == nil || base.Arity() != owner.Arity() {
		return owner.TypeParams[r.Ordinal].Constraints
	}
	inner := c.typeParamConstraintsDepth(symbols.TypeParamRef(base.ID, r.Ordinal), depth+1)
	out := substConstraints(inner, memberSubst(owner, base, subst))
	// class/struct may be restated on the override itself
	if own := owner.TypeParams[r.Ordinal].Constraints.Class; own != symbols.ConstraintNone {
		out.Class = own
	}
	return out
}

func substConstraints(cs symbols.ConstraintSet, s symbols.Subst) symbols.ConstraintSet {
	if len(s) == 0 {
		return cs
	}
	out := cs
	if cs.BaseType != nil {
		b := s.Apply(*cs.BaseType)
		out.BaseType = &b
	}
	out.Interfaces = make([]symbols.TypeRef, len(cs.Interfaces))
	for i, r := range cs.Interfaces {
		out.Interfaces[i] = s.Apply(r)
	}
	out.TypeParams = make([]symbols.TypeRef, len(cs.TypeParams))
	for i, r := range cs.TypeParams {
		out.TypeParams[i] = s.Apply(r)
	}
	return out
}

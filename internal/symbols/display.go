package symbols

import (
	"strings"
)

// TypeDisplay renders a type reference the way diagnostics quote it:
// keywords for core types, namespace-qualified names otherwise.
func (c *Compilation) TypeDisplay(ref TypeRef) string {
	var b strings.Builder
	c.writeType(&b, ref)
	return b.String()
}

func (c *Compilation) writeType(b *strings.Builder, ref TypeRef) {
	switch ref.Kind {
	case RefNamed:
		if kw, ok := c.keywords[ref.Symbol]; ok {
			b.WriteString(kw)
			return
		}
		c.writeQualified(b, ref.Symbol)
		if len(ref.Args) > 0 {
			b.WriteByte('<')
			for i, a := range ref.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				c.writeType(b, a)
			}
			b.WriteByte('>')
		}
	case RefTypeParam:
		b.WriteString(c.TypeParamName(TypeParamKey{ref.Symbol, ref.Ordinal}))
	case RefArray:
		c.writeType(b, *ref.Elem)
		b.WriteString("[]")
	default:
		b.WriteByte('?')
	}
}

// writeQualified writes namespaces and containing types, dot separated.
// Containing generic types show their type parameters.
func (c *Compilation) writeQualified(b *strings.Builder, id SymbolID) {
	s := c.MustSym(id)
	if p := c.Sym(s.Container); p != nil && p.ID != c.Global {
		if p.Kind.IsType() {
			c.writeTypeDecl(b, p.ID)
		} else {
			c.writeQualified(b, p.ID)
		}
		b.WriteByte('.')
	}
	b.WriteString(s.Name)
}

func (c *Compilation) writeTypeDecl(b *strings.Builder, id SymbolID) {
	if kw, ok := c.keywords[id]; ok {
		b.WriteString(kw)
		return
	}
	c.writeQualified(b, id)
	c.writeTypeParams(b, c.MustSym(id))
}

func (c *Compilation) writeTypeParams(b *strings.Builder, s *Symbol) {
	if len(s.TypeParams) == 0 {
		return
	}
	b.WriteByte('<')
	for i, tp := range s.TypeParams {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tp.Name)
	}
	b.WriteByte('>')
}

// TypeParamName returns the declared name of a type parameter.
func (c *Compilation) TypeParamName(k TypeParamKey) string {
	s := c.Sym(k.Owner)
	if s == nil || k.Ordinal < 0 || k.Ordinal >= len(s.TypeParams) {
		return "?"
	}
	return s.TypeParams[k.Ordinal].Name
}

// Display renders a symbol the way diagnostics quote it:
// "N.C<T>", "C.M<U>(int, ref string)", "C.this[int]", "C.I.P", "C.~C()".
func (c *Compilation) Display(id SymbolID) string {
	s := c.MustSym(id)
	var b strings.Builder
	switch {
	case s.Kind == KindNamespace:
		c.writeQualified(&b, id)
	case s.Kind.IsType():
		c.writeTypeDecl(&b, id)
	default:
		c.writeTypeDecl(&b, s.Container)
		b.WriteByte('.')
		c.writeMember(&b, s)
	}
	return b.String()
}

// MemberDisplay renders a member without its containing type.
func (c *Compilation) MemberDisplay(id SymbolID) string {
	var b strings.Builder
	c.writeMember(&b, c.MustSym(id))
	return b.String()
}

func (c *Compilation) writeMember(b *strings.Builder, s *Symbol) {
	if s.ExplicitInterface != nil {
		c.writeType(b, *s.ExplicitInterface)
		b.WriteByte('.')
	}
	switch s.Kind {
	case KindConstructor:
		b.WriteString(c.MustSym(s.Container).Name)
		c.writeParams(b, s.Sig.Params, '(', ')')
	case KindDestructor:
		b.WriteByte('~')
		b.WriteString(c.MustSym(s.Container).Name)
		b.WriteString("()")
	case KindOperator:
		b.WriteString("operator ")
		b.WriteString(s.Name)
		c.writeParams(b, s.Sig.Params, '(', ')')
	case KindMethod:
		b.WriteString(s.Name)
		c.writeTypeParams(b, s)
		c.writeParams(b, s.Sig.Params, '(', ')')
	case KindIndexer:
		b.WriteString("this")
		c.writeParams(b, s.Sig.Params, '[', ']')
	default:
		b.WriteString(s.Name)
		c.writeTypeParams(b, s)
	}
}

func (c *Compilation) writeParams(b *strings.Builder, params []Param, open, close byte) {
	b.WriteByte(open)
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.RefKind != RefByValue {
			b.WriteString(p.RefKind.String())
			b.WriteByte(' ')
		}
		if p.IsParams {
			b.WriteString("params ")
		}
		c.writeType(b, p.Type)
	}
	b.WriteByte(close)
}

// AccessorDisplay renders "C.P.get".
func (c *Compilation) AccessorDisplay(id SymbolID, k AccessorKind) string {
	return c.Display(id) + "." + k.String()
}

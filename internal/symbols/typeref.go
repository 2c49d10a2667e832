package symbols

import (
	"strconv"
	"strings"

	"github.com/dotnet/roslyn-sub221/internal/source"
)

// TypeRefKind distinguishes the shapes of a type reference.
type TypeRefKind uint8

const (
	RefNone TypeRefKind = iota
	// RefNamed is a (possibly constructed) named type.
	RefNamed
	// RefTypeParam is a type parameter of a type or method.
	RefTypeParam
	// RefArray is a single-dimensional array of Elem.
	RefArray
)

// TypeRef is a weak reference to a type as written in a declaration.
// Span is where it was written; use-site diagnostics are reported there.
type TypeRef struct {
	Kind TypeRefKind
	// Symbol is the named type, or the owner of a type parameter.
	Symbol  SymbolID
	Ordinal int
	Args    []TypeRef
	Elem    *TypeRef
	Span    source.Span
}

// Named builds a reference to a named type with optional type arguments.
func Named(id SymbolID, args ...TypeRef) TypeRef {
	return TypeRef{Kind: RefNamed, Symbol: id, Args: args}
}

// TypeParamRef refers to the ordinal-th type parameter of owner.
func TypeParamRef(owner SymbolID, ordinal int) TypeRef {
	return TypeRef{Kind: RefTypeParam, Symbol: owner, Ordinal: ordinal}
}

// ArrayOf builds an array type.
func ArrayOf(elem TypeRef) TypeRef {
	return TypeRef{Kind: RefArray, Elem: &elem}
}

// At returns a copy carrying span.
func (r TypeRef) At(span source.Span) TypeRef {
	r.Span = span
	return r
}

// IsNone reports an absent reference.
func (r TypeRef) IsNone() bool { return r.Kind == RefNone }

// Equal compares structurally, ignoring spans.
func (r TypeRef) Equal(o TypeRef) bool {
	if r.Kind != o.Kind || r.Symbol != o.Symbol || r.Ordinal != o.Ordinal || len(r.Args) != len(o.Args) {
		return false
	}
	for i := range r.Args {
		if !r.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	switch {
	case r.Elem == nil && o.Elem == nil:
		return true
	case r.Elem == nil || o.Elem == nil:
		return false
	}
	return r.Elem.Equal(*o.Elem)
}

// Key is a structural identity usable as a map key.
func (r TypeRef) Key() string {
	var b strings.Builder
	r.writeKey(&b)
	return b.String()
}

func (r TypeRef) writeKey(b *strings.Builder) {
	switch r.Kind {
	case RefNamed:
		b.WriteByte('N')
		b.WriteString(strconv.FormatUint(uint64(r.Symbol), 10))
		if len(r.Args) > 0 {
			b.WriteByte('<')
			for i, a := range r.Args {
				if i > 0 {
					b.WriteByte(',')
				}
				a.writeKey(b)
			}
			b.WriteByte('>')
		}
	case RefTypeParam:
		b.WriteByte('T')
		b.WriteString(strconv.FormatUint(uint64(r.Symbol), 10))
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(r.Ordinal))
	case RefArray:
		r.Elem.writeKey(b)
		b.WriteString("[]")
	default:
		b.WriteByte('_')
	}
}

// Walk visits r and every nested reference, depth first.
func (r TypeRef) Walk(fn func(TypeRef)) {
	fn(r)
	for _, a := range r.Args {
		a.Walk(fn)
	}
	if r.Elem != nil {
		r.Elem.Walk(fn)
	}
}

// Subst maps type parameters to type arguments.
type Subst map[TypeParamKey]TypeRef

// TypeParamKey identifies a type parameter.
type TypeParamKey struct {
	Owner   SymbolID
	Ordinal int
}

// Apply substitutes type parameters in r. Spans are kept from r.
func (s Subst) Apply(r TypeRef) TypeRef {
	if len(s) == 0 {
		return r
	}
	switch r.Kind {
	case RefTypeParam:
		if to, ok := s[TypeParamKey{r.Symbol, r.Ordinal}]; ok {
			to.Span = r.Span
			return to
		}
	case RefNamed:
		if len(r.Args) == 0 {
			return r
		}
		args := make([]TypeRef, len(r.Args))
		for i, a := range r.Args {
			args[i] = s.Apply(a)
		}
		r.Args = args
	case RefArray:
		elem := s.Apply(*r.Elem)
		r.Elem = &elem
	}
	return r
}

// Bind extends s with owner's type parameters mapped to args.
func (s Subst) Bind(owner SymbolID, args []TypeRef) Subst {
	if len(args) == 0 {
		return s
	}
	out := make(Subst, len(s)+len(args))
	for k, v := range s {
		out[k] = v
	}
	for i, a := range args {
		out[TypeParamKey{owner, i}] = a
	}
	return out
}

// MethodTypeParamMap maps from's method type parameters onto to's, by ordinal.
func MethodTypeParamMap(from, to SymbolID, arity int) Subst {
	if arity == 0 {
		return nil
	}
	out := make(Subst, arity)
	for i := range arity {
		out[TypeParamKey{from, i}] = TypeParamRef(to, i)
	}
	return out
}

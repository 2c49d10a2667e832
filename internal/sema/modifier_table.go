package sema

import "github.com/dotnet/roslyn-sub221/internal/symbols"

const (
	access     = symbols.ModAccessMask
	virtualSet = symbols.ModVirtual | symbols.ModAbstract | symbols.ModOverride | symbols.ModSealed
)

// container groups where a declaration appears.
type container uint8

const (
	inNamespace container = iota
	inClass
	inStruct
	inInterface
	inOther
)

func (c *checker) containerOf(s *symbols.Symbol) container {
	p := c.comp.Sym(s.Container)
	if p == nil {
		return inNamespace
	}
	switch p.Kind {
	case symbols.KindNamespace:
		return inNamespace
	case symbols.KindClass:
		return inClass
	case symbols.KindStruct:
		return inStruct
	case symbols.KindInterface:
		return inInterface
	}
	return inOther
}

// typeModifiers lists what a type declaration may carry besides access.
var typeModifiers = map[symbols.SymbolKind]symbols.Modifiers{
	symbols.KindClass:     symbols.ModAbstract | symbols.ModSealed | symbols.ModStatic | symbols.ModPartial | symbols.ModUnsafe,
	symbols.KindStruct:    symbols.ModPartial | symbols.ModReadonly | symbols.ModUnsafe,
	symbols.KindInterface: symbols.ModPartial | symbols.ModUnsafe,
	symbols.KindEnum:      0,
	symbols.KindDelegate:  symbols.ModUnsafe,
}

// memberModifiers lists what a member of a class may carry.
var memberModifiers = map[symbols.SymbolKind]symbols.Modifiers{
	symbols.KindField: access | symbols.ModNew | symbols.ModStatic | symbols.ModReadonly |
		symbols.ModVolatile | symbols.ModUnsafe | symbols.ModConst,
	symbols.KindMethod: access | symbols.ModNew | symbols.ModStatic | virtualSet |
		symbols.ModExtern | symbols.ModPartial | symbols.ModUnsafe,
	symbols.KindProperty: access | symbols.ModNew | symbols.ModStatic | virtualSet |
		symbols.ModExtern | symbols.ModPartial | symbols.ModUnsafe,
	symbols.KindIndexer: access | symbols.ModNew | virtualSet |
		symbols.ModExtern | symbols.ModPartial | symbols.ModUnsafe,
	symbols.KindEvent: access | symbols.ModNew | symbols.ModStatic | virtualSet |
		symbols.ModExtern | symbols.ModUnsafe,
	symbols.KindOperator:    symbols.ModPublic | symbols.ModStatic | symbols.ModExtern | symbols.ModUnsafe,
	symbols.KindConstructor: access | symbols.ModStatic | symbols.ModExtern | symbols.ModUnsafe,
	symbols.KindDestructor:  symbols.ModExtern | symbols.ModUnsafe,
}

// allowedModifiers is the legal modifier set for s in its container.
func (c *checker) allowedModifiers(s *symbols.Symbol) symbols.Modifiers {
	where := c.containerOf(s)
	if s.Kind.IsType() {
		allowed := typeModifiers[s.Kind]
		if where == inNamespace {
			return allowed | symbols.ModPublic | symbols.ModInternal
		}
		return allowed | access | symbols.ModNew
	}
	allowed := memberModifiers[s.Kind]
	switch where {
	case inStruct:
		allowed &^= symbols.ModAbstract | symbols.ModVirtual | symbols.ModSealed
		switch s.Kind {
		case symbols.KindMethod, symbols.KindProperty, symbols.KindIndexer, symbols.KindEvent:
			allowed |= symbols.ModReadonly
		}
	case inInterface:
		allowed &^= symbols.ModOverride | symbols.ModReadonly | symbols.ModVolatile
		if s.Kind == symbols.KindField {
			allowed &^= symbols.ModNew
		}
	}
	return allowed
}

// namespaceForbidden are the access keywords CS1527 covers.
const namespaceForbidden = symbols.ModPrivate | symbols.ModProtected

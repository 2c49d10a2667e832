package symbols

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	KindInvalid SymbolKind = iota
	KindNamespace
	KindClass
	KindStruct
	KindInterface
	KindEnum
	KindDelegate
	KindMethod
	KindProperty
	KindEvent
	KindField
	KindIndexer
	KindOperator
	KindConstructor
	KindDestructor
)

func (k SymbolKind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindDelegate:
		return "delegate"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	case KindEvent:
		return "event"
	case KindField:
		return "field"
	case KindIndexer:
		return "indexer"
	case KindOperator:
		return "operator"
	case KindConstructor:
		return "constructor"
	case KindDestructor:
		return "destructor"
	default:
		return "invalid"
	}
}

// ParseKind is the inverse of String.
func ParseKind(s string) (SymbolKind, bool) {
	for k := KindNamespace; k <= KindDestructor; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindInvalid, false
}

// IsType reports whether the kind declares a type.
func (k SymbolKind) IsType() bool {
	return k >= KindClass && k <= KindDelegate
}

// IsMember reports whether the kind is owned by a type.
func (k SymbolKind) IsMember() bool {
	return k >= KindMethod && k <= KindDestructor
}

// IsMethodLike reports kinds that overload by signature.
func (k SymbolKind) IsMethodLike() bool {
	switch k {
	case KindMethod, KindOperator, KindConstructor, KindDestructor:
		return true
	}
	return false
}

// IsPropertyLike reports properties and indexers.
func (k SymbolKind) IsPropertyLike() bool {
	return k == KindProperty || k == KindIndexer
}

// HasSignature reports kinds whose parameter list participates in identity.
func (k SymbolKind) HasSignature() bool {
	return k.IsMethodLike() || k == KindIndexer
}

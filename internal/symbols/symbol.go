package symbols

import (
	"github.com/dotnet/roslyn-sub221/internal/source"
)

// SymbolFlags encode binder facts that are not modifiers.
type SymbolFlags uint16

const (
	// FlagHasBody: the declaration has a body (block or expression).
	FlagHasBody SymbolFlags = 1 << iota
	// FlagFromMetadata: imported from a referenced assembly.
	FlagFromMetadata
	// FlagBogus: metadata shape the language cannot represent.
	FlagBogus
	// FlagExtension: first parameter carries the 'this' receiver.
	FlagExtension
	// FlagImplicit: synthesized by the binder (default constructor).
	FlagImplicit
	// FlagDefaultImpl: interface member with a default implementation.
	FlagDefaultImpl
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, e := range flagNames {
		if f&e.flag != 0 {
			labels = append(labels, e.name)
		}
	}
	return labels
}

var flagNames = []struct {
	flag SymbolFlags
	name string
}{
	{FlagHasBody, "body"},
	{FlagFromMetadata, "metadata"},
	{FlagBogus, "bogus"},
	{FlagExtension, "extension"},
	{FlagImplicit, "implicit"},
	{FlagDefaultImpl, "default"},
}

// ParseFlag is the inverse of Strings for a single label.
func ParseFlag(s string) (SymbolFlags, bool) {
	for _, e := range flagNames {
		if e.name == s {
			return e.flag, true
		}
	}
	return 0, false
}

// AccessorKind names the accessor slot.
type AccessorKind uint8

const (
	AccessorGet AccessorKind = iota
	AccessorSet
	AccessorAdd
	AccessorRemove
)

func (k AccessorKind) String() string {
	switch k {
	case AccessorGet:
		return "get"
	case AccessorSet:
		return "set"
	case AccessorAdd:
		return "add"
	case AccessorRemove:
		return "remove"
	}
	return "?"
}

// ParseAccessorKind is the inverse of String.
func ParseAccessorKind(s string) (AccessorKind, bool) {
	for k := AccessorGet; k <= AccessorRemove; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return AccessorGet, false
}

// Accessor is a get/set/add/remove part of a property, indexer or event.
type Accessor struct {
	Kind      AccessorKind
	Modifiers Modifiers
	HasBody   bool
	Span      source.Span
}

// ClassConstraint is the primary constraint kind.
type ClassConstraint uint8

const (
	ConstraintNone ClassConstraint = iota
	ConstraintClass
	ConstraintStruct
)

func (c ClassConstraint) String() string {
	switch c {
	case ConstraintClass:
		return "class"
	case ConstraintStruct:
		return "struct"
	}
	return ""
}

// ConstraintSet is the where-clause of one type parameter.
type ConstraintSet struct {
	Class ClassConstraint
	// BaseType is a specific class constraint.
	BaseType   *TypeRef
	Interfaces []TypeRef
	// TypeParams are bounds on sibling type parameters (where T : U).
	TypeParams []TypeRef
	New        bool
	Span       source.Span
}

// IsEmpty reports a type parameter without a where-clause.
func (c *ConstraintSet) IsEmpty() bool {
	return c.Class == ConstraintNone && c.BaseType == nil && len(c.Interfaces) == 0 && len(c.TypeParams) == 0 && !c.New
}

// Types lists every constraint type in written order: base type, interfaces, type parameters.
func (c *ConstraintSet) Types() []TypeRef {
	out := make([]TypeRef, 0, 1+len(c.Interfaces)+len(c.TypeParams))
	if c.BaseType != nil {
		out = append(out, *c.BaseType)
	}
	out = append(out, c.Interfaces...)
	return append(out, c.TypeParams...)
}

// TypeParam is a generic parameter of a type or method.
type TypeParam struct {
	Name        string
	Span        source.Span
	Constraints ConstraintSet
}

// Symbol is one arena record: a namespace, a type or a member.
// Kind-specific fields are zero for kinds that do not use them.
type Symbol struct {
	ID        SymbolID
	Kind      SymbolKind
	Name      string
	Container SymbolID
	Module    ModuleID
	Span      source.Span
	Modifiers Modifiers
	Flags     SymbolFlags

	TypeParams []TypeParam

	// Types and namespaces.
	Base       *TypeRef
	Interfaces []TypeRef
	Members    []SymbolID

	// Members.
	Sig               Signature
	Accessors         []Accessor
	ExplicitInterface *TypeRef
	// IndexerName overrides the metadata name "Item" of an indexer.
	IndexerName string
}

// Arity is the number of type parameters.
func (s *Symbol) Arity() int { return len(s.TypeParams) }

// Is reports whether all bits of m are present.
func (s *Symbol) Is(m Modifiers) bool { return s.Modifiers.Has(m) }

// HasFlag reports whether all bits of f are present.
func (s *Symbol) HasFlag(f SymbolFlags) bool { return s.Flags&f == f }

// HasBody reports whether the declaration has a body.
func (s *Symbol) HasBody() bool { return s.Flags&FlagHasBody != 0 }

// IsStatic reports the static modifier. Constants count as static.
func (s *Symbol) IsStatic() bool { return s.Modifiers.Any(ModStatic | ModConst) }

// IsExplicitImpl reports an explicit interface implementation.
func (s *Symbol) IsExplicitImpl() bool { return s.ExplicitInterface != nil }

// IsOverridable reports virtual, abstract or (non-sealed) override members.
func (s *Symbol) IsOverridable() bool {
	return s.Modifiers.Any(ModVirtual|ModAbstract|ModOverride) && !s.Is(ModSealed)
}

// Accessor returns the accessor of kind k, if declared.
func (s *Symbol) Accessor(k AccessorKind) (*Accessor, bool) {
	for i := range s.Accessors {
		if s.Accessors[i].Kind == k {
			return &s.Accessors[i], true
		}
	}
	return nil, false
}

// HasAccessor reports whether accessor k is declared.
func (s *Symbol) HasAccessor(k AccessorKind) bool {
	_, ok := s.Accessor(k)
	return ok
}

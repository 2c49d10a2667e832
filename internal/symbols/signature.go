package symbols

import (
	"github.com/dotnet/roslyn-sub221/internal/source"
)

// RefKind is the passing mode of a parameter.
type RefKind uint8

const (
	RefByValue RefKind = iota
	RefRef
	RefOut
	RefIn
)

func (k RefKind) String() string {
	switch k {
	case RefRef:
		return "ref"
	case RefOut:
		return "out"
	case RefIn:
		return "in"
	}
	return ""
}

// ParseRefKind accepts "", "ref", "out" and "in".
func ParseRefKind(s string) (RefKind, bool) {
	switch s {
	case "":
		return RefByValue, true
	case "ref":
		return RefRef, true
	case "out":
		return RefOut, true
	case "in":
		return RefIn, true
	}
	return RefByValue, false
}

// ByRef reports any by-reference mode. ref, out and in are one shape in metadata.
func (k RefKind) ByRef() bool { return k != RefByValue }

// Param is a formal parameter.
type Param struct {
	Name     string
	Type     TypeRef
	RefKind  RefKind
	IsParams bool
	Span     source.Span
}

// Signature carries the parameter list and the member type.
// Return is the return type of methods and the value type of fields,
// properties, indexers and events.
type Signature struct {
	Params []Param
	Return TypeRef
	// RefReturn is set for members returning (or typed) by reference.
	RefReturn bool
}

// HasOutParam reports whether any parameter is out.
func (s *Signature) HasOutParam() bool {
	for _, p := range s.Params {
		if p.RefKind == RefOut {
			return true
		}
	}
	return false
}

// HasParamsArray reports whether the last parameter is a params array.
func (s *Signature) HasParamsArray() bool {
	return len(s.Params) > 0 && s.Params[len(s.Params)-1].IsParams
}

// SigCompare controls how two parameter lists are compared.
type SigCompare uint8

const (
	// CompareExact requires equal types and equal ref kinds.
	CompareExact SigCompare = iota
	// CompareMetadata treats ref, out and in as the same shape.
	CompareMetadata
	// CompareTypesOnly ignores ref kinds altogether.
	CompareTypesOnly
)

// SameParams compares parameter lists after applying subst to b's types.
func SameParams(a, b []Param, subst Subst, mode SigCompare) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Type.Equal(subst.Apply(b[i].Type)) {
			return false
		}
		switch mode {
		case CompareExact:
			if a[i].RefKind != b[i].RefKind {
				return false
			}
		case CompareMetadata:
			if a[i].RefKind.ByRef() != b[i].RefKind.ByRef() {
				return false
			}
		}
	}
	return true
}

// RefKindOnlyDifference returns the first parameter position whose ref kinds
// differ among ref/out/in while everything else matches exactly.
func RefKindOnlyDifference(a, b []Param) (int, bool) {
	if !SameParams(a, b, nil, CompareMetadata) || SameParams(a, b, nil, CompareExact) {
		return -1, false
	}
	for i := range a {
		if a[i].RefKind != b[i].RefKind {
			return i, true
		}
	}
	return -1, false
}

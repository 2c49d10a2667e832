package symbols

import "strings"

// Modifiers is the set of declaration modifiers as written in source.
type Modifiers uint32

const (
	ModPublic Modifiers = 1 << iota
	ModInternal
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModVirtual
	ModOverride
	ModSealed
	ModNew
	ModPartial
	ModExtern
	ModReadonly
	ModVolatile
	ModUnsafe
	ModConst
)

// ModAccessMask covers the accessibility keywords.
const ModAccessMask = ModPublic | ModInternal | ModProtected | ModPrivate

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"},
	{ModInternal, "internal"},
	{ModProtected, "protected"},
	{ModPrivate, "private"},
	{ModNew, "new"},
	{ModStatic, "static"},
	{ModConst, "const"},
	{ModAbstract, "abstract"},
	{ModVirtual, "virtual"},
	{ModSealed, "sealed"},
	{ModOverride, "override"},
	{ModExtern, "extern"},
	{ModReadonly, "readonly"},
	{ModVolatile, "volatile"},
	{ModUnsafe, "unsafe"},
	{ModPartial, "partial"},
}

// Has reports whether all bits of m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool { return m&m2 == m2 }

// Any reports whether any bit of m2 is set.
func (m Modifiers) Any(m2 Modifiers) bool { return m&m2 != 0 }

// Each calls fn for every set modifier in canonical keyword order.
func (m Modifiers) Each(fn func(Modifiers, string)) {
	for _, e := range modifierNames {
		if m&e.mod != 0 {
			fn(e.mod, e.name)
		}
	}
}

// Names lists set modifiers in canonical keyword order.
func (m Modifiers) Names() []string {
	out := make([]string, 0, 4)
	m.Each(func(_ Modifiers, name string) { out = append(out, name) })
	return out
}

func (m Modifiers) String() string {
	return strings.Join(m.Names(), " ")
}

// ParseModifier maps a keyword to its bit.
func ParseModifier(s string) (Modifiers, bool) {
	for _, e := range modifierNames {
		if e.name == s {
			return e.mod, true
		}
	}
	return 0, false
}

// Accessibility is the declared or effective accessibility of a symbol.
type Accessibility uint8

const (
	AccNotApplicable Accessibility = iota
	AccPrivate
	AccPrivateProtected
	AccProtected
	AccInternal
	AccProtectedInternal
	AccPublic
)

func (a Accessibility) String() string {
	switch a {
	case AccPrivate:
		return "private"
	case AccPrivateProtected:
		return "private protected"
	case AccProtected:
		return "protected"
	case AccInternal:
		return "internal"
	case AccProtectedInternal:
		return "protected internal"
	case AccPublic:
		return "public"
	}
	return ""
}

// rank orders accessibilities; protected and internal share a rank.
func (a Accessibility) rank() int {
	switch a {
	case AccPrivate:
		return 1
	case AccPrivateProtected:
		return 2
	case AccProtected, AccInternal:
		return 3
	case AccProtectedInternal:
		return 4
	case AccPublic:
		return 5
	}
	return 0
}

// LessThan reports whether a is strictly less accessible than b.
func (a Accessibility) LessThan(b Accessibility) bool {
	if a == AccProtected && b == AccInternal || a == AccInternal && b == AccProtected {
		return true
	}
	return a.rank() < b.rank()
}

// Restrict returns the more restrictive of a and b.
func (a Accessibility) Restrict(b Accessibility) Accessibility {
	switch {
	case a == AccNotApplicable:
		return b
	case b == AccNotApplicable:
		return a
	case a == AccProtected && b == AccInternal, a == AccInternal && b == AccProtected:
		return AccPrivateProtected
	case a.rank() <= b.rank():
		return a
	}
	return b
}

// AccessibilityOf decodes explicit access keywords. The second result is
// false when no access keyword is present.
func AccessibilityOf(m Modifiers) (Accessibility, bool) {
	switch m & ModAccessMask {
	case ModPublic:
		return AccPublic, true
	case ModInternal:
		return AccInternal, true
	case ModProtected:
		return AccProtected, true
	case ModPrivate:
		return AccPrivate, true
	case ModProtected | ModInternal:
		return AccProtectedInternal, true
	case ModPrivate | ModProtected:
		return AccPrivateProtected, true
	case 0:
		return AccNotApplicable, false
	}
	// conflicting keywords; the binder already reported them
	return AccPrivate, true
}

package symbols

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultIndexerName is the metadata name of an indexer without IndexerName.
const DefaultIndexerName = "Item"

var binaryOperators = map[string]string{
	"+": "op_Addition", "-": "op_Subtraction", "*": "op_Multiply", "/": "op_Division",
	"%": "op_Modulus", "&": "op_BitwiseAnd", "|": "op_BitwiseOr", "^": "op_ExclusiveOr",
	"<<": "op_LeftShift", ">>": "op_RightShift", "==": "op_Equality", "!=": "op_Inequality",
	"<": "op_LessThan", ">": "op_GreaterThan", "<=": "op_LessThanOrEqual", ">=": "op_GreaterThanOrEqual",
}

var unaryOperators = map[string]string{
	"+": "op_UnaryPlus", "-": "op_UnaryNegation", "!": "op_LogicalNot", "~": "op_OnesComplement",
	"++": "op_Increment", "--": "op_Decrement", "true": "op_True", "false": "op_False",
	"implicit": "op_Implicit", "explicit": "op_Explicit",
}

// OperatorMetadataName maps an operator token and its arity to the
// metadata name ("+" with two operands → "op_Addition").
func OperatorMetadataName(token string, operands int) string {
	if operands == 2 {
		if n, ok := binaryOperators[token]; ok {
			return n
		}
	}
	if n, ok := unaryOperators[token]; ok {
		return n
	}
	return "op_" + token
}

// IndexerMetadataName returns the metadata property name of an indexer.
func (s *Symbol) IndexerMetadataName() string {
	if s.IndexerName != "" {
		return s.IndexerName
	}
	return DefaultIndexerName
}

// MetadataName is the fully-qualified metadata name of a type or namespace:
// "N.Outer`1+Inner".
func (c *Compilation) MetadataName(id SymbolID) string {
	s := c.MustSym(id)
	name := s.Name
	if s.Arity() > 0 {
		name += "`" + strconv.Itoa(s.Arity())
	}
	parent := c.Sym(s.Container)
	switch {
	case parent == nil || parent.ID == c.Global:
		return name
	case parent.Kind.IsType():
		return c.MetadataName(parent.ID) + "+" + name
	}
	return c.MetadataName(parent.ID) + "." + name
}

// MemberMetadataName is the simple metadata name of a member.
func (c *Compilation) MemberMetadataName(id SymbolID) string {
	s := c.MustSym(id)
	switch s.Kind {
	case KindConstructor:
		if s.IsStatic() {
			return ".cctor"
		}
		return ".ctor"
	case KindDestructor:
		return "Finalize"
	case KindOperator:
		return OperatorMetadataName(s.Name, len(s.Sig.Params))
	case KindIndexer:
		return s.IndexerMetadataName()
	}
	if s.Kind.IsType() && s.Arity() > 0 {
		return s.Name + "`" + strconv.Itoa(s.Arity())
	}
	return s.Name
}

// AccessorMetadataName is "get_P", "set_Item", "add_E" and so on.
func (c *Compilation) AccessorMetadataName(id SymbolID, k AccessorKind) string {
	s := c.MustSym(id)
	base := s.Name
	if s.Kind == KindIndexer {
		base = s.IndexerMetadataName()
	}
	return k.String() + "_" + base
}

// AccessorParams is the metadata parameter list of an accessor: the indexer
// parameters, followed by the value for set/add/remove.
func (c *Compilation) AccessorParams(id SymbolID, k AccessorKind) []Param {
	s := c.MustSym(id)
	out := make([]Param, 0, len(s.Sig.Params)+1)
	out = append(out, s.Sig.Params...)
	if k != AccessorGet {
		out = append(out, Param{Name: "value", Type: s.Sig.Return})
	}
	return out
}

// FoldName normalizes a metadata name for comparison. Names are compared
// ordinally unless the compilation asks for case-insensitive comparison.
func (c *Compilation) FoldName(name string) string {
	if !c.CaseInsensitiveNames {
		return name
	}
	// Caser keeps state; a fresh one per call keeps passes goroutine-safe.
	return cases.Fold().String(name)
}

// SameName compares two metadata names under the compilation's rules.
func (c *Compilation) SameName(a, b string) bool {
	if !c.CaseInsensitiveNames {
		return a == b
	}
	return strings.EqualFold(a, b) || c.FoldName(a) == c.FoldName(b)
}

package symbols

import (
	"fmt"

	"github.com/dotnet/roslyn-sub221/internal/source"
)

// SpecialType enumerates the core library types the validator reasons about.
type SpecialType uint8

const (
	SpecialNone SpecialType = iota
	SpecialObject
	SpecialValueType
	SpecialEnum
	SpecialDelegate
	SpecialMulticastDelegate
	SpecialArray
	SpecialVoid
	SpecialBoolean
	SpecialInt32
	SpecialInt64
	SpecialDouble
	SpecialString
	specialCount
)

var specialInfo = [specialCount]struct {
	name    string
	keyword string
	kind    SymbolKind
	mods    Modifiers
}{
	SpecialObject:            {"Object", "object", KindClass, ModPublic},
	SpecialValueType:         {"ValueType", "", KindClass, ModPublic | ModAbstract},
	SpecialEnum:              {"Enum", "", KindClass, ModPublic | ModAbstract},
	SpecialDelegate:          {"Delegate", "", KindClass, ModPublic | ModAbstract},
	SpecialMulticastDelegate: {"MulticastDelegate", "", KindClass, ModPublic | ModAbstract},
	SpecialArray:             {"Array", "", KindClass, ModPublic | ModAbstract},
	SpecialVoid:              {"Void", "void", KindStruct, ModPublic},
	SpecialBoolean:           {"Boolean", "bool", KindStruct, ModPublic},
	SpecialInt32:             {"Int32", "int", KindStruct, ModPublic},
	SpecialInt64:             {"Int64", "long", KindStruct, ModPublic},
	SpecialDouble:            {"Double", "double", KindStruct, ModPublic},
	SpecialString:            {"String", "string", KindClass, ModPublic | ModSealed},
}

// SpecialByKeyword resolves C# keywords and System.* names used by fixtures.
func SpecialByKeyword(s string) (SpecialType, bool) {
	for st := SpecialObject; st < specialCount; st++ {
		info := specialInfo[st]
		if s == info.keyword && info.keyword != "" || s == "System."+info.name {
			return st, true
		}
	}
	return SpecialNone, false
}

// CoreLibrary is the assembly identity of the synthesized core library.
const CoreLibrary = "System.Runtime"

// Compilation is the immutable input of validation: the symbol arena, the
// modules (compiled ones first, primary first of all) and referenced
// assemblies' forwarding tables.
type Compilation struct {
	Assembly   string
	Symbols    *Symbols
	Files      *source.FileSet
	Global     SymbolID
	Modules    []*Module
	References []*AssemblyRef

	special  [specialCount]SymbolID
	keywords map[SymbolID]string
	modules  map[ModuleID]*Module
	// Options the validator consults while comparing metadata names.
	CaseInsensitiveNames bool
}

// Sym returns the symbol for id or nil.
func (c *Compilation) Sym(id SymbolID) *Symbol {
	return c.Symbols.Get(id)
}

// MustSym returns the symbol or panics on a dangling reference.
func (c *Compilation) MustSym(id SymbolID) *Symbol {
	s := c.Symbols.Get(id)
	if s == nil {
		panic(fmt.Errorf("symbols: dangling symbol id %d", id))
	}
	return s
}

// Special returns the symbol of a core type.
func (c *Compilation) Special(st SpecialType) SymbolID {
	return c.special[st]
}

// SpecialRef is a TypeRef to a core type.
func (c *Compilation) SpecialRef(st SpecialType) TypeRef {
	return Named(c.special[st])
}

// IsSpecial reports whether id is the core type st.
func (c *Compilation) IsSpecial(id SymbolID, st SpecialType) bool {
	return id.IsValid() && c.special[st] == id
}

// Module returns the module record or nil.
func (c *Compilation) Module(id ModuleID) *Module {
	return c.modules[id]
}

// Primary returns the primary module.
func (c *Compilation) Primary() *Module {
	for _, m := range c.Modules {
		if m.Kind == ModulePrimary {
			return m
		}
	}
	return nil
}

// CompiledModules lists primary and added modules in order.
func (c *Compilation) CompiledModules() []*Module {
	out := make([]*Module, 0, len(c.Modules))
	for _, m := range c.Modules {
		if m.IsCompiled() {
			out = append(out, m)
		}
	}
	return out
}

// AssemblyOf returns the assembly identity a symbol belongs to.
func (c *Compilation) AssemblyOf(id SymbolID) string {
	s := c.Sym(id)
	if s == nil {
		return ""
	}
	if m := c.Module(s.Module); m != nil {
		return m.Assembly
	}
	return ""
}

// SameAssembly reports whether both symbols come from one assembly.
func (c *Compilation) SameAssembly(a, b SymbolID) bool {
	return c.AssemblyOf(a) == c.AssemblyOf(b)
}

// IsSource reports whether a symbol was declared in a compiled module.
func (c *Compilation) IsSource(id SymbolID) bool {
	s := c.Sym(id)
	if s == nil {
		return false
	}
	m := c.Module(s.Module)
	return m != nil && m.IsCompiled() && s.Flags&FlagFromMetadata == 0
}

// SourceTypes lists every type declared in compiled modules, in declaration order.
func (c *Compilation) SourceTypes() []SymbolID {
	out := make([]SymbolID, 0, 64)
	for _, s := range c.Symbols.All() {
		if s.Kind.IsType() && c.IsSource(s.ID) {
			out = append(out, s.ID)
		}
	}
	return out
}

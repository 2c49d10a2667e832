package symbols

import (
	"strconv"
	"strings"
)

// ModuleKind tells compiled modules from referenced metadata.
type ModuleKind uint8

const (
	// ModulePrimary is the manifest module of the assembly being compiled.
	ModulePrimary ModuleKind = iota
	// ModuleAdded is an additional module linked into the same assembly.
	ModuleAdded
	// ModuleReferenced belongs to a referenced assembly.
	ModuleReferenced
)

func (k ModuleKind) String() string {
	switch k {
	case ModulePrimary:
		return "primary"
	case ModuleAdded:
		return "added"
	case ModuleReferenced:
		return "referenced"
	}
	return "?"
}

// ExportKind distinguishes declared from forwarded exports.
type ExportKind uint8

const (
	ExportDeclared ExportKind = iota
	ExportForwarded
)

// ExportRecord is one entry of a module's exported-type table.
type ExportRecord struct {
	Kind ExportKind
	// Name is the fully-qualified metadata name, e.g. "N.List`1".
	Name   string
	Module ModuleID
	// Type is set for declared records.
	Type SymbolID
	// Target is the assembly identity a forwarded record points at.
	Target string
	// Container is the metadata name of the enclosing type when a nested
	// type is forwarded.
	Container string
	// IgnoreArity marks explicitly aliased records whose arity marker does
	// not participate in conflict detection.
	IgnoreArity bool
}

// ConflictKey is the name used to group records into conflict sets.
func (r ExportRecord) ConflictKey() string {
	if !r.IgnoreArity {
		return r.Name
	}
	return StripArity(r.Name)
}

// StripArity removes a trailing generic arity marker ("List`1" → "List").
func StripArity(name string) string {
	i := strings.LastIndexByte(name, '`')
	if i < 0 {
		return name
	}
	if _, err := strconv.Atoi(name[i+1:]); err != nil {
		return name
	}
	return name[:i]
}

// Module is a compiled or referenced module.
type Module struct {
	ID       ModuleID
	Kind     ModuleKind
	Name     string
	Assembly string
	Exports  []ExportRecord
}

// IsCompiled reports primary and added modules.
func (m *Module) IsCompiled() bool {
	return m.Kind != ModuleReferenced
}

// AssemblyRef is the forwarding table of a referenced assembly. It is used to
// follow forwarder chains across assemblies.
type AssemblyRef struct {
	Identity string
	// Forwards maps a metadata type name to the assembly it is forwarded to.
	Forwards map[string]string
	// Defines lists metadata type names the assembly declares itself.
	Defines map[string]struct{}
}

package symbols

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"github.com/dotnet/roslyn-sub221/internal/source"
)

// Decl describes one declaration handed to the Builder.
type Decl struct {
	Name       string
	Span       source.Span
	Modifiers  Modifiers
	Flags      SymbolFlags
	TypeParams []TypeParam
	Sig        Signature
	Accessors  []Accessor
	// ExplicitInterface names the interface of an explicit implementation.
	ExplicitInterface *TypeRef
	IndexerName       string
}

// Builder assembles a Compilation. It stands between the binder (or a
// fixture loader, or the symbol store) and the validator: once Build
// returns, the compilation is immutable.
type Builder struct {
	comp       *Compilation
	namespaces map[string]SymbolID
	corlib     ModuleID
	built      bool
}

// NewBuilder starts a compilation for assembly. The core library types are
// synthesized into a referenced module.
func NewBuilder(assembly string, files *source.FileSet) *Builder {
	if files == nil {
		files = source.NewFileSet()
	}
	comp := &Compilation{
		Assembly: assembly,
		Symbols:  NewSymbols(256),
		Files:    files,
		keywords: make(map[SymbolID]string),
		modules:  make(map[ModuleID]*Module),
	}
	b := &Builder{comp: comp, namespaces: make(map[string]SymbolID)}
	comp.Global = comp.Symbols.New(&Symbol{Kind: KindNamespace, Span: source.NoSpan})
	b.namespaces[""] = comp.Global
	b.corlib = b.AddModule(ModuleReferenced, CoreLibrary+".dll", CoreLibrary)
	b.seedCoreLibrary()
	return b
}

func (b *Builder) seedCoreLibrary() {
	system := b.Namespace("System")
	for st := SpecialObject; st < specialCount; st++ {
		info := specialInfo[st]
		id := b.DeclareType(b.corlib, info.kind, system, Decl{
			Name:      info.name,
			Span:      source.NoSpan,
			Modifiers: info.mods,
			Flags:     FlagFromMetadata,
		})
		b.comp.special[st] = id
		if info.keyword != "" {
			b.comp.keywords[id] = info.keyword
		}
	}
	b.SetBase(b.comp.special[SpecialEnum], Named(b.comp.special[SpecialValueType]))
	b.SetBase(b.comp.special[SpecialMulticastDelegate], Named(b.comp.special[SpecialDelegate]))
}

// Compilation exposes the compilation under construction. Callers must not
// keep symbol pointers across Declare calls.
func (b *Builder) Compilation() *Compilation { return b.comp }

// Files returns the file set spans point into.
func (b *Builder) Files() *source.FileSet { return b.comp.Files }

// Special returns the symbol of a core type.
func (b *Builder) Special(st SpecialType) SymbolID { return b.comp.special[st] }

// SpecialRef is a TypeRef to a core type.
func (b *Builder) SpecialRef(st SpecialType) TypeRef { return Named(b.comp.special[st]) }

// CoreModule is the module holding the synthesized core library.
func (b *Builder) CoreModule() ModuleID { return b.corlib }

// SetCaseInsensitiveNames makes metadata-name comparisons fold case.
func (b *Builder) SetCaseInsensitiveNames(on bool) { b.comp.CaseInsensitiveNames = on }

// AddModule registers a module. Modules may come in any order; Build moves
// the primary one ahead of the rest. An empty assembly means the
// compilation's own assembly.
func (b *Builder) AddModule(kind ModuleKind, name, assembly string) ModuleID {
	b.checkOpen()
	if assembly == "" {
		assembly = b.comp.Assembly
	}
	if kind == ModulePrimary && b.comp.Primary() != nil {
		panic(fmt.Errorf("symbols: second primary module %q", name))
	}
	raw, err := safecast.Conv[uint16](len(b.comp.modules) + 1)
	if err != nil {
		panic(fmt.Errorf("symbols: module table overflow: %w", err))
	}
	m := &Module{ID: ModuleID(raw), Kind: kind, Name: name, Assembly: assembly}
	b.comp.modules[m.ID] = m
	b.comp.Modules = append(b.comp.Modules, m)
	return m.ID
}

// AddReference registers a referenced assembly's forwarding table.
func (b *Builder) AddReference(ref *AssemblyRef) {
	b.checkOpen()
	if ref == nil {
		return
	}
	b.comp.References = append(b.comp.References, ref)
}

// Namespace returns (creating as needed) the namespace with a dotted name.
func (b *Builder) Namespace(qualified string) SymbolID {
	b.checkOpen()
	if id, ok := b.namespaces[qualified]; ok {
		return id
	}
	parent := b.comp.Global
	name := qualified
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		parent = b.Namespace(qualified[:i])
		name = qualified[i+1:]
	}
	id := b.comp.Symbols.New(&Symbol{Kind: KindNamespace, Name: name, Container: parent, Span: source.NoSpan})
	b.comp.MustSym(parent).Members = append(b.comp.MustSym(parent).Members, id)
	b.namespaces[qualified] = id
	return id
}

// DeclareType adds a type to a namespace or, as a nested type, to another type.
// Nested types inherit the module of their container.
func (b *Builder) DeclareType(module ModuleID, kind SymbolKind, container SymbolID, d Decl) SymbolID {
	b.checkOpen()
	if !kind.IsType() {
		panic(fmt.Errorf("symbols: DeclareType with %s", kind))
	}
	parent := b.comp.MustSym(container)
	switch {
	case parent.Kind.IsType():
		module = parent.Module
	case parent.Kind == KindNamespace:
		if b.comp.Module(module) == nil {
			panic(fmt.Errorf("symbols: type %q declared in unknown module %d", d.Name, module))
		}
	default:
		panic(fmt.Errorf("symbols: type %q nested in %s", d.Name, parent.Kind))
	}
	return b.declare(kind, container, module, d)
}

// DeclareMember adds a member to a type.
func (b *Builder) DeclareMember(kind SymbolKind, container SymbolID, d Decl) SymbolID {
	b.checkOpen()
	if !kind.IsMember() {
		panic(fmt.Errorf("symbols: DeclareMember with %s", kind))
	}
	parent := b.comp.MustSym(container)
	if !parent.Kind.IsType() {
		panic(fmt.Errorf("symbols: member %q appended to %s", d.Name, parent.Kind))
	}
	return b.declare(kind, container, parent.Module, d)
}

func (b *Builder) declare(kind SymbolKind, container SymbolID, module ModuleID, d Decl) SymbolID {
	id := b.comp.Symbols.New(&Symbol{
		Kind:              kind,
		Name:              d.Name,
		Container:         container,
		Module:            module,
		Span:              d.Span,
		Modifiers:         d.Modifiers,
		Flags:             d.Flags,
		TypeParams:        d.TypeParams,
		Sig:               d.Sig,
		Accessors:         d.Accessors,
		ExplicitInterface: d.ExplicitInterface,
		IndexerName:       d.IndexerName,
	})
	if m := b.comp.Module(module); m != nil && m.Kind == ModuleReferenced {
		b.comp.MustSym(id).Flags |= FlagFromMetadata
	}
	parent := b.comp.MustSym(container)
	parent.Members = append(parent.Members, id)
	return id
}

// SetBase sets the explicit base class of a type.
func (b *Builder) SetBase(typ SymbolID, base TypeRef) {
	b.checkOpen()
	b.comp.MustSym(typ).Base = &base
}

// AddInterfaces appends to the interface list of a type.
func (b *Builder) AddInterfaces(typ SymbolID, refs ...TypeRef) {
	b.checkOpen()
	s := b.comp.MustSym(typ)
	s.Interfaces = append(s.Interfaces, refs...)
}

// SetConstraints sets the where-clause of a type parameter.
func (b *Builder) SetConstraints(owner SymbolID, ordinal int, cs ConstraintSet) {
	b.checkOpen()
	s := b.comp.MustSym(owner)
	if ordinal < 0 || ordinal >= len(s.TypeParams) {
		panic(fmt.Errorf("symbols: %q has no type parameter #%d", s.Name, ordinal))
	}
	s.TypeParams[ordinal].Constraints = cs
}

// SetSignature replaces the signature of a member. Members referring to their
// own type parameters are declared first and typed afterwards.
func (b *Builder) SetSignature(member SymbolID, sig Signature) {
	b.checkOpen()
	b.comp.MustSym(member).Sig = sig
}

// SetExplicitInterface marks a member as an explicit implementation of iface.
func (b *Builder) SetExplicitInterface(member SymbolID, iface TypeRef) {
	b.checkOpen()
	b.comp.MustSym(member).ExplicitInterface = &iface
}

// Forward records a type forwarder in a compiled module.
func (b *Builder) Forward(module ModuleID, rec ExportRecord) {
	b.checkOpen()
	m := b.comp.Module(module)
	if m == nil || !m.IsCompiled() {
		panic(fmt.Errorf("symbols: forwarder %q in non-compiled module %d", rec.Name, module))
	}
	rec.Kind = ExportForwarded
	rec.Module = module
	m.Exports = append(m.Exports, rec)
}

// Build validates references and freezes the compilation. Declared export
// records are placed ahead of forwarders in every compiled module.
func (b *Builder) Build() (*Compilation, error) {
	b.checkOpen()
	b.built = true
	c := b.comp
	if c.Primary() == nil {
		return nil, errors.New("symbols: compilation has no primary module")
	}
	// the export fold reads the primary module first
	slices.SortStableFunc(c.Modules, func(x, y *Module) int {
		return cmp.Compare(primaryRank(x), primaryRank(y))
	})

	var errs []error
	for _, s := range c.Symbols.All() {
		errs = append(errs, c.validateRefs(s)...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	declared := make(map[ModuleID][]ExportRecord)
	for _, s := range c.Symbols.All() {
		if !s.Kind.IsType() || c.MustSym(s.Container).Kind != KindNamespace {
			continue
		}
		m := c.Module(s.Module)
		if m == nil || !m.IsCompiled() {
			continue
		}
		declared[m.ID] = append(declared[m.ID], ExportRecord{
			Kind:   ExportDeclared,
			Name:   c.MetadataName(s.ID),
			Module: m.ID,
			Type:   s.ID,
		})
	}
	for _, m := range c.Modules {
		if recs := declared[m.ID]; len(recs) > 0 {
			m.Exports = append(recs, m.Exports...)
		}
	}
	return c, nil
}

func primaryRank(m *Module) int {
	if m.Kind == ModulePrimary {
		return 0
	}
	return 1
}

// MustBuild is Build for tests and hand-assembled compilations.
func (b *Builder) MustBuild() *Compilation {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func (b *Builder) checkOpen() {
	if b.built {
		panic("symbols: builder used after Build")
	}
}

func (c *Compilation) validateRefs(s *Symbol) []error {
	var errs []error
	check := func(what string, r TypeRef) {
		r.Walk(func(r TypeRef) {
			switch r.Kind {
			case RefNamed:
				t := c.Sym(r.Symbol)
				if t == nil || !t.Kind.IsType() {
					errs = append(errs, fmt.Errorf("%s of %q refers to non-type #%d", what, s.Name, r.Symbol))
				} else if len(r.Args) != t.Arity() {
					errs = append(errs, fmt.Errorf("%s of %q: %s expects %d type arguments, got %d", what, s.Name, t.Name, t.Arity(), len(r.Args)))
				}
			case RefTypeParam:
				o := c.Sym(r.Symbol)
				if o == nil || r.Ordinal < 0 || r.Ordinal >= o.Arity() {
					errs = append(errs, fmt.Errorf("%s of %q refers to missing type parameter %d of #%d", what, s.Name, r.Ordinal, r.Symbol))
				}
			}
		})
	}
	if s.Base != nil {
		check("base", *s.Base)
	}
	for _, r := range s.Interfaces {
		check("interface", r)
	}
	for _, tp := range s.TypeParams {
		for _, r := range tp.Constraints.Types() {
			check("constraint", r)
		}
	}
	for _, p := range s.Sig.Params {
		check("parameter", p.Type)
	}
	if !s.Sig.Return.IsNone() {
		check("type", s.Sig.Return)
	}
	if s.ExplicitInterface != nil {
		check("explicit interface", *s.ExplicitInterface)
	}
	return errs
}

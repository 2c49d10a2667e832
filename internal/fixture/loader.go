package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

var (
	// ErrInvalid marks a fixture that does not describe a bindable program.
	ErrInvalid = errors.New("invalid fixture")
	// ErrUnresolved marks a type name no declaration or core type matches.
	ErrUnresolved = errors.New("unresolved type")
)

// Input is one parsed fixture and the path it came from. Path is used in
// error messages and to resolve source_file.
type Input struct {
	Path string
	File *File
}

// Options tune Build.
type Options struct {
	// Assembly overrides the assembly name of the first fixture.
	Assembly string
	// Files receives the source texts; a new FileSet is made when nil.
	Files                *source.FileSet
	CaseInsensitiveNames bool
	// References are added next to the ones the fixtures list.
	References []*symbols.AssemblyRef
}

// Parse decodes one fixture. Unknown keys are errors.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &f, nil
}

// ReadFile parses the fixture at path.
func ReadFile(path string) (Input, error) {
	// #nosec G304 -- fixture paths come from the manifest or the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return Input{Path: path, File: f}, nil
}

// LoadFiles reads fixtures and builds one compilation from them.
func LoadFiles(paths []string, opts Options) (*symbols.Compilation, error) {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		in, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return Build(inputs, opts)
}

// Build binds parsed fixtures into a compilation. Types of every module are
// declared first, so fixtures may refer to each other in any order.
func Build(inputs []Input, opts Options) (*symbols.Compilation, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no fixtures", ErrInvalid)
	}
	asm := opts.Assembly
	if asm == "" {
		asm = inputs[0].File.Assembly
	}
	if asm == "" {
		return nil, fmt.Errorf("%w: %s: assembly name is required", ErrInvalid, inputs[0].Path)
	}
	files := opts.Files
	if files == nil {
		files = source.NewFileSet()
	}
	l := &loader{
		b:     symbols.NewBuilder(asm, files),
		files: files,
		index: make(map[string]symbols.SymbolID),
	}
	if opts.CaseInsensitiveNames {
		l.b.SetCaseInsensitiveNames(true)
	}
	for _, ref := range opts.References {
		l.b.AddReference(ref)
	}

	for i, in := range inputs {
		m, err := l.addModule(i, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Path, err)
		}
		l.mods = append(l.mods, m)
	}
	for _, m := range l.mods {
		for i := range m.in.File.Types {
			if err := l.declareType(m, &m.in.File.Types[i], nil, m.in.File.Types[i].Namespace); err != nil {
				return nil, fmt.Errorf("%s: %w", m.in.Path, err)
			}
		}
	}
	for _, m := range l.mods {
		for _, ts := range m.types {
			if err := l.completeType(ts); err != nil {
				return nil, fmt.Errorf("%s: type %s: %w", m.in.Path, ts.qualified, err)
			}
		}
	}
	for _, m := range l.mods {
		for _, fw := range m.in.File.Forwards {
			if fw.Name == "" || fw.Target == "" {
				return nil, fmt.Errorf("%w: %s: forward needs name and target", ErrInvalid, m.in.Path)
			}
			if !m.compiled {
				return nil, fmt.Errorf("%w: %s: referenced module %s cannot forward types", ErrInvalid, m.in.Path, m.name)
			}
			l.b.Forward(m.id, symbols.ExportRecord{
				Name:        fw.Name,
				Target:      fw.Target,
				Container:   fw.Container,
				IgnoreArity: fw.IgnoreArity,
			})
		}
	}
	return l.b.Build()
}

type loader struct {
	b     *symbols.Builder
	files *source.FileSet
	// index maps "N.Outer.Inner`arity" to declared types of all modules.
	index map[string]symbols.SymbolID
	mods  []*moduleState
}

type moduleState struct {
	in       Input
	name     string
	id       symbols.ModuleID
	compiled bool
	file     source.FileID
	hasFile  bool
	// used counts anchors consumed without an explicit occurrence.
	used  map[string]int
	types []*typeState
}

type typeState struct {
	decl      *Type
	id        symbols.SymbolID
	qualified string
	namespace string
	outer     *typeState
	mod       *moduleState
}

func (l *loader) addModule(i int, in Input) (*moduleState, error) {
	f := in.File
	kind := symbols.ModuleAdded
	if i == 0 {
		kind = symbols.ModulePrimary
	}
	switch f.Kind {
	case "":
	case "primary":
		kind = symbols.ModulePrimary
	case "added":
		kind = symbols.ModuleAdded
	case "referenced":
		kind = symbols.ModuleReferenced
	default:
		return nil, fmt.Errorf("%w: unknown module kind %q", ErrInvalid, f.Kind)
	}
	if kind == symbols.ModulePrimary && l.b.Compilation().Primary() != nil {
		return nil, fmt.Errorf("%w: second primary module", ErrInvalid)
	}
	if kind != symbols.ModulePrimary && l.b.Compilation().Primary() == nil {
		return nil, fmt.Errorf("%w: the first compiled module must be primary", ErrInvalid)
	}
	name := f.Module
	if name == "" {
		if kind != symbols.ModulePrimary {
			return nil, fmt.Errorf("%w: module name is required", ErrInvalid)
		}
		name = l.b.Compilation().Assembly + ".dll"
	}
	asm := ""
	if kind == symbols.ModuleReferenced {
		asm = f.ModuleAssembly
		if asm == "" {
			asm = strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	if f.CaseInsensitiveNames {
		l.b.SetCaseInsensitiveNames(true)
	}
	m := &moduleState{
		in:       in,
		name:     name,
		id:       l.b.AddModule(kind, name, asm),
		compiled: kind != symbols.ModuleReferenced,
		used:     make(map[string]int),
	}

	switch {
	case f.Source != "" && f.SourceFile != "":
		return nil, fmt.Errorf("%w: source and source_file are exclusive", ErrInvalid)
	case f.Source != "":
		m.file = l.files.AddVirtual(strings.TrimSuffix(in.Path, filepath.Ext(in.Path))+".cs", []byte(f.Source))
		m.hasFile = true
	case f.SourceFile != "":
		p := f.SourceFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(in.Path), filepath.FromSlash(p))
		}
		id, err := l.files.Load(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load source: %w", err)
		}
		m.file = id
		m.hasFile = true
	}
	if m.compiled && len(f.Types) > 0 && !m.hasFile {
		return nil, fmt.Errorf("%w: compiled module %s declares types but has no source", ErrInvalid, name)
	}

	for _, r := range f.References {
		if r.Identity == "" {
			return nil, fmt.Errorf("%w: reference without identity", ErrInvalid)
		}
		ref := &symbols.AssemblyRef{Identity: r.Identity, Forwards: r.Forwards}
		if len(r.Defines) > 0 {
			ref.Defines = make(map[string]struct{}, len(r.Defines))
			for _, d := range r.Defines {
				ref.Defines[d] = struct{}{}
			}
		}
		l.b.AddReference(ref)
	}
	return m, nil
}

// anchor resolves an "at" value to a span. Referenced modules have none.
func (l *loader) anchor(m *moduleState, at, fallback string) (source.Span, error) {
	if !m.compiled {
		return source.NoSpan, nil
	}
	if at == "" {
		at = fallback
	}
	word, nth, err := parseAnchor(at)
	if err != nil {
		return source.NoSpan, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if nth < 0 {
		nth = m.used[word]
		m.used[word]++
	}
	sp, ok := l.files.LocateWord(m.file, word, nth)
	if !ok {
		return source.NoSpan, fmt.Errorf("%w: occurrence %d of %q not found in source", ErrInvalid, nth, word)
	}
	return sp, nil
}

func parseModifiers(list []string) (symbols.Modifiers, error) {
	var out symbols.Modifiers
	for _, s := range list {
		m, ok := symbols.ParseModifier(s)
		if !ok {
			return 0, fmt.Errorf("%w: unknown modifier %q", ErrInvalid, s)
		}
		out |= m
	}
	return out, nil
}

func parseFlags(list []string) (symbols.SymbolFlags, error) {
	var out symbols.SymbolFlags
	for _, s := range list {
		f, ok := symbols.ParseFlag(s)
		if !ok {
			return 0, fmt.Errorf("%w: unknown flag %q", ErrInvalid, s)
		}
		out |= f
	}
	return out, nil
}

func (l *loader) typeParams(m *moduleState, list []TypeParam) ([]symbols.TypeParam, error) {
	out := make([]symbols.TypeParam, len(list))
	for i, tp := range list {
		if tp.Name == "" {
			return nil, fmt.Errorf("%w: type parameter #%d has no name", ErrInvalid, i)
		}
		sp, err := l.anchor(m, tp.At, tp.Name)
		if err != nil {
			return nil, err
		}
		out[i] = symbols.TypeParam{Name: tp.Name, Span: sp}
	}
	return out, nil
}

func arityKey(name string, arity int) string {
	if arity == 0 {
		return name
	}
	return fmt.Sprintf("%s`%d", name, arity)
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (l *loader) declareType(m *moduleState, t *Type, outer *typeState, ns string) error {
	if t.Name == "" {
		return fmt.Errorf("%w: type without name", ErrInvalid)
	}
	kind, ok := symbols.ParseKind(t.Kind)
	if !ok || !kind.IsType() {
		return fmt.Errorf("%w: type %s: bad kind %q", ErrInvalid, t.Name, t.Kind)
	}
	mods, err := parseModifiers(t.Modifiers)
	if err != nil {
		return fmt.Errorf("type %s: %w", t.Name, err)
	}
	flags, err := parseFlags(t.Flags)
	if err != nil {
		return fmt.Errorf("type %s: %w", t.Name, err)
	}
	sp, err := l.anchor(m, t.At, t.Name)
	if err != nil {
		return fmt.Errorf("type %s: %w", t.Name, err)
	}
	tps, err := l.typeParams(m, t.TypeParams)
	if err != nil {
		return fmt.Errorf("type %s: %w", t.Name, err)
	}

	container := l.b.Namespace(ns)
	prefix := ns
	if outer != nil {
		if t.Namespace != "" {
			return fmt.Errorf("%w: nested type %s cannot have a namespace", ErrInvalid, t.Name)
		}
		container = outer.id
		prefix = outer.qualified
	}
	id := l.b.DeclareType(m.id, kind, container, symbols.Decl{
		Name:       t.Name,
		Span:       sp,
		Modifiers:  mods,
		Flags:      flags,
		TypeParams: tps,
	})
	ts := &typeState{decl: t, id: id, qualified: joinName(prefix, t.Name), namespace: ns, outer: outer, mod: m}
	key := arityKey(ts.qualified, len(tps))
	if _, dup := l.index[key]; dup {
		return fmt.Errorf("%w: type %s declared twice", ErrInvalid, key)
	}
	l.index[key] = id
	m.types = append(m.types, ts)

	for i := range t.Nested {
		if err := l.declareType(m, &t.Nested[i], ts, ns); err != nil {
			return err
		}
	}
	return nil
}

// scope is the lookup context of a type expression: type parameters in
// scope (innermost first) and name prefixes to try.
type scope struct {
	mod      *moduleState
	params   []paramBinding
	prefixes []string
}

type paramBinding struct {
	name    string
	owner   symbols.SymbolID
	ordinal int
}

func (l *loader) typeScope(ts *typeState) scope {
	sc := scope{mod: ts.mod}
	for t := ts; t != nil; t = t.outer {
		for i, tp := range t.decl.TypeParams {
			sc.params = append(sc.params, paramBinding{tp.Name, t.id, i})
		}
		sc.prefixes = append(sc.prefixes, t.qualified)
	}
	ns := ts.namespace
	for ns != "" {
		sc.prefixes = append(sc.prefixes, ns)
		i := strings.LastIndexByte(ns, '.')
		if i < 0 {
			break
		}
		ns = ns[:i]
	}
	sc.prefixes = append(sc.prefixes, "")
	return sc
}

func (sc scope) withParams(owner symbols.SymbolID, list []TypeParam) scope {
	out := sc
	out.params = make([]paramBinding, 0, len(list)+len(sc.params))
	for i, tp := range list {
		out.params = append(out.params, paramBinding{tp.Name, owner, i})
	}
	out.params = append(out.params, sc.params...)
	return out
}

func (l *loader) resolve(text string, sc scope) (symbols.TypeRef, error) {
	e, err := parseTypeExpr(text)
	if err != nil {
		return symbols.TypeRef{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	ref, err := l.resolveExpr(e, sc)
	if err != nil {
		return symbols.TypeRef{}, err
	}
	if e.anchor != "" {
		sp, err := l.anchor(sc.mod, e.anchor, "")
		if err != nil {
			return symbols.TypeRef{}, err
		}
		ref = ref.At(sp)
	}
	return ref, nil
}

func (l *loader) resolveExpr(e *typeExpr, sc scope) (symbols.TypeRef, error) {
	ref, err := l.resolveNamed(e, sc)
	if err != nil {
		return symbols.TypeRef{}, err
	}
	for range e.rank {
		ref = symbols.ArrayOf(ref)
	}
	return ref, nil
}

func (l *loader) resolveNamed(e *typeExpr, sc scope) (symbols.TypeRef, error) {
	if len(e.args) == 0 {
		if !strings.Contains(e.name, ".") {
			for _, p := range sc.params {
				if p.name == e.name {
					return symbols.TypeParamRef(p.owner, p.ordinal), nil
				}
			}
		}
		if st, ok := symbols.SpecialByKeyword(e.name); ok {
			return l.b.SpecialRef(st), nil
		}
	}
	args := make([]symbols.TypeRef, len(e.args))
	for i, a := range e.args {
		r, err := l.resolveExpr(a, sc)
		if err != nil {
			return symbols.TypeRef{}, err
		}
		args[i] = r
	}
	key := arityKey(e.name, len(e.args))
	for _, prefix := range sc.prefixes {
		if id, ok := l.index[joinName(prefix, key)]; ok {
			return symbols.Named(id, args...), nil
		}
	}
	return symbols.TypeRef{}, fmt.Errorf("%w: %s", ErrUnresolved, e)
}

func (l *loader) completeType(ts *typeState) error {
	t := ts.decl
	sc := l.typeScope(ts)
	if t.Base != "" {
		ref, err := l.resolve(t.Base, sc)
		if err != nil {
			return fmt.Errorf("base: %w", err)
		}
		l.b.SetBase(ts.id, ref)
	}
	for _, s := range t.Interfaces {
		ref, err := l.resolve(s, sc)
		if err != nil {
			return fmt.Errorf("interfaces: %w", err)
		}
		l.b.AddInterfaces(ts.id, ref)
	}
	if err := l.constraints(ts.id, t.TypeParams, sc); err != nil {
		return err
	}
	for i := range t.Members {
		if err := l.declareMember(ts, &t.Members[i], sc); err != nil {
			name := t.Members[i].Name
			if name == "" {
				name = t.Members[i].Kind
			}
			return fmt.Errorf("member %s: %w", name, err)
		}
	}
	return nil
}

func (l *loader) constraints(owner symbols.SymbolID, list []TypeParam, sc scope) error {
	for i, tp := range list {
		if len(tp.Constraints) == 0 && tp.WhereAt == "" {
			continue
		}
		var cs symbols.ConstraintSet
		if tp.WhereAt != "" {
			sp, err := l.anchor(sc.mod, tp.WhereAt, "")
			if err != nil {
				return err
			}
			cs.Span = sp
		}
		for _, c := range tp.Constraints {
			switch strings.TrimSpace(c) {
			case "class":
				cs.Class = symbols.ConstraintClass
				continue
			case "struct":
				cs.Class = symbols.ConstraintStruct
				continue
			case "new()":
				cs.New = true
				continue
			}
			ref, err := l.resolve(c, sc)
			if err != nil {
				return fmt.Errorf("constraint of %s: %w", tp.Name, err)
			}
			switch {
			case ref.Kind == symbols.RefTypeParam:
				cs.TypeParams = append(cs.TypeParams, ref)
			case ref.Kind == symbols.RefNamed && l.b.Compilation().MustSym(ref.Symbol).Kind == symbols.KindInterface:
				cs.Interfaces = append(cs.Interfaces, ref)
			case cs.BaseType == nil:
				r := ref
				cs.BaseType = &r
			default:
				return fmt.Errorf("%w: %s has more than one class constraint", ErrInvalid, tp.Name)
			}
		}
		l.b.SetConstraints(owner, i, cs)
	}
	return nil
}

// anchorWord is the identifier a member is located by when "at" is empty.
func anchorWord(kind symbols.SymbolKind, name, typeName string) string {
	switch kind {
	case symbols.KindConstructor, symbols.KindDestructor:
		return typeName
	case symbols.KindIndexer:
		return "this"
	case symbols.KindOperator:
		return "operator"
	}
	return name
}

func (l *loader) declareMember(ts *typeState, mem *Member, sc scope) error {
	kindName := mem.Kind
	if kindName == "" {
		kindName = "method"
	}
	kind, ok := symbols.ParseKind(kindName)
	if !ok || !kind.IsMember() {
		return fmt.Errorf("%w: bad member kind %q", ErrInvalid, mem.Kind)
	}
	name := mem.Name
	switch kind {
	case symbols.KindConstructor, symbols.KindDestructor:
		if name == "" {
			name = ts.decl.Name
		}
	case symbols.KindIndexer:
		if name == "" {
			name = "this"
		}
	}
	if name == "" {
		return fmt.Errorf("%w: %s without name", ErrInvalid, kind)
	}
	mods, err := parseModifiers(mem.Modifiers)
	if err != nil {
		return err
	}
	flags, err := parseFlags(mem.Flags)
	if err != nil {
		return err
	}
	m := ts.mod
	sp, err := l.anchor(m, mem.At, anchorWord(kind, name, ts.decl.Name))
	if err != nil {
		return err
	}
	tps, err := l.typeParams(m, mem.TypeParams)
	if err != nil {
		return err
	}

	owner := l.b.Compilation().MustSym(ts.id).Kind
	body := !mods.Any(symbols.ModAbstract|symbols.ModExtern) && owner != symbols.KindInterface &&
		kind != symbols.KindField && !kind.IsPropertyLike() && kind != symbols.KindEvent
	if mem.Body != nil {
		body = *mem.Body
	}
	if body {
		flags |= symbols.FlagHasBody
	}

	var accessors []symbols.Accessor
	for _, a := range mem.Accessors {
		ak, ok := symbols.ParseAccessorKind(a.Kind)
		if !ok {
			return fmt.Errorf("%w: unknown accessor %q", ErrInvalid, a.Kind)
		}
		amods, err := parseModifiers(a.Modifiers)
		if err != nil {
			return err
		}
		asp, err := l.anchor(m, a.At, a.Kind)
		if err != nil {
			return err
		}
		accessors = append(accessors, symbols.Accessor{Kind: ak, Modifiers: amods, HasBody: a.Body, Span: asp})
	}

	id := l.b.DeclareMember(kind, ts.id, symbols.Decl{
		Name:        name,
		Span:        sp,
		Modifiers:   mods,
		Flags:       flags,
		TypeParams:  tps,
		Accessors:   accessors,
		IndexerName: mem.IndexerName,
	})

	// signatures may mention the member's own type parameters
	msc := sc.withParams(id, mem.TypeParams)
	sig := symbols.Signature{RefReturn: mem.RefReturn}
	switch {
	case mem.Type != "":
		ret, err := l.resolve(mem.Type, msc)
		if err != nil {
			return fmt.Errorf("type: %w", err)
		}
		sig.Return = ret
	case kind == symbols.KindMethod || kind == symbols.KindOperator:
		sig.Return = l.b.SpecialRef(symbols.SpecialVoid)
	case kind != symbols.KindConstructor && kind != symbols.KindDestructor:
		return fmt.Errorf("%w: %s needs a type", ErrInvalid, kind)
	}
	for i, p := range mem.Params {
		if p.Type == "" {
			return fmt.Errorf("%w: parameter #%d has no type", ErrInvalid, i)
		}
		pt, err := l.resolve(p.Type, msc)
		if err != nil {
			return fmt.Errorf("parameter %d: %w", i, err)
		}
		rk, ok := symbols.ParseRefKind(p.Ref)
		if !ok {
			return fmt.Errorf("%w: bad ref kind %q", ErrInvalid, p.Ref)
		}
		param := symbols.Param{Name: p.Name, Type: pt, RefKind: rk, IsParams: p.Params, Span: source.NoSpan}
		if p.At != "" {
			psp, err := l.anchor(m, p.At, "")
			if err != nil {
				return err
			}
			param.Span = psp
		}
		sig.Params = append(sig.Params, param)
	}
	l.b.SetSignature(id, sig)

	if mem.Explicit != "" {
		iface, err := l.resolve(mem.Explicit, sc)
		if err != nil {
			return fmt.Errorf("explicit: %w", err)
		}
		l.b.SetExplicitInterface(id, iface)
	}
	return l.constraints(id, mem.TypeParams, msc)
}

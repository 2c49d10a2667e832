package testkit

import (
	"strings"
	"testing"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// Program assembles a compilation by hand for tests. The source text is
// only there to give declarations real spans: Span finds identifiers in it.
type Program struct {
	t      testing.TB
	B      *symbols.Builder
	Files  *source.FileSet
	File   source.FileID
	Module symbols.ModuleID
	Global symbols.SymbolID
}

// New starts a program for assembly "App" with a primary module "App.dll"
// whose source is src.
func New(t testing.TB, src string) *Program {
	t.Helper()
	fs := source.NewFileSet()
	fs.SetBaseDir("/")
	file := fs.AddVirtual("/test.cs", []byte(src))
	b := symbols.NewBuilder("App", fs)
	mod := b.AddModule(symbols.ModulePrimary, "App.dll", "")
	return &Program{
		t:      t,
		B:      b,
		Files:  fs,
		File:   file,
		Module: mod,
		Global: b.Compilation().Global,
	}
}

// Span returns the nth (0-based) whole-word occurrence of word. The test
// fails when it does not exist.
func (p *Program) Span(word string, nth int) source.Span {
	p.t.Helper()
	sp, ok := p.Files.LocateWord(p.File, word, nth)
	if !ok {
		p.t.Fatalf("testkit: occurrence %d of %q not found", nth, word)
	}
	return sp
}

// Decl is a declaration named word located at its nth occurrence.
func (p *Program) Decl(word string, nth int, mods symbols.Modifiers) symbols.Decl {
	p.t.Helper()
	return symbols.Decl{Name: word, Span: p.Span(word, nth), Modifiers: mods}
}

// Type declares a top-level type of the primary module.
func (p *Program) Type(kind symbols.SymbolKind, word string, nth int, mods symbols.Modifiers, typeParams ...string) symbols.SymbolID {
	p.t.Helper()
	d := p.Decl(word, nth, mods)
	for _, tp := range typeParams {
		d.TypeParams = append(d.TypeParams, symbols.TypeParam{Name: tp})
	}
	return p.B.DeclareType(p.Module, kind, p.Global, d)
}

// Method declares a method. Methods get a body unless abstract, extern,
// or declared in an interface.
func (p *Program) Method(owner symbols.SymbolID, word string, nth int, mods symbols.Modifiers, ret symbols.TypeRef, params ...symbols.Param) symbols.SymbolID {
	p.t.Helper()
	d := p.Decl(word, nth, mods)
	d.Sig = symbols.Signature{Params: params, Return: ret}
	if !mods.Any(symbols.ModAbstract|symbols.ModExtern) && p.B.Compilation().MustSym(owner).Kind != symbols.KindInterface {
		d.Flags |= symbols.FlagHasBody
	}
	return p.B.DeclareMember(symbols.KindMethod, owner, d)
}

// Property declares an auto-property with the given accessors.
func (p *Program) Property(owner symbols.SymbolID, word string, nth int, mods symbols.Modifiers, typ symbols.TypeRef, accessors ...symbols.AccessorKind) symbols.SymbolID {
	p.t.Helper()
	d := p.Decl(word, nth, mods)
	d.Sig = symbols.Signature{Return: typ}
	for _, k := range accessors {
		d.Accessors = append(d.Accessors, symbols.Accessor{Kind: k})
	}
	return p.B.DeclareMember(symbols.KindProperty, owner, d)
}

// Field declares a field.
func (p *Program) Field(owner symbols.SymbolID, word string, nth int, mods symbols.Modifiers, typ symbols.TypeRef) symbols.SymbolID {
	p.t.Helper()
	d := p.Decl(word, nth, mods)
	d.Sig = symbols.Signature{Return: typ}
	return p.B.DeclareMember(symbols.KindField, owner, d)
}

// Special is a reference to a core type.
func (p *Program) Special(st symbols.SpecialType) symbols.TypeRef {
	return p.B.SpecialRef(st)
}

func (p *Program) Int() symbols.TypeRef  { return p.Special(symbols.SpecialInt32) }
func (p *Program) Void() symbols.TypeRef { return p.Special(symbols.SpecialVoid) }
func (p *Program) Str() symbols.TypeRef  { return p.Special(symbols.SpecialString) }

// Param is a parameter of type typ passed with rk.
func Param(typ symbols.TypeRef, rk symbols.RefKind) symbols.Param {
	return symbols.Param{Type: typ, RefKind: rk}
}

// Build freezes the compilation, failing the test on dangling references.
func (p *Program) Build() *symbols.Compilation {
	p.t.Helper()
	comp, err := p.B.Build()
	if err != nil {
		p.t.Fatalf("testkit: build: %v", err)
	}
	return comp
}

// Codes lists diagnostic identifiers in bag order.
func Codes(bag *diag.Bag) []string {
	out := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

// Golden renders bag the way golden files store it.
func (p *Program) Golden(bag *diag.Bag) string {
	return diag.FormatGoldenDiagnostics(bag.Items(), p.Files, false)
}

// Messages lists "CSxxxx message" lines in bag order.
func Messages(bag *diag.Bag) string {
	var b strings.Builder
	for i, d := range bag.Items() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Code.ID())
		b.WriteByte(' ')
		b.WriteString(d.Message)
	}
	return b.String()
}

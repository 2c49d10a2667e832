package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

func TestModifiers_Members(t *testing.T) {
	tests := []struct {
		name     string
		classMod symbols.Modifiers
		mod      symbols.Modifiers
		want     []string
	}{
		{"abstract in concrete class", 0, symbols.ModPublic | symbols.ModAbstract, []string{"CS0513"}},
		{"abstract virtual", symbols.ModAbstract, symbols.ModPublic | symbols.ModAbstract | symbols.ModVirtual, []string{"CS0503"}},
		{"abstract sealed", symbols.ModAbstract, symbols.ModPublic | symbols.ModAbstract | symbols.ModSealed, []string{"CS0238", "CS0502"}},
		{"private virtual", 0, symbols.ModPrivate | symbols.ModVirtual, []string{"CS0621"}},
		{"static virtual", 0, symbols.ModPublic | symbols.ModStatic | symbols.ModVirtual, []string{"CS0112"}},
		{"sealed without override", 0, symbols.ModPublic | symbols.ModSealed, []string{"CS0238"}},
		{"virtual in sealed class", symbols.ModSealed, symbols.ModPublic | symbols.ModVirtual, []string{"CS0549"}},
		{"volatile method", 0, symbols.ModPublic | symbols.ModVolatile, []string{"CS0106"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `class C { void M() {} }`)
			c := p.Type(symbols.KindClass, "C", 0, tt.classMod)
			p.Method(c, "M", 0, tt.mod, p.Void())

			bag := validate(t, p)
			assert.ElementsMatch(t, tt.want, testkit.Codes(bag), testkit.Messages(bag))
		})
	}
}

func TestModifiers_AbstractWithBody(t *testing.T) {
	p := testkit.New(t, `abstract class C { public abstract void M() {} }`)
	c := p.Type(symbols.KindClass, "C", 0, symbols.ModAbstract)
	d := p.Decl("M", 0, symbols.ModPublic|symbols.ModAbstract)
	d.Flags = symbols.FlagHasBody
	d.Sig.Return = p.Void()
	p.B.DeclareMember(symbols.KindMethod, c, d)

	bag := validate(t, p)
	require.Equal(t, []string{"CS0500"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C.M()"}, bag.Items()[0].Args)
}

func TestModifiers_MissingBody(t *testing.T) {
	p := testkit.New(t, `class C { void M(); }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	d := p.Decl("M", 0, 0)
	d.Sig.Return = p.Void()
	p.B.DeclareMember(symbols.KindMethod, c, d)

	bag := validate(t, p)
	assert.Equal(t, []string{"CS0501"}, testkit.Codes(bag))
}

func TestModifiers_Types(t *testing.T) {
	tests := []struct {
		name string
		mod  symbols.Modifiers
		want []string
	}{
		{"abstract sealed", symbols.ModAbstract | symbols.ModSealed, []string{"CS0418"}},
		{"static sealed", symbols.ModStatic | symbols.ModSealed, []string{"CS0441"}},
		{"private at namespace", symbols.ModPrivate, []string{"CS1527"}},
		{"virtual type", symbols.ModVirtual, []string{"CS0106"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `class C { }`)
			p.Type(symbols.KindClass, "C", 0, tt.mod)

			bag := validate(t, p)
			assert.Equal(t, tt.want, testkit.Codes(bag), testkit.Messages(bag))
		})
	}
}

func TestModifiers_PropertyAccessors(t *testing.T) {
	t.Run("both restricted", func(t *testing.T) {
		p := testkit.New(t, `class C { public int P { private get; private set; } }`)
		c := p.Type(symbols.KindClass, "C", 0, 0)
		d := p.Decl("P", 0, symbols.ModPublic)
		d.Sig.Return = p.Int()
		d.Accessors = []symbols.Accessor{
			{Kind: symbols.AccessorGet, Modifiers: symbols.ModPrivate},
			{Kind: symbols.AccessorSet, Modifiers: symbols.ModPrivate},
		}
		p.B.DeclareMember(symbols.KindProperty, c, d)

		bag := validate(t, p)
		assert.Equal(t, []string{"CS0274"}, testkit.Codes(bag))
	})
	t.Run("single accessor", func(t *testing.T) {
		p := testkit.New(t, `class C { public int P { private get; } }`)
		c := p.Type(symbols.KindClass, "C", 0, 0)
		d := p.Decl("P", 0, symbols.ModPublic)
		d.Sig.Return = p.Int()
		d.Accessors = []symbols.Accessor{{Kind: symbols.AccessorGet, Modifiers: symbols.ModPrivate}}
		p.B.DeclareMember(symbols.KindProperty, c, d)

		bag := validate(t, p)
		assert.Equal(t, []string{"CS0276"}, testkit.Codes(bag))
	})
	t.Run("not more restrictive", func(t *testing.T) {
		p := testkit.New(t, `class C { internal int P { get; public set; } }`)
		c := p.Type(symbols.KindClass, "C", 0, 0)
		d := p.Decl("P", 0, symbols.ModInternal)
		d.Sig.Return = p.Int()
		d.Accessors = []symbols.Accessor{
			{Kind: symbols.AccessorGet},
			{Kind: symbols.AccessorSet, Modifiers: symbols.ModPublic, Span: p.Span("set", 0)},
		}
		p.B.DeclareMember(symbols.KindProperty, c, d)

		bag := validate(t, p)
		require.Equal(t, []string{"CS0273"}, testkit.Codes(bag))
		assert.Equal(t, p.Span("set", 0), bag.Items()[0].Primary)
	})
}

func TestStaticClass(t *testing.T) {
	p := testkit.New(t, `static class S : I { public void M() {} public S() {} public int this[int i] => 0; }`)
	i := p.Type(symbols.KindInterface, "I", 0, 0)
	s := p.Type(symbols.KindClass, "S", 0, symbols.ModStatic)
	p.B.AddInterfaces(s, symbols.Named(i).At(p.Span("I", 0)))
	p.Method(s, "M", 0, symbols.ModPublic, p.Void())
	ctor := p.Decl("S", 1, symbols.ModPublic)
	ctor.Flags = symbols.FlagHasBody
	p.B.DeclareMember(symbols.KindConstructor, s, ctor)
	idx := p.Decl("this", 0, symbols.ModPublic)
	idx.Sig = symbols.Signature{Params: []symbols.Param{{Name: "i", Type: p.Int()}}, Return: p.Int()}
	idx.Accessors = []symbols.Accessor{{Kind: symbols.AccessorGet, HasBody: true}}
	p.B.DeclareMember(symbols.KindIndexer, s, idx)

	bag := validate(t, p)
	assert.Equal(t, []string{"CS0714", "CS0708", "CS0710", "CS0720"}, testkit.Codes(bag))
	for _, d := range bag.Items() {
		if d.Code.ID() == "CS0708" {
			assert.Equal(t, []string{"M"}, d.Args)
		}
	}
}

func TestStaticClass_EachInterfaceReported(t *testing.T) {
	p := testkit.New(t, `interface I { } interface J { } static class S : I, J { }`)
	i := p.Type(symbols.KindInterface, "I", 0, 0)
	j := p.Type(symbols.KindInterface, "J", 0, 0)
	s := p.Type(symbols.KindClass, "S", 0, symbols.ModStatic)
	p.B.AddInterfaces(s, symbols.Named(i).At(p.Span("I", 1)), symbols.Named(j).At(p.Span("J", 1)))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0714", "CS0714"}, testkit.Codes(bag))
	assert.Equal(t, p.Span("I", 1), bag.Items()[0].Primary)
	assert.Equal(t, p.Span("J", 1), bag.Items()[1].Primary)
}

func TestStaticClass_StaticMembersAreFine(t *testing.T) {
	p := testkit.New(t, `static class S { public static void M() {} static S() {} }`)
	s := p.Type(symbols.KindClass, "S", 0, symbols.ModStatic)
	p.Method(s, "M", 0, symbols.ModPublic|symbols.ModStatic, p.Void())
	ctor := p.Decl("S", 1, symbols.ModStatic)
	ctor.Flags = symbols.FlagHasBody
	p.B.DeclareMember(symbols.KindConstructor, s, ctor)

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func partialMethod(p *testkit.Program, c symbols.SymbolID, nth int, mods symbols.Modifiers, body bool, ret symbols.TypeRef, params ...symbols.Param) symbols.SymbolID {
	d := p.Decl("M", nth, mods|symbols.ModPartial)
	d.Sig = symbols.Signature{Params: params, Return: ret}
	if body {
		d.Flags = symbols.FlagHasBody
	}
	return p.B.DeclareMember(symbols.KindMethod, c, d)
}

func TestPartials_OutParameterNeedsAccessModifier(t *testing.T) {
	p := testkit.New(t, `partial class C { partial void M(out int x); }`)
	c := p.Type(symbols.KindClass, "C", 0, symbols.ModPartial)
	def := partialMethod(p, c, 0, 0, false, p.Void(), testkit.Param(p.Int(), symbols.RefOut))

	bag := validate(t, p)
	require.Equal(t, []string{"CS8795"}, testkit.Codes(bag))
	assert.Equal(t, p.Span("M", 0), bag.Items()[0].Primary)
	assert.Equal(t, []string{p.B.Compilation().Display(def)}, bag.Items()[0].Args)
}

func TestPartials_Methods(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *testkit.Program, c symbols.SymbolID)
		want  []string
	}{
		{"matched", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, 0, false, p.Void())
			partialMethod(p, c, 1, 0, true, p.Void())
		}, nil},
		{"implementation only", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, 0, true, p.Void())
		}, []string{"CS0759"}},
		{"two definitions", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, 0, false, p.Void())
			partialMethod(p, c, 1, 0, false, p.Void())
		}, []string{"CS0756"}},
		{"public without implementation", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, symbols.ModPublic, false, p.Void())
		}, []string{"CS8793"}},
		{"non-void without access", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, 0, false, p.Int())
			partialMethod(p, c, 1, 0, true, p.Int())
		}, []string{"CS8794", "CS8794"}},
		{"accessibility differs", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, symbols.ModPublic, false, p.Void())
			partialMethod(p, c, 1, symbols.ModInternal, true, p.Void())
		}, []string{"CS8797"}},
		{"static differs", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, 0, false, p.Void())
			partialMethod(p, c, 1, symbols.ModStatic, true, p.Void())
		}, []string{"CS0763"}},
		{"return differs", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, symbols.ModPublic, false, p.Int())
			partialMethod(p, c, 1, symbols.ModPublic, true, p.Str())
		}, []string{"CS8817"}},
		{"ref kind differs", func(p *testkit.Program, c symbols.SymbolID) {
			partialMethod(p, c, 0, 0, false, p.Void(), testkit.Param(p.Int(), symbols.RefRef))
			partialMethod(p, c, 1, 0, true, p.Void(), testkit.Param(p.Int(), symbols.RefIn))
		}, []string{"CS9256"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `partial class C { partial void M(); partial void M() {} }`)
			c := p.Type(symbols.KindClass, "C", 0, symbols.ModPartial)
			tt.build(p, c)

			bag := validate(t, p)
			if tt.want == nil {
				assert.Zero(t, bag.Len(), testkit.Messages(bag))
				return
			}
			assert.Equal(t, tt.want, testkit.Codes(bag), testkit.Messages(bag))
		})
	}
}

func TestPartials_OutsidePartialClass(t *testing.T) {
	p := testkit.New(t, `class C { partial void M(); partial void M() {} }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	partialMethod(p, c, 0, 0, false, p.Void())
	partialMethod(p, c, 1, 0, true, p.Void())

	bag := validate(t, p)
	assert.Equal(t, []string{"CS0751", "CS0751"}, testkit.Codes(bag))
}

func partialProperty(p *testkit.Program, c symbols.SymbolID, nth int, typ symbols.TypeRef, body bool, kinds ...symbols.AccessorKind) {
	d := p.Decl("P", nth, symbols.ModPublic|symbols.ModPartial)
	d.Sig.Return = typ
	for _, k := range kinds {
		d.Accessors = append(d.Accessors, symbols.Accessor{Kind: k, HasBody: body})
	}
	p.B.DeclareMember(symbols.KindProperty, c, d)
}

func TestPartials_Properties(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *testkit.Program, c symbols.SymbolID)
		want  []string
	}{
		{"matched", func(p *testkit.Program, c symbols.SymbolID) {
			partialProperty(p, c, 0, p.Int(), false, symbols.AccessorGet)
			partialProperty(p, c, 1, p.Int(), true, symbols.AccessorGet)
		}, nil},
		{"missing implementation", func(p *testkit.Program, c symbols.SymbolID) {
			partialProperty(p, c, 0, p.Int(), false, symbols.AccessorGet)
		}, []string{"CS9248"}},
		{"missing definition", func(p *testkit.Program, c symbols.SymbolID) {
			partialProperty(p, c, 0, p.Int(), true, symbols.AccessorGet)
		}, []string{"CS9249"}},
		{"accessor missing", func(p *testkit.Program, c symbols.SymbolID) {
			partialProperty(p, c, 0, p.Int(), false, symbols.AccessorGet, symbols.AccessorSet)
			partialProperty(p, c, 1, p.Int(), true, symbols.AccessorGet)
		}, []string{"CS9252"}},
		{"unexpected accessor", func(p *testkit.Program, c symbols.SymbolID) {
			partialProperty(p, c, 0, p.Int(), false, symbols.AccessorGet)
			partialProperty(p, c, 1, p.Int(), true, symbols.AccessorGet, symbols.AccessorSet)
		}, []string{"CS9253"}},
		{"type differs", func(p *testkit.Program, c symbols.SymbolID) {
			partialProperty(p, c, 0, p.Int(), false, symbols.AccessorGet)
			partialProperty(p, c, 1, p.Str(), true, symbols.AccessorGet)
		}, []string{"CS9255"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `partial class C { public partial int P { get; } public partial int P { get => 0; } }`)
			c := p.Type(symbols.KindClass, "C", 0, symbols.ModPartial)
			tt.build(p, c)

			bag := validate(t, p)
			if tt.want == nil {
				assert.Zero(t, bag.Len(), testkit.Messages(bag))
				return
			}
			assert.Equal(t, tt.want, testkit.Codes(bag), testkit.Messages(bag))
		})
	}
}

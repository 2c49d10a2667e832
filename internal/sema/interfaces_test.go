package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

func TestInterfaces_GenericImplicitImplementationWithStructConstraint(t *testing.T) {
	p := testkit.New(t, `interface I<T> { void M(T t); } class B<T> : I<T> where T : struct { public void M(T t) {} }`)
	i := p.Type(symbols.KindInterface, "I", 0, 0, "T")
	p.Method(i, "M", 0, 0, p.Void(), testkit.Param(symbols.TypeParamRef(i, 0), symbols.RefByValue))
	b := p.Type(symbols.KindClass, "B", 0, 0, "T")
	p.B.SetConstraints(b, 0, symbols.ConstraintSet{Class: symbols.ConstraintStruct})
	p.B.AddInterfaces(b, symbols.Named(i, symbols.TypeParamRef(b, 0)).At(p.Span("I", 1)))
	p.Method(b, "M", 1, symbols.ModPublic, p.Void(), testkit.Param(symbols.TypeParamRef(b, 0), symbols.RefByValue))

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestInterfaces_ImplicitImplementationOutcomes(t *testing.T) {
	tests := []struct {
		name string
		mod  symbols.Modifiers
		ret  func(p *testkit.Program) symbols.TypeRef
		skip bool
		want string
	}{
		{"missing", symbols.ModPublic, nil, true, "CS0535"},
		{"not public", symbols.ModInternal, nil, false, "CS0737"},
		{"static", symbols.ModPublic | symbols.ModStatic, nil, false, "CS0736"},
		{"wrong return", symbols.ModPublic, (*testkit.Program).Void, false, "CS0738"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `interface I { int M(); } class C : I { int M() => 0; }`)
			i := p.Type(symbols.KindInterface, "I", 0, 0)
			p.Method(i, "M", 0, 0, p.Int())
			c := p.Type(symbols.KindClass, "C", 0, 0)
			p.B.AddInterfaces(c, symbols.Named(i).At(p.Span("I", 1)))
			if !tt.skip {
				ret := p.Int()
				if tt.ret != nil {
					ret = tt.ret(p)
				}
				p.Method(c, "M", 1, tt.mod, ret)
			}

			bag := validate(t, p)
			require.Equal(t, []string{tt.want}, testkit.Codes(bag))
			d := bag.Items()[0]
			assert.Equal(t, p.Span("I", 1), d.Primary)
			assert.Equal(t, "C", d.Args[0])
			assert.Equal(t, "I.M()", d.Args[1])
			if tt.want == "CS0738" {
				assert.Equal(t, "int", d.Args[3])
			}
		})
	}
}

func TestInterfaces_InheritedImplementationSatisfies(t *testing.T) {
	p := testkit.New(t, `interface I { void M(); } class A { public void M() {} } class B : A, I { }`)
	i := p.Type(symbols.KindInterface, "I", 0, 0)
	p.Method(i, "M", 0, 0, p.Void())
	a := p.Type(symbols.KindClass, "A", 0, 0)
	p.Method(a, "M", 1, symbols.ModPublic, p.Void())
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a))
	p.B.AddInterfaces(b, symbols.Named(i))

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestInterfaces_PropertyMissingAccessor(t *testing.T) {
	p := testkit.New(t, `interface I { int P { get; set; } } class C : I { public int P { get; } }`)
	i := p.Type(symbols.KindInterface, "I", 0, 0)
	p.Property(i, "P", 0, 0, p.Int(), symbols.AccessorGet, symbols.AccessorSet)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.B.AddInterfaces(c, symbols.Named(i))
	p.Property(c, "P", 1, symbols.ModPublic, p.Int(), symbols.AccessorGet)

	bag := validate(t, p)
	require.Equal(t, []string{"CS0535"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C", "I.P.set"}, bag.Items()[0].Args)
}

func explicitProgram(t *testing.T, src string) (*testkit.Program, symbols.SymbolID, symbols.SymbolID) {
	p := testkit.New(t, src)
	i := p.Type(symbols.KindInterface, "I", 0, 0)
	p.Property(i, "P", 0, 0, p.Int(), symbols.AccessorGet)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.B.AddInterfaces(c, symbols.Named(i))
	return p, i, c
}

func explicitProperty(p *testkit.Program, c, i symbols.SymbolID, nth int, accessors ...symbols.AccessorKind) symbols.SymbolID {
	d := p.Decl("P", nth, 0)
	d.Sig.Return = p.Int()
	ref := symbols.Named(i)
	d.ExplicitInterface = &ref
	for _, k := range accessors {
		d.Accessors = append(d.Accessors, symbols.Accessor{Kind: k, HasBody: true})
	}
	return p.B.DeclareMember(symbols.KindProperty, c, d)
}

func TestInterfaces_ExplicitImplementation(t *testing.T) {
	p, i, c := explicitProgram(t, `interface I { int P { get; } } class C : I { int I.P { get => 0; } }`)
	explicitProperty(p, c, i, 1, symbols.AccessorGet)

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestInterfaces_ExplicitImplementationAddsAccessor(t *testing.T) {
	p, i, c := explicitProgram(t, `interface I { int P { get; } } class C : I { int I.P { get => 0; set {} } }`)
	explicitProperty(p, c, i, 1, symbols.AccessorGet, symbols.AccessorSet)

	bag := validate(t, p)
	require.Equal(t, []string{"CS0550"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C.I.P.set", "I.P"}, bag.Items()[0].Args)
}

func TestInterfaces_DuplicateExplicitImplementation(t *testing.T) {
	p, i, c := explicitProgram(t, `interface I { int P { get; } } class C : I { int I.P { get => 0; } int I.P { get => 1; } }`)
	explicitProperty(p, c, i, 1, symbols.AccessorGet)
	explicitProperty(p, c, i, 2, symbols.AccessorGet)

	bag := validate(t, p)
	require.Equal(t, []string{"CS8646"}, testkit.Codes(bag))
	assert.Equal(t, p.Span("P", 2), bag.Items()[0].Primary)
}

func TestInterfaces_ExplicitImplementationErrors(t *testing.T) {
	t.Run("not implemented by type", func(t *testing.T) {
		p := testkit.New(t, `interface I { int P { get; } } class C { int I.P { get => 0; } }`)
		i := p.Type(symbols.KindInterface, "I", 0, 0)
		p.Property(i, "P", 0, 0, p.Int(), symbols.AccessorGet)
		c := p.Type(symbols.KindClass, "C", 0, 0)
		explicitProperty(p, c, i, 1, symbols.AccessorGet)

		bag := validate(t, p)
		assert.Equal(t, []string{"CS0540"}, testkit.Codes(bag))
	})
	t.Run("no such member", func(t *testing.T) {
		p, i, c := explicitProgram(t, `interface I { int P { get; } } class C : I { int I.Q { get => 0; } }`)
		d := p.Decl("Q", 0, 0)
		d.Sig.Return = p.Int()
		ref := symbols.Named(i)
		d.ExplicitInterface = &ref
		d.Accessors = []symbols.Accessor{{Kind: symbols.AccessorGet, HasBody: true}}
		p.B.DeclareMember(symbols.KindProperty, c, d)

		bag := validate(t, p)
		// I.P stays unimplemented too
		assert.ElementsMatch(t, []string{"CS0539", "CS0535"}, testkit.Codes(bag))
	})
	t.Run("not an interface", func(t *testing.T) {
		p := testkit.New(t, `class K { } class C : K { void K.M() {} }`)
		k := p.Type(symbols.KindClass, "K", 0, 0)
		c := p.Type(symbols.KindClass, "C", 0, 0)
		p.B.SetBase(c, symbols.Named(k))
		d := p.Decl("M", 0, 0)
		d.Flags = symbols.FlagHasBody
		d.Sig.Return = p.Void()
		ref := symbols.Named(k)
		d.ExplicitInterface = &ref
		p.B.DeclareMember(symbols.KindMethod, c, d)

		bag := validate(t, p)
		assert.Equal(t, []string{"CS0538"}, testkit.Codes(bag))
	})
}

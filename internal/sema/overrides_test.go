package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

const abstractSealedSrc = `abstract class A { protected abstract void M(); } sealed class B : A { protected void M() {} }`

func abstractSealed(t *testing.T, derived symbols.Modifiers) *testkit.Program {
	p := testkit.New(t, abstractSealedSrc)
	a := p.Type(symbols.KindClass, "A", 0, symbols.ModAbstract)
	p.Method(a, "M", 0, symbols.ModProtected|symbols.ModAbstract, p.Void())
	b := p.Type(symbols.KindClass, "B", 0, symbols.ModSealed)
	p.B.SetBase(b, symbols.Named(a).At(p.Span("A", 1)))
	p.Method(b, "M", 1, symbols.ModProtected|derived, p.Void())
	return p
}

func TestOverrides_AbstractInSealedClass(t *testing.T) {
	bag := validate(t, abstractSealed(t, 0))
	assert.ElementsMatch(t, []string{"CS0114", "CS0534"}, testkit.Codes(bag))
	for _, d := range bag.Items() {
		if d.Code.ID() == "CS0534" {
			assert.Equal(t, []string{"B", "A.M()"}, d.Args)
		}
	}
}

func TestOverrides_AbstractInSealedClassWithOverride(t *testing.T) {
	bag := validate(t, abstractSealed(t, symbols.ModOverride))
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestOverrides_MethodOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		baseMod symbols.Modifiers
		mod     symbols.Modifiers
		ret     func(p *testkit.Program) symbols.TypeRef
		want    []string
	}{
		{"ok", symbols.ModPublic | symbols.ModVirtual, symbols.ModPublic | symbols.ModOverride, nil, nil},
		{"non virtual", symbols.ModPublic, symbols.ModPublic | symbols.ModOverride, nil, []string{"CS0506"}},
		{"sealed", symbols.ModPublic | symbols.ModOverride | symbols.ModSealed, symbols.ModPublic | symbols.ModOverride, nil, []string{"CS0239"}},
		{"access", symbols.ModPublic | symbols.ModVirtual, symbols.ModProtected | symbols.ModOverride, nil, []string{"CS0507"}},
		{"return", symbols.ModPublic | symbols.ModVirtual, symbols.ModPublic | symbols.ModOverride, (*testkit.Program).Int, []string{"CS0508"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `class Z { } class A : Z { void M() {} } class B : A { void M() {} }`)
			z := p.Type(symbols.KindClass, "Z", 0, 0)
			a := p.Type(symbols.KindClass, "A", 0, 0)
			if tt.baseMod.Has(symbols.ModSealed) {
				// a sealed override needs something to override itself
				p.Method(z, "M", 0, symbols.ModPublic|symbols.ModVirtual, p.Void())
			}
			p.B.SetBase(a, symbols.Named(z))
			p.Method(a, "M", 0, tt.baseMod, p.Void())
			b := p.Type(symbols.KindClass, "B", 0, 0)
			p.B.SetBase(b, symbols.Named(a))
			ret := p.Void()
			if tt.ret != nil {
				ret = tt.ret(p)
			}
			p.Method(b, "M", 1, tt.mod, ret)

			bag := validate(t, p)
			if tt.want == nil {
				assert.Zero(t, bag.Len(), testkit.Messages(bag))
				return
			}
			assert.Equal(t, tt.want, testkit.Codes(bag))
		})
	}
}

func TestOverrides_NothingToOverride(t *testing.T) {
	p := testkit.New(t, `class A { public int M; } class B : A { public override void M() {} public override void N() {} }`)
	a := p.Type(symbols.KindClass, "A", 0, 0)
	p.Field(a, "M", 0, symbols.ModPublic, p.Int())
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a))
	p.Method(b, "M", 1, symbols.ModPublic|symbols.ModOverride, p.Void())
	p.Method(b, "N", 0, symbols.ModPublic|symbols.ModOverride, p.Void())

	bag := validate(t, p)
	assert.Equal(t, []string{"CS0505", "CS0115"}, testkit.Codes(bag))
}

func TestOverrides_GenericBaseSubstitution(t *testing.T) {
	p := testkit.New(t, `class A<T> { public virtual void M(T t) {} } class B : A<int> { public override void M(int t) {} }`)
	a := p.Type(symbols.KindClass, "A", 0, 0, "T")
	p.Method(a, "M", 0, symbols.ModPublic|symbols.ModVirtual, p.Void(),
		testkit.Param(symbols.TypeParamRef(a, 0), symbols.RefByValue))
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a, p.Int()))
	p.Method(b, "M", 1, symbols.ModPublic|symbols.ModOverride, p.Void(),
		testkit.Param(p.Int(), symbols.RefByValue))

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestOverrides_PrivateBaseAccessorIsNotOverridable(t *testing.T) {
	p := testkit.New(t, `class A { public virtual int P { get; private set; } } class B : A { public override int P { get; set; } }`)
	a := p.Type(symbols.KindClass, "A", 0, 0)
	pa := p.Decl("P", 0, symbols.ModPublic|symbols.ModVirtual)
	pa.Sig.Return = p.Int()
	pa.Accessors = []symbols.Accessor{
		{Kind: symbols.AccessorGet},
		{Kind: symbols.AccessorSet, Modifiers: symbols.ModPrivate, Span: p.Span("set", 0)},
	}
	p.B.DeclareMember(symbols.KindProperty, a, pa)
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a))
	pb := p.Decl("P", 1, symbols.ModPublic|symbols.ModOverride)
	pb.Sig.Return = p.Int()
	pb.Accessors = []symbols.Accessor{
		{Kind: symbols.AccessorGet},
		{Kind: symbols.AccessorSet, Span: p.Span("set", 1)},
	}
	p.B.DeclareMember(symbols.KindProperty, b, pb)

	bag := validate(t, p)
	require.Equal(t, []string{"CS0546"}, testkit.Codes(bag))
	assert.Equal(t, p.Span("set", 1), bag.Items()[0].Primary)
	assert.Equal(t, []string{"B.P.set", "A.P"}, bag.Items()[0].Args)
}

func TestOverrides_BogusMetadataPropertySuppressesAccessorChecks(t *testing.T) {
	p := testkit.New(t, `class B : Lib.A { public override int P { get; set; } }`)
	lib := p.B.AddModule(symbols.ModuleReferenced, "Lib.dll", "Lib")
	ns := p.B.Namespace("Lib")
	a := p.B.DeclareType(lib, symbols.KindClass, ns, symbols.Decl{Name: "A", Modifiers: symbols.ModPublic})
	p.B.DeclareMember(symbols.KindProperty, a, symbols.Decl{
		Name:      "P",
		Modifiers: symbols.ModPublic | symbols.ModVirtual,
		Sig:       symbols.Signature{Return: p.Int()},
		Accessors: []symbols.Accessor{
			{Kind: symbols.AccessorGet, Modifiers: symbols.ModVirtual},
			{Kind: symbols.AccessorSet},
		},
	})
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a))
	p.Property(b, "P", 0, symbols.ModPublic|symbols.ModOverride, p.Int(), symbols.AccessorGet, symbols.AccessorSet)

	bag := validate(t, p)
	assert.Equal(t, []string{"CS0569"}, testkit.Codes(bag))
}

func TestAbstracts_PropertyAccessorLeftAbstract(t *testing.T) {
	p := testkit.New(t, `abstract class A { public abstract int P { get; set; } } abstract class B : A { public override int P { get => 0; } } class C : B { }`)
	a := p.Type(symbols.KindClass, "A", 0, symbols.ModAbstract)
	p.Property(a, "P", 0, symbols.ModPublic|symbols.ModAbstract, p.Int(), symbols.AccessorGet, symbols.AccessorSet)
	b := p.Type(symbols.KindClass, "B", 0, symbols.ModAbstract)
	p.B.SetBase(b, symbols.Named(a))
	pb := p.Decl("P", 1, symbols.ModPublic|symbols.ModOverride)
	pb.Sig.Return = p.Int()
	pb.Accessors = []symbols.Accessor{{Kind: symbols.AccessorGet, HasBody: true}}
	p.B.DeclareMember(symbols.KindProperty, b, pb)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.B.SetBase(c, symbols.Named(b))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0534"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C", "A.P.set"}, bag.Items()[0].Args)
	assert.Equal(t, p.Span("C", 0), bag.Items()[0].Primary)
}

package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

func tpBound(owner symbols.SymbolID, ordinals ...int) symbols.ConstraintSet {
	var cs symbols.ConstraintSet
	for _, o := range ordinals {
		cs.TypeParams = append(cs.TypeParams, symbols.TypeParamRef(owner, o))
	}
	return cs
}

func TestConstraints_CycleReportedPerParameter(t *testing.T) {
	p := testkit.New(t, `class C<T, U, V> where T : U where U : V where V : T { }`)
	c := p.Type(symbols.KindClass, "C", 0, 0, "T", "U", "V")
	p.B.SetConstraints(c, 0, tpBound(c, 1))
	p.B.SetConstraints(c, 1, tpBound(c, 2))
	p.B.SetConstraints(c, 2, tpBound(c, 0))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0454", "CS0454", "CS0454"}, testkit.Codes(bag))
	var pairs [][]string
	for _, d := range bag.Items() {
		pairs = append(pairs, d.Args)
	}
	assert.Equal(t, [][]string{{"T", "V"}, {"U", "T"}, {"V", "U"}}, pairs)
}

func TestConstraints_SelfLoop(t *testing.T) {
	p := testkit.New(t, `class C<T, U> where T : T where U : T { }`)
	c := p.Type(symbols.KindClass, "C", 0, 0, "T", "U")
	p.B.SetConstraints(c, 0, tpBound(c, 0))
	p.B.SetConstraints(c, 1, tpBound(c, 0))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0454"}, testkit.Codes(bag))
	assert.Equal(t, []string{"T", "T"}, bag.Items()[0].Args)
}

func TestConstraints_ConstraintGraph(t *testing.T) {
	d := &symbols.Symbol{ID: 7, TypeParams: make([]symbols.TypeParam, 4)}
	d.TypeParams[0].Constraints = tpBound(7, 1)
	d.TypeParams[1].Constraints = tpBound(7, 0)
	d.TypeParams[2].Constraints = tpBound(7, 0, 3)
	g := newConstraintGraph(d)

	assert.Equal(t, []int{1, 0, -1, -1}, g.cycles())
	assert.Equal(t, [][]int{nil, nil, {0, 3}, nil}, g.acyclicEdges())
}

func TestConstraints_UnrelatedInheritedClassBounds(t *testing.T) {
	p := testkit.New(t, `class A { } class B { } class C<T, U, V> where T : A where U : B where V : T, U { }`)
	a := p.Type(symbols.KindClass, "A", 0, 0)
	b := p.Type(symbols.KindClass, "B", 0, 0)
	c := p.Type(symbols.KindClass, "C", 0, 0, "T", "U", "V")
	ra, rb := symbols.Named(a), symbols.Named(b)
	p.B.SetConstraints(c, 0, symbols.ConstraintSet{BaseType: &ra})
	p.B.SetConstraints(c, 1, symbols.ConstraintSet{BaseType: &rb})
	p.B.SetConstraints(c, 2, tpBound(c, 0, 1))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0455"}, testkit.Codes(bag))
	assert.Equal(t, []string{"V", "A", "B"}, bag.Items()[0].Args)
}

func TestConstraints_StructWithInheritedReferenceBound(t *testing.T) {
	p := testkit.New(t, `class C<T, U> where T : class where U : struct, T { }`)
	c := p.Type(symbols.KindClass, "C", 0, 0, "T", "U")
	p.B.SetConstraints(c, 0, symbols.ConstraintSet{Class: symbols.ConstraintClass})
	cs := tpBound(c, 0)
	cs.Class = symbols.ConstraintStruct
	p.B.SetConstraints(c, 1, cs)

	bag := validate(t, p)
	require.Equal(t, []string{"CS0455"}, testkit.Codes(bag))
	assert.Equal(t, []string{"U", "class", "struct"}, bag.Items()[0].Args)
}

func TestConstraints_DeclarationShapes(t *testing.T) {
	tests := []struct {
		name string
		cs   func(p *testkit.Program) symbols.ConstraintSet
		want string
	}{
		{"class and base", func(p *testkit.Program) symbols.ConstraintSet {
			r := p.Special(symbols.SpecialString)
			return symbols.ConstraintSet{Class: symbols.ConstraintClass, BaseType: &r}
		}, "CS0450"},
		{"new and struct", func(p *testkit.Program) symbols.ConstraintSet {
			return symbols.ConstraintSet{Class: symbols.ConstraintStruct, New: true}
		}, "CS0451"},
		{"special base", func(p *testkit.Program) symbols.ConstraintSet {
			r := p.Special(symbols.SpecialValueType)
			return symbols.ConstraintSet{BaseType: &r}
		}, "CS0702"},
		{"array base", func(p *testkit.Program) symbols.ConstraintSet {
			r := p.Special(symbols.SpecialArray)
			return symbols.ConstraintSet{BaseType: &r}
		}, "CS0702"},
		{"sealed base", func(p *testkit.Program) symbols.ConstraintSet {
			r := p.Str()
			return symbols.ConstraintSet{BaseType: &r}
		}, "CS0701"},
		{"class as interface", func(p *testkit.Program) symbols.ConstraintSet {
			return symbols.ConstraintSet{Interfaces: []symbols.TypeRef{p.Special(symbols.SpecialObject)}}
		}, "CS0706"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `public class C<T> { }`)
			c := p.Type(symbols.KindClass, "C", 0, symbols.ModPublic, "T")
			p.B.SetConstraints(c, 0, tt.cs(p))

			bag := validate(t, p)
			assert.Contains(t, testkit.Codes(bag), tt.want, testkit.Messages(bag))
		})
	}
}

func TestConstraints_EnumAndDelegateBounds(t *testing.T) {
	p := testkit.New(t, `class A<T> where T : System.Enum { } class B<T> where T : struct, System.Enum { } class D<T> where T : struct, System.Delegate { }`)
	enum, del := p.Special(symbols.SpecialEnum), p.Special(symbols.SpecialDelegate)
	a := p.Type(symbols.KindClass, "A", 0, 0, "T")
	p.B.SetConstraints(a, 0, symbols.ConstraintSet{BaseType: &enum})
	b := p.Type(symbols.KindClass, "B", 0, 0, "T")
	p.B.SetConstraints(b, 0, symbols.ConstraintSet{Class: symbols.ConstraintStruct, BaseType: &enum})
	d := p.Type(symbols.KindClass, "D", 0, 0, "T")
	p.B.SetConstraints(d, 0, symbols.ConstraintSet{Class: symbols.ConstraintStruct, BaseType: &del})

	bag := validate(t, p)
	require.Equal(t, []string{"CS0455"}, testkit.Codes(bag), testkit.Messages(bag))
	assert.Equal(t, []string{"T", "System.Delegate", "System.ValueType"}, bag.Items()[0].Args)
	assert.Equal(t, p.Span("D", 0), bag.Items()[0].Primary)
}

func TestConstraints_LessAccessibleBound(t *testing.T) {
	p := testkit.New(t, `class Hidden { } public class C<T> where T : Hidden { }`)
	h := p.Type(symbols.KindClass, "Hidden", 0, 0)
	c := p.Type(symbols.KindClass, "C", 0, symbols.ModPublic, "T")
	r := symbols.Named(h).At(p.Span("Hidden", 1))
	p.B.SetConstraints(c, 0, symbols.ConstraintSet{BaseType: &r})

	bag := validate(t, p)
	require.Equal(t, []string{"CS0703"}, testkit.Codes(bag))
	assert.Equal(t, p.Span("Hidden", 1), bag.Items()[0].Primary)
}

func TestConstraints_OverrideMustNotRestate(t *testing.T) {
	p := testkit.New(t, `class A { public virtual void M<T>() where T : A {} } class B : A { public override void M<T>() where T : A {} }`)
	a := p.Type(symbols.KindClass, "A", 0, 0)
	ra := symbols.Named(a)
	ma := p.Decl("M", 0, symbols.ModPublic|symbols.ModVirtual)
	ma.Flags = symbols.FlagHasBody
	ma.Sig.Return = p.Void()
	ma.TypeParams = []symbols.TypeParam{{Name: "T", Constraints: symbols.ConstraintSet{BaseType: &ra}}}
	p.B.DeclareMember(symbols.KindMethod, a, ma)
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a))
	mb := p.Decl("M", 1, symbols.ModPublic|symbols.ModOverride)
	mb.Flags = symbols.FlagHasBody
	mb.Sig.Return = p.Void()
	mb.TypeParams = []symbols.TypeParam{{Name: "T", Constraints: symbols.ConstraintSet{BaseType: &ra}}}
	p.B.DeclareMember(symbols.KindMethod, b, mb)

	bag := validate(t, p)
	assert.Equal(t, []string{"CS0460"}, testkit.Codes(bag))
}

func TestConstraints_UseSites(t *testing.T) {
	tests := []struct {
		name string
		cs   func(p *testkit.Program, iface symbols.SymbolID) symbols.ConstraintSet
		arg  func(p *testkit.Program, iface symbols.SymbolID) symbols.TypeRef
		want []string
	}{
		{"class constraint on int",
			func(*testkit.Program, symbols.SymbolID) symbols.ConstraintSet {
				return symbols.ConstraintSet{Class: symbols.ConstraintClass}
			},
			func(p *testkit.Program, _ symbols.SymbolID) symbols.TypeRef { return p.Int() },
			[]string{"CS0452"}},
		{"struct constraint on string",
			func(*testkit.Program, symbols.SymbolID) symbols.ConstraintSet {
				return symbols.ConstraintSet{Class: symbols.ConstraintStruct}
			},
			func(p *testkit.Program, _ symbols.SymbolID) symbols.TypeRef { return p.Str() },
			[]string{"CS0453"}},
		{"interface bound on value type",
			func(_ *testkit.Program, iface symbols.SymbolID) symbols.ConstraintSet {
				return symbols.ConstraintSet{Interfaces: []symbols.TypeRef{symbols.Named(iface)}}
			},
			func(p *testkit.Program, _ symbols.SymbolID) symbols.TypeRef { return p.Int() },
			[]string{"CS0315"}},
		{"interface bound on reference type",
			func(_ *testkit.Program, iface symbols.SymbolID) symbols.ConstraintSet {
				return symbols.ConstraintSet{Interfaces: []symbols.TypeRef{symbols.Named(iface)}}
			},
			func(p *testkit.Program, _ symbols.SymbolID) symbols.TypeRef { return p.Str() },
			[]string{"CS0311"}},
		{"satisfied",
			func(_ *testkit.Program, iface symbols.SymbolID) symbols.ConstraintSet {
				return symbols.ConstraintSet{Interfaces: []symbols.TypeRef{symbols.Named(iface)}}
			},
			func(_ *testkit.Program, iface symbols.SymbolID) symbols.TypeRef { return symbols.Named(iface) },
			nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, `interface I { } class G<T> { } class C { G<X> f; }`)
			i := p.Type(symbols.KindInterface, "I", 0, 0)
			g := p.Type(symbols.KindClass, "G", 0, 0, "T")
			p.B.SetConstraints(g, 0, tt.cs(p, i))
			c := p.Type(symbols.KindClass, "C", 0, 0)
			arg := tt.arg(p, i).At(p.Span("X", 0))
			p.Field(c, "f", 0, 0, symbols.Named(g, arg))

			bag := validate(t, p)
			if tt.want == nil {
				assert.Zero(t, bag.Len(), testkit.Messages(bag))
				return
			}
			require.Equal(t, tt.want, testkit.Codes(bag))
			assert.Equal(t, p.Span("X", 0), bag.Items()[0].Primary)
		})
	}
}

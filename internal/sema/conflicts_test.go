package sema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

func validate(t *testing.T, p *testkit.Program) *diag.Bag {
	t.Helper()
	comp := p.Build()
	require.NoError(t, testkit.CheckSymbolSpans(comp))
	bag, err := Validate(context.Background(), comp, 0)
	require.NoError(t, err)
	require.NoError(t, testkit.CheckDiagnosticOrder(bag))
	return bag
}

func TestConflicts_RefOutOverloadReportedOnce(t *testing.T) {
	p := testkit.New(t, `class C { void M(ref int x) {} void M(out int x) {} }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.Method(c, "M", 0, 0, p.Void(), testkit.Param(p.Int(), symbols.RefRef))
	second := p.Method(c, "M", 1, 0, p.Void(), testkit.Param(p.Int(), symbols.RefOut))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0663"}, testkit.Codes(bag))
	d := bag.Items()[0]
	assert.Equal(t, []string{"C", "method", "ref", "out"}, d.Args)
	assert.Equal(t, p.B.Compilation().MustSym(second).Span, d.Primary)
}

func TestConflicts_SameSignature(t *testing.T) {
	p := testkit.New(t, `class C { void M(int x) {} void M(int y) {} void M(string s) {} }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.Method(c, "M", 0, 0, p.Void(), testkit.Param(p.Int(), symbols.RefByValue))
	p.Method(c, "M", 1, 0, p.Void(), testkit.Param(p.Int(), symbols.RefByValue))
	p.Method(c, "M", 2, 0, p.Void(), testkit.Param(p.Str(), symbols.RefByValue))

	bag := validate(t, p)
	require.Equal(t, []string{"CS0111"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C", "M"}, bag.Items()[0].Args)
	require.Len(t, bag.Items()[0].Notes, 1)
	assert.Equal(t, p.Span("M", 0), bag.Items()[0].Notes[0].Span)
}

func TestConflicts_IndexerNameCollidesWithField(t *testing.T) {
	p := testkit.New(t, `class C { public int this[int x] { set {} } int P; }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	idx := p.Decl("this", 0, symbols.ModPublic)
	idx.IndexerName = "P"
	idx.Sig = symbols.Signature{
		Params: []symbols.Param{{Name: "x", Type: p.Int()}},
		Return: p.Int(),
	}
	idx.Accessors = []symbols.Accessor{{Kind: symbols.AccessorSet, HasBody: true, Span: p.Span("set", 0)}}
	p.B.DeclareMember(symbols.KindIndexer, c, idx)
	p.Field(c, "P", 0, 0, p.Int())

	bag := validate(t, p)
	require.Equal(t, []string{"CS0102"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C", "P"}, bag.Items()[0].Args)
}

func TestConflicts_AccessorReservesMethodName(t *testing.T) {
	p := testkit.New(t, `class C { int P { get; } int get_P() => 0; }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.Property(c, "P", 0, 0, p.Int(), symbols.AccessorGet)
	p.Method(c, "get_P", 0, 0, p.Int())

	bag := validate(t, p)
	require.Equal(t, []string{"CS0082"}, testkit.Codes(bag))
	assert.Equal(t, []string{"C", "get_P"}, bag.Items()[0].Args)
}

func TestConflicts_MemberNamedAfterType(t *testing.T) {
	p := testkit.New(t, `class C { int C; }`)
	c := p.Type(symbols.KindClass, "C", 0, 0)
	p.Field(c, "C", 1, 0, p.Int())

	bag := validate(t, p)
	require.Equal(t, []string{"CS0542"}, testkit.Codes(bag))
}

func TestConflicts_EnumMemberMayShareTypeName(t *testing.T) {
	p := testkit.New(t, `enum E { E }`)
	e := p.Type(symbols.KindEnum, "E", 0, 0)
	p.Field(e, "E", 1, symbols.ModPublic|symbols.ModConst, symbols.Named(e))

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestConflicts_PartialMethodPartsDoNotCollide(t *testing.T) {
	p := testkit.New(t, `partial class C { partial void M(); partial void M() {} }`)
	c := p.Type(symbols.KindClass, "C", 0, symbols.ModPartial)
	def := p.Decl("M", 0, symbols.ModPartial)
	def.Sig.Return = p.Void()
	p.B.DeclareMember(symbols.KindMethod, c, def)
	p.Method(c, "M", 1, symbols.ModPartial, p.Void())

	bag := validate(t, p)
	assert.Zero(t, bag.Len(), testkit.Messages(bag))
}

func TestHiding(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		baseMod symbols.Modifiers
		mod     symbols.Modifiers
		hide    bool
		want    []string
	}{
		{"plain method", `class A { public void M() {} } class B : A { public void M() {} }`,
			symbols.ModPublic, symbols.ModPublic, true, []string{"CS0108"}},
		{"virtual method", `class A { public virtual void M() {} } class B : A { public void M() {} }`,
			symbols.ModPublic | symbols.ModVirtual, symbols.ModPublic, true, []string{"CS0114"}},
		{"new keyword", `class A { public void M() {} } class B : A { public new void M() {} }`,
			symbols.ModPublic, symbols.ModPublic | symbols.ModNew, true, nil},
		{"new not required", `class A { public void N() {} } class B : A { public new void M() {} }`,
			symbols.ModPublic, symbols.ModPublic | symbols.ModNew, false, []string{"CS0109"}},
		{"private base invisible", `class A { private void M() {} } class B : A { public void M() {} }`,
			symbols.ModPrivate, symbols.ModPublic, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testkit.New(t, tt.src)
			a := p.Type(symbols.KindClass, "A", 0, 0)
			baseName := "M"
			if !tt.hide {
				baseName = "N"
			}
			p.Method(a, baseName, 0, tt.baseMod, p.Void())
			b := p.Type(symbols.KindClass, "B", 0, 0)
			p.B.SetBase(b, symbols.Named(a).At(p.Span("A", 1)))
			nth := 1
			if !tt.hide {
				nth = 0
			}
			p.Method(b, "M", nth, tt.mod, p.Void())

			bag := validate(t, p)
			if tt.want == nil {
				assert.Zero(t, bag.Len(), testkit.Messages(bag))
				return
			}
			assert.Equal(t, tt.want, testkit.Codes(bag))
		})
	}
}

func TestHiding_PropertyHidesMethod(t *testing.T) {
	p := testkit.New(t, `class A { public void M() {} } class B : A { public int M { get; } }`)
	a := p.Type(symbols.KindClass, "A", 0, 0)
	p.Method(a, "M", 0, symbols.ModPublic, p.Void())
	b := p.Type(symbols.KindClass, "B", 0, 0)
	p.B.SetBase(b, symbols.Named(a))
	p.Property(b, "M", 1, symbols.ModPublic, p.Int(), symbols.AccessorGet)

	bag := validate(t, p)
	require.Equal(t, []string{"CS0108"}, testkit.Codes(bag))
	assert.Equal(t, []string{"B.M", "A.M()"}, bag.Items()[0].Args)
	require.Len(t, bag.Items()[0].Notes, 1)
	assert.Equal(t, "hidden member is declared here", bag.Items()[0].Notes[0].Msg)
}

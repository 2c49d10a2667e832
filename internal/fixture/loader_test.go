package fixture

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/exports"
	"github.com/dotnet/roslyn-sub221/internal/sema"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

func load(t *testing.T, names ...string) *symbols.Compilation {
	t.Helper()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join("testdata", n)
	}
	comp, err := LoadFiles(paths, Options{})
	require.NoError(t, err)
	require.NoError(t, testkit.CheckSymbolSpans(comp))
	return comp
}

func member(t *testing.T, comp *symbols.Compilation, owner symbols.SymbolID, name string) *symbols.Symbol {
	t.Helper()
	for _, id := range comp.MustSym(owner).Members {
		if s := comp.MustSym(id); s.Name == name {
			return s
		}
	}
	t.Fatalf("%s has no member %s", comp.Display(owner), name)
	return nil
}

func TestLoad_Hiding(t *testing.T) {
	comp := load(t, "hiding.yaml")
	assert.Equal(t, "App", comp.Assembly)
	assert.Equal(t, "App.dll", comp.Primary().Name)

	bag, err := sema.Validate(context.Background(), comp, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS0114"}, testkit.Codes(bag), testkit.Messages(bag))

	d := bag.Items()[0]
	// B.M is the second M of the source
	assert.Equal(t, "M", comp.Files.Text(d.Primary))
	text := string(comp.Files.Get(d.Primary.File).Content)
	assert.Equal(t, 89, int(d.Primary.Start), text)
}

func TestLoad_GenericShapes(t *testing.T) {
	comp := load(t, "generic.yaml")
	types := comp.SourceTypes()
	require.Len(t, types, 3)

	box := types[1]
	require.Equal(t, "Box", comp.MustSym(box).Name)
	assert.Equal(t, "Geo.Box`1", comp.MetadataName(box))

	tp := comp.MustSym(box).TypeParams[0]
	assert.Equal(t, symbols.ConstraintClass, tp.Constraints.Class)
	require.Len(t, tp.Constraints.Interfaces, 1)
	assert.Equal(t, types[0], tp.Constraints.Interfaces[0].Symbol)
	assert.Equal(t, "where", comp.Files.Text(tp.Constraints.Span))

	put := member(t, comp, box, "Put")
	assert.True(t, put.HasBody())
	assert.Equal(t, symbols.TypeParamRef(box, 0), put.Sig.Return)
	require.Len(t, put.Sig.Params, 2)
	assert.True(t, put.Sig.Params[1].IsParams)
	assert.Equal(t, symbols.ArrayOf(symbols.TypeParamRef(put.ID, 0)), put.Sig.Params[1].Type)
	u := put.TypeParams[0].Constraints
	require.Len(t, u.TypeParams, 1)
	assert.Equal(t, symbols.TypeParamRef(box, 0), u.TypeParams[0])

	count := member(t, comp, box, "Count")
	assert.False(t, count.HasBody())
	require.Len(t, count.Accessors, 1)
	assert.True(t, count.Accessors[0].HasBody)
	assert.Equal(t, "get", comp.Files.Text(count.Accessors[0].Span))

	area := member(t, comp, types[0], "Area")
	assert.False(t, area.HasBody(), "interface members are bodiless by default")

	slot := types[2]
	assert.Equal(t, box, comp.MustSym(slot).Container)
	assert.Equal(t, symbols.TypeParamRef(box, 0), member(t, comp, slot, "Value").Sig.Return)
}

func TestLoad_ForwardConflictAcrossModules(t *testing.T) {
	comp := load(t, "app.yaml", "extra.yaml")
	require.Len(t, comp.CompiledModules(), 2)
	assert.Equal(t, symbols.ModuleAdded, comp.CompiledModules()[1].Kind)

	sink := diag.NewSink()
	res, err := exports.Resolve(context.Background(), comp, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reported)

	bag := sink.Drain(0)
	require.Equal(t, []string{"CS8007"}, testkit.Codes(bag))
	assert.Equal(t, []string{"N.X", "B", "N.X", "A"}, bag.Items()[0].Args)
	assert.Equal(t, "Extra.netmodule", bag.Items()[0].Location)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown key", "assembly: App\ncolour: red\n", ErrInvalid},
		{"empty", "", ErrInvalid},
		{"bad kind", "assembly: App\nsource: class A {}\ntypes: [{kind: widget, name: A}]\n", ErrInvalid},
		{"no source", "assembly: App\ntypes: [{kind: class, name: A}]\n", ErrInvalid},
		{"missing anchor", "assembly: App\nsource: class A {}\ntypes: [{kind: class, name: B}]\n", ErrInvalid},
		{"duplicate type", "assembly: App\nsource: class A {} class A {}\ntypes: [{kind: class, name: A}, {kind: class, name: A}]\n", ErrInvalid},
		{"unresolved base", "assembly: App\nsource: class A {}\ntypes: [{kind: class, name: A, base: Missing}]\n", ErrUnresolved},
		{"two class constraints", "assembly: App\nsource: class A<T> {} class B {} class C {}\ntypes:\n" +
			"  - {kind: class, name: B}\n  - {kind: class, name: C}\n" +
			"  - {kind: class, name: A, type_params: [{name: T, constraints: [B, C]}]}\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.doc))
			if err == nil {
				_, err = Build([]Input{{Path: "inline.yaml", File: f}}, Options{})
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_AssemblyOverrideAndCaseFolding(t *testing.T) {
	f, err := Parse([]byte("assembly: App\nforwards: [{name: N.x, target: A}, {name: N.X, target: A}]\n"))
	require.NoError(t, err)
	comp, err := Build([]Input{{Path: "a.yaml", File: f}}, Options{Assembly: "Renamed", CaseInsensitiveNames: true})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", comp.Assembly)
	assert.Equal(t, "Renamed.dll", comp.Primary().Name)

	sink := diag.NewSink()
	_, err = exports.Resolve(context.Background(), comp, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS0739"}, testkit.Codes(sink.Drain(0)))
}

func TestBuild_ConstraintDiagnosticsUseDeclarationSpans(t *testing.T) {
	doc := `assembly: App
source: "class G<T, U> where T : U where U : T { } class H<V> where V : class { } class K : H<int> { }"
types:
  - kind: class
    name: G
    type_params: [{name: T, constraints: [U]}, {name: U, constraints: [T]}]
  - kind: class
    name: H
    type_params: [{name: V, constraints: [class]}]
  - {kind: class, name: K, base: "H<int>"}
`
	f, err := Parse([]byte(doc))
	require.NoError(t, err)
	comp, err := Build([]Input{{Path: "spans.yaml", File: f}}, Options{})
	require.NoError(t, err)

	bag, err := sema.Validate(context.Background(), comp, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"CS0454", "CS0454", "CS0452"}, testkit.Codes(bag), testkit.Messages(bag))

	var texts []string
	for _, d := range bag.Items() {
		require.True(t, d.Primary.IsValid(), "%s has no position", d.Code.ID())
		texts = append(texts, comp.Files.Text(d.Primary))
	}
	assert.Equal(t, []string{"T", "U", "K"}, texts)
	assert.Equal(t, []string{"T", "U"}, bag.Items()[0].Args)
	assert.Equal(t, []string{"U", "T"}, bag.Items()[1].Args)
	assert.NotEqual(t, bag.Items()[0].Primary, bag.Items()[1].Primary)
}

package symstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/exports"
	"github.com/dotnet/roslyn-sub221/internal/sema"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/testkit"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const sampleSrc = `namespace N {
  class A<T> where T : class { public virtual void M(T t) {} class In {} }
  class B : A<string> { public void M(string t) {} public int P { get; } }
}`

func sample(t *testing.T) *symbols.Compilation {
	p := testkit.New(t, sampleSrc)
	ns := p.B.Namespace("N")

	ad := p.Decl("A", 0, 0)
	ad.TypeParams = []symbols.TypeParam{{
		Name:        "T",
		Span:        p.Span("T", 0),
		Constraints: symbols.ConstraintSet{Class: symbols.ConstraintClass, Span: p.Span("where", 0)},
	}}
	a := p.B.DeclareType(p.Module, symbols.KindClass, ns, ad)
	p.Method(a, "M", 0, symbols.ModPublic|symbols.ModVirtual, p.Void(),
		symbols.Param{Name: "t", Type: symbols.TypeParamRef(a, 0)})
	p.B.DeclareType(p.Module, symbols.KindClass, a, p.Decl("In", 0, 0))

	b := p.B.DeclareType(p.Module, symbols.KindClass, ns, p.Decl("B", 0, 0))
	p.B.SetBase(b, symbols.Named(a, p.Str()).At(p.Span("A", 1)))
	p.Method(b, "M", 1, symbols.ModPublic, p.Void(), symbols.Param{Name: "t", Type: p.Str()})
	p.Property(b, "P", 0, symbols.ModPublic, p.Int(), symbols.AccessorGet)

	lib := p.B.AddModule(symbols.ModuleReferenced, "Lib.dll", "Lib")
	p.B.DeclareType(lib, symbols.KindInterface, ns, symbols.Decl{Name: "ILib", Span: source.NoSpan, Modifiers: symbols.ModPublic})

	extra := p.B.AddModule(symbols.ModuleAdded, "Extra.netmodule", "")
	p.B.Forward(p.Module, symbols.ExportRecord{Name: "N.X", Target: "Lib"})
	p.B.Forward(extra, symbols.ExportRecord{Name: "N.X", Target: "Other", IgnoreArity: true})
	p.B.AddReference(&symbols.AssemblyRef{
		Identity: "Lib",
		Forwards: map[string]string{"N.Y": "Other"},
		Defines:  map[string]struct{}{"N.X": {}, "N.ILib": {}},
	})
	return p.Build()
}

func validate(t *testing.T, comp *symbols.Compilation) string {
	t.Helper()
	sink := diag.NewSink()
	_, err := sema.Check(context.Background(), comp, sema.Options{Reporter: sink})
	require.NoError(t, err)
	_, err = exports.Resolve(context.Background(), comp, sink)
	require.NoError(t, err)
	return diag.FormatGoldenDiagnostics(sink.Drain(0).Items(), comp.Files, false)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	orig := sample(t)
	require.NoError(t, s.Save(ctx, orig))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, testkit.CheckSymbolSpans(got))

	assert.Equal(t, orig.Assembly, got.Assembly)
	require.Equal(t, orig.Symbols.Len(), got.Symbols.Len())
	for i := 1; i <= orig.Symbols.Len(); i++ {
		id := symbols.SymbolID(i)
		o, g := orig.MustSym(id), got.MustSym(id)
		assert.Equal(t, o.Kind, g.Kind, "symbol %d", i)
		assert.Equal(t, o.Span, g.Span, "symbol %d", i)
		assert.Equal(t, o.Modifiers, g.Modifiers, "symbol %d", i)
		assert.Equal(t, o.Flags, g.Flags, "symbol %d", i)
		assert.Equal(t, o.Container, g.Container, "symbol %d", i)
		assert.Equal(t, o.Module, g.Module, "symbol %d", i)
		if o.Kind.IsMember() {
			assert.Equal(t, orig.MemberDisplay(id), got.MemberDisplay(id))
		} else if o.Kind != symbols.KindNamespace {
			assert.Equal(t, orig.Display(id), got.Display(id))
		}
	}

	require.Len(t, got.Modules, len(orig.Modules))
	for i, m := range orig.Modules {
		assert.Equal(t, m.Name, got.Modules[i].Name)
		assert.Equal(t, m.Kind, got.Modules[i].Kind)
		assert.Equal(t, m.Exports, got.Modules[i].Exports)
	}
	require.Len(t, got.References, 1)
	assert.Equal(t, orig.References[0], got.References[0])

	got.Files.SetBaseDir("/")
	want := validate(t, orig)
	assert.Contains(t, want, "CS8007")
	assert.Equal(t, want, validate(t, got))
}

func TestSave_Replaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Save(ctx, sample(t)))

	p := testkit.New(t, "class Z {}")
	p.Type(symbols.KindClass, "Z", 0, 0)
	small := p.Build()
	require.NoError(t, s.Save(ctx, small))

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Assembly: "App", Files: 1, Modules: 2, Symbols: small.Symbols.Len(), Forwards: 0}, sum)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, small.Symbols.Len(), got.Symbols.Len())
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		_, err := newTestStore(t).Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("schema", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Save(ctx, sample(t)))
		_, err := s.db.Exec(`UPDATE meta SET value = '0' WHERE key = 'schema'`)
		require.NoError(t, err)
		_, err = s.Load(ctx)
		assert.ErrorIs(t, err, ErrSchema)
	})
	t.Run("id drift", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.Save(ctx, sample(t)))
		_, err := s.db.Exec(`DELETE FROM symbols WHERE id = (SELECT MIN(id) FROM symbols WHERE kind = 'method')`)
		require.NoError(t, err)
		_, err = s.Load(ctx)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestSummary_EmptyStore(t *testing.T) {
	sum, err := newTestStore(t).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

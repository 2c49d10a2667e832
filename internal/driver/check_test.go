package driver_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/driver"
	"github.com/dotnet/roslyn-sub221/internal/project"
	"github.com/dotnet/roslyn-sub221/internal/sema"
)

var hiding = filepath.Join("testdata", "hiding.yaml")

type recorder struct {
	mu     sync.Mutex
	events []driver.Event
}

func (r *recorder) OnEvent(ev driver.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count(stage driver.Stage, status driver.Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Stage == stage && ev.Status == status {
			n++
		}
	}
	return n
}

func codes(b *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range b.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckFixtures_ReportsHiding(t *testing.T) {
	res, err := driver.CheckFixtures(context.Background(), []string{hiding}, driver.Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	got := codes(res.Bag)
	if len(got) != 1 || got[0] != diag.WrnNewOrOverrideExpected {
		t.Fatalf("unexpected diagnostics: %v", got)
	}
	if res.Types != 2 {
		t.Fatalf("types = %d, want 2", res.Types)
	}
	if res.CacheHit {
		t.Fatal("no cache configured, hit reported")
	}
	if res.Timings != nil {
		t.Fatal("timings must be nil unless enabled")
	}
}

func TestCheckFixtures_DiskCache(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	opts := driver.Options{Cache: cache}

	first, err := driver.CheckFixtures(ctx, []string{hiding}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Fatal("cold cache reported a hit")
	}

	rec := &recorder{}
	opts.Progress = rec
	second, err := driver.CheckFixtures(ctx, []string{hiding}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Fatal("expected a hit on unchanged inputs")
	}
	if second.Key != first.Key {
		t.Fatalf("key changed: %s vs %s", second.Key.Short(), first.Key.Short())
	}
	if got, want := len(codes(second.Bag)), len(codes(first.Bag)); got != want {
		t.Fatalf("cached run has %d diagnostics, want %d", got, want)
	}
	if second.Bag.Items()[0].Primary != first.Bag.Items()[0].Primary {
		t.Fatal("cached span differs")
	}
	if rec.count(driver.StageValidate, driver.StatusCached) == 0 {
		t.Fatal("expected cached validate events")
	}
	if rec.count(driver.StageValidate, driver.StatusWorking) != 0 {
		t.Fatal("passes must not run on a hit")
	}

	// политика применяется после кэша
	opts.Policy = diag.Policy{NoWarn: map[diag.Code]struct{}{diag.WrnNewOrOverrideExpected: {}}}
	third, err := driver.CheckFixtures(ctx, []string{hiding}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheHit || third.Bag.Len() != 0 {
		t.Fatalf("hit=%t len=%d, want hit with no diagnostics", third.CacheHit, third.Bag.Len())
	}

	opts.Passes = sema.PassModifiers
	fourth, err := driver.CheckFixtures(ctx, []string{hiding}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheHit || fourth.Key == first.Key {
		t.Fatal("pass selection must change the key")
	}
}

func TestCheckFixtures_Events(t *testing.T) {
	rec := &recorder{}
	_, err := driver.CheckFixtures(context.Background(), []string{hiding}, driver.Options{Progress: rec, EnableTimings: true})
	if err != nil {
		t.Fatal(err)
	}
	if n := rec.count(driver.StageLoad, driver.StatusDone); n != 1 {
		t.Fatalf("load done events = %d, want 1", n)
	}
	passes := len(sema.AllPasses.Names())
	if n := rec.count(driver.StageValidate, driver.StatusDone); n != passes {
		t.Fatalf("validate done events = %d, want %d", n, passes)
	}
	if n := rec.count(driver.StageExports, driver.StatusDone); n != 1 {
		t.Fatalf("exports done events = %d, want 1", n)
	}
	if n := rec.count(driver.StageReport, driver.StatusDone); n != 1 {
		t.Fatalf("report done events = %d, want 1", n)
	}
}

func TestCheckFixtures_MaxDiagnosticsAndTimings(t *testing.T) {
	res, err := driver.CheckFixtures(context.Background(), []string{hiding}, driver.Options{
		MaxDiagnostics: 1,
		EnableTimings:  true,
		Policy:         diag.Policy{WarningsAsErrors: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 1 || !res.Bag.HasErrors() {
		t.Fatalf("len=%d errors=%t", res.Bag.Len(), res.Bag.HasErrors())
	}
	if res.Timings == nil || len(res.Timings.Phases) == 0 {
		t.Fatal("expected timing phases")
	}
	if res.TimingSummary == "" {
		t.Fatal("expected timing summary")
	}
}

func TestCheckFixtures_Errors(t *testing.T) {
	ctx := context.Background()
	if _, err := driver.CheckFixtures(ctx, nil, driver.Options{}); err == nil {
		t.Fatal("expected error for no fixtures")
	}
	if _, err := driver.CheckFixtures(ctx, []string{filepath.Join("testdata", "missing.yaml")}, driver.Options{}); err == nil {
		t.Fatal("expected error for missing fixture")
	}
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := driver.CheckFixtures(cctx, []string{hiding}, driver.Options{}); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestImportThenCheckStore(t *testing.T) {
	ctx := context.Background()
	db := filepath.Join(t.TempDir(), "app.db")
	sum, err := driver.Import(ctx, []string{hiding}, db, driver.Options{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.Assembly != "App" || sum.Files != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	res, err := driver.CheckStore(ctx, db, driver.Options{})
	if err != nil {
		t.Fatalf("check store: %v", err)
	}
	got := codes(res.Bag)
	if len(got) != 1 || got[0] != diag.WrnNewOrOverrideExpected {
		t.Fatalf("unexpected diagnostics: %v", got)
	}
	if res.Key != (project.Digest{}) {
		t.Fatal("store checks are not keyed")
	}
}

func TestOptionsFromManifest(t *testing.T) {
	m := &project.Manifest{
		Path: "declcheck.toml",
		Config: project.Config{
			Assembly: project.AssemblyConfig{Name: "App"},
			Check: project.CheckConfig{
				MaxDiagnostics: 10,
				Jobs:           2,
				Passes:         "modifiers",
				NoWarn:         []string{"CS0114"},
			},
			References: []project.ReferenceConfig{{Identity: "Lib", Defines: []string{"N.X"}}},
		},
	}
	opts, err := driver.OptionsFromManifest(m, driver.Options{Jobs: 8})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Assembly != "App" || opts.MaxDiagnostics != 10 || opts.Jobs != 8 {
		t.Fatalf("merged = %+v", opts)
	}
	if opts.Passes != sema.PassModifiers {
		t.Fatalf("passes = %v", opts.Passes)
	}
	if _, ok := opts.Policy.NoWarn[diag.WrnNewOrOverrideExpected]; !ok {
		t.Fatal("no_warn not merged")
	}
	if len(opts.References) != 1 {
		t.Fatalf("references = %d", len(opts.References))
	}
	if _, ok := opts.References[0].Defines["N.X"]; !ok {
		t.Fatal("defines not converted")
	}

	m.Config.Check.Passes = "nope"
	if _, err := driver.OptionsFromManifest(m, driver.Options{}); err == nil {
		t.Fatal("expected error for unknown pass")
	}
}

func TestFixtureCache_HitMiss(t *testing.T) {
	c := driver.NewFixtureCache(4)
	var d1, d2 project.Digest
	d1[0], d2[0] = 1, 2

	if _, ok := c.Get("a.yaml", d1); ok {
		t.Fatal("empty cache hit")
	}
	res1, err := driver.CheckFixtures(context.Background(), []string{hiding}, driver.Options{Fixtures: c})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := driver.CheckFixtures(context.Background(), []string{hiding}, driver.Options{Fixtures: c}); err != nil {
		t.Fatal(err)
	}
	if c.Hits() != 1 {
		t.Fatalf("hits = %d, want 1", c.Hits())
	}
	if _, ok := c.Get(hiding, d2); ok {
		t.Fatal("expected miss on different content hash")
	}
	if res1.Bag.Len() != 1 {
		t.Fatal("fixture cache changed the outcome")
	}

	var nilCache *driver.FixtureCache
	if _, ok := nilCache.Get("x", d1); ok {
		t.Fatal("nil cache hit")
	}
}

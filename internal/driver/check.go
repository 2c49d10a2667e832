package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/exports"
	"github.com/dotnet/roslyn-sub221/internal/fixture"
	"github.com/dotnet/roslyn-sub221/internal/observ"
	"github.com/dotnet/roslyn-sub221/internal/project"
	"github.com/dotnet/roslyn-sub221/internal/sema"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/symstore"
	"github.com/dotnet/roslyn-sub221/internal/trace"
)

// Options содержит опции проверки
type Options struct {
	// Assembly overrides the assembly name of the first fixture.
	Assembly             string
	MaxDiagnostics       int
	Jobs                 int
	Passes               sema.Pass
	Policy               diag.Policy
	CaseInsensitiveNames bool
	References           []*symbols.AssemblyRef

	// Cache stores validation results by input digest; nil disables it.
	Cache *DiskCache
	// Fixtures memoizes parsed fixtures across runs of one process.
	Fixtures      *FixtureCache
	Progress      ProgressSink
	EnableTimings bool
}

// Result is the outcome of one check.
type Result struct {
	Comp *symbols.Compilation
	// Bag holds the final diagnostics: sorted, deduplicated, filtered by
	// the severity policy and bounded by MaxDiagnostics.
	Bag      *diag.Bag
	Types    int
	Stats    []sema.PassStat
	Reported int
	// Key is the input digest; zero for inputs that are not cached.
	Key      project.Digest
	CacheHit bool
	Timings  *observ.Report
	// TimingSummary is the human readable form of Timings.
	TimingSummary string
}

// OptionsFromManifest fills zero fields of base from the manifest. Values
// given on the command line win over the [check] table.
func OptionsFromManifest(m *project.Manifest, base Options) (Options, error) {
	cfg := m.Config
	out := base
	if out.Assembly == "" {
		out.Assembly = cfg.Assembly.Name
	}
	if out.MaxDiagnostics == 0 {
		out.MaxDiagnostics = cfg.Check.MaxDiagnostics
	}
	if out.Jobs == 0 {
		out.Jobs = cfg.Check.Jobs
	}
	if out.Passes == 0 && cfg.Check.Passes != "" {
		p, err := sema.ParsePass(cfg.Check.Passes)
		if err != nil {
			return base, fmt.Errorf("%s: %w", m.Path, err)
		}
		out.Passes = p
	}
	out.CaseInsensitiveNames = out.CaseInsensitiveNames || cfg.Check.CaseInsensitiveMetadataNames

	pol := cfg.Check.Policy()
	out.Policy.WarningsAsErrors = out.Policy.WarningsAsErrors || pol.WarningsAsErrors
	out.Policy.NoWarnings = out.Policy.NoWarnings || pol.NoWarnings
	out.Policy.NoWarn = mergeCodes(out.Policy.NoWarn, pol.NoWarn)
	out.Policy.WarnAsError = mergeCodes(out.Policy.WarnAsError, pol.WarnAsError)

	for _, r := range cfg.References {
		ref := &symbols.AssemblyRef{Identity: r.Identity, Forwards: r.Forwards}
		if len(r.Defines) > 0 {
			ref.Defines = make(map[string]struct{}, len(r.Defines))
			for _, d := range r.Defines {
				ref.Defines[d] = struct{}{}
			}
		}
		out.References = append(out.References, ref)
	}
	return out, nil
}

func mergeCodes(a, b map[diag.Code]struct{}) map[diag.Code]struct{} {
	if len(b) == 0 {
		return a
	}
	out := make(map[diag.Code]struct{}, len(a)+len(b))
	for c := range a {
		out[c] = struct{}{}
	}
	for c := range b {
		out[c] = struct{}{}
	}
	return out
}

// CheckManifest validates the modules a declcheck.toml lists.
func CheckManifest(ctx context.Context, m *project.Manifest, opts Options) (*Result, error) {
	merged, err := OptionsFromManifest(m, opts)
	if err != nil {
		return nil, err
	}
	return CheckFixtures(ctx, m.Fixtures(), merged)
}

// CheckFixtures binds fixture files into one compilation and validates it.
// The first fixture is the primary module.
func CheckFixtures(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no fixtures", fixture.ErrInvalid)
	}
	timer := newPhaseTimer(opts.EnableTimings)
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID).
		WithExtra("fixtures", fmt.Sprint(len(paths)))
	defer root.End("")
	ctx = trace.WithSpan(ctx, root)

	emitQueued(opts.Progress, StageLoad, paths)
	loadIdx := timer.begin("load")
	inputs, digests, err := readFixtures(ctx, paths, &opts)
	if err != nil {
		timer.end(loadIdx, "error")
		return nil, err
	}
	comp, err := fixture.Build(inputs, fixture.Options{
		Assembly:             opts.Assembly,
		CaseInsensitiveNames: opts.CaseInsensitiveNames,
		References:           opts.References,
	})
	if err != nil {
		timer.end(loadIdx, "error")
		return nil, err
	}
	timer.end(loadIdx, fmt.Sprintf("modules=%d symbols=%d", len(comp.Modules), comp.Symbols.Len()))

	key := inputKey(&opts, digests, comp.Files)
	return run(ctx, comp, key, true, opts, timer)
}

// CheckStore validates a compilation saved by Import.
func CheckStore(ctx context.Context, dbPath string, opts Options) (*Result, error) {
	timer := newPhaseTimer(opts.EnableTimings)
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID).WithExtra("db", dbPath)
	defer root.End("")
	ctx = trace.WithSpan(ctx, root)

	emitQueued(opts.Progress, StageLoad, []string{dbPath})
	emit(opts.Progress, Event{Item: dbPath, Stage: StageLoad, Status: StatusWorking})
	loadIdx := timer.begin("load")
	start := time.Now()
	comp, err := loadStore(ctx, dbPath)
	if err != nil {
		timer.end(loadIdx, "error")
		emit(opts.Progress, Event{Item: dbPath, Stage: StageLoad, Status: StatusError, Err: err})
		return nil, err
	}
	timer.end(loadIdx, fmt.Sprintf("modules=%d symbols=%d", len(comp.Modules), comp.Symbols.Len()))
	emit(opts.Progress, Event{Item: dbPath, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(start)})
	return run(ctx, comp, project.Digest{}, false, opts, timer)
}

func loadStore(ctx context.Context, dbPath string) (*symbols.Compilation, error) {
	st, err := symstore.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(ctx)
}

// CheckCompilation validates a compilation assembled by the caller.
func CheckCompilation(ctx context.Context, comp *symbols.Compilation, opts Options) (*Result, error) {
	return run(ctx, comp, project.Digest{}, false, opts, newPhaseTimer(opts.EnableTimings))
}

// Import binds fixtures and saves the compilation into a symbol store.
func Import(ctx context.Context, paths []string, dbPath string, opts Options) (symstore.Summary, error) {
	inputs, _, err := readFixtures(ctx, paths, &opts)
	if err != nil {
		return symstore.Summary{}, err
	}
	comp, err := fixture.Build(inputs, fixture.Options{
		Assembly:             opts.Assembly,
		CaseInsensitiveNames: opts.CaseInsensitiveNames,
		References:           opts.References,
	})
	if err != nil {
		return symstore.Summary{}, err
	}
	st, err := symstore.Open(dbPath)
	if err != nil {
		return symstore.Summary{}, err
	}
	defer st.Close()
	if err := st.Save(ctx, comp); err != nil {
		return symstore.Summary{}, err
	}
	return st.Summary(ctx)
}

func run(ctx context.Context, comp *symbols.Compilation, key project.Digest, cacheable bool, opts Options, timer phaseTimer) (*Result, error) {
	res := &Result{Comp: comp}
	if cacheable {
		res.Key = key
	}
	passNames := effectivePasses(opts.Passes).Names()

	var all *diag.Bag
	if cacheable && opts.Cache != nil {
		var payload DiskPayload
		idx := timer.begin("cache")
		hit, err := opts.Cache.Get(key, &payload)
		timer.end(idx, fmt.Sprintf("hit=%t", hit))
		if err != nil {
			// испорченная запись - просто пересчитываем
			trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache", "unreadable entry: "+err.Error(), trace.CurrentSpan(ctx).SpanID)
		}
		if hit && err == nil {
			res.CacheHit = true
			res.Types, res.Stats, res.Reported = payload.Types, payload.Stats, payload.Reported
			all = diag.NewBag(0)
			for _, d := range payload.Diagnostics {
				all.Add(d)
			}
			for _, name := range append(passNames, "exports") {
				emit(opts.Progress, Event{Item: name, Stage: StageValidate, Status: StatusCached})
			}
		}
	}

	if all == nil {
		var err error
		all, err = validate(ctx, comp, passNames, opts, res, timer)
		if err != nil {
			return res, err
		}
		if cacheable && opts.Cache != nil {
			err := opts.Cache.Put(key, &DiskPayload{
				Assembly:    comp.Assembly,
				Types:       res.Types,
				Stats:       res.Stats,
				Reported:    res.Reported,
				Diagnostics: all.Items(),
			})
			if err != nil {
				trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "cache", "write failed: "+err.Error(), trace.CurrentSpan(ctx).SpanID)
			}
		}
	}

	idx := timer.begin("report")
	opts.Policy.Apply(all)
	res.Bag = diag.NewBag(opts.MaxDiagnostics)
	for _, d := range all.Items() {
		res.Bag.Add(d)
	}
	timer.end(idx, fmt.Sprintf("diags=%d", res.Bag.Len()))
	emit(opts.Progress, Event{Stage: StageReport, Status: StatusDone})

	res.Timings = timer.report()
	res.TimingSummary = timer.summary()
	return res, nil
}

// validate runs the sema passes and the export fold into one sink.
func validate(ctx context.Context, comp *symbols.Compilation, passNames []string, opts Options, res *Result, timer phaseTimer) (*diag.Bag, error) {
	sink := diag.NewSink()
	emitQueued(opts.Progress, StageValidate, passNames)
	emitQueued(opts.Progress, StageExports, []string{"exports"})

	idx := timer.begin("validate")
	check, err := sema.Check(ctx, comp, sema.Options{
		Reporter: sink,
		Jobs:     opts.Jobs,
		Passes:   opts.Passes,
		OnPass: func(name string, done bool) {
			status := StatusWorking
			if done {
				status = StatusDone
			}
			emit(opts.Progress, Event{Item: name, Stage: StageValidate, Status: status})
		},
	})
	res.Types, res.Stats = check.Types, check.Stats
	for _, st := range check.Stats {
		timer.record(st.Name, st.Dur, fmt.Sprintf("reported=%d", st.Reported))
	}
	if err != nil {
		timer.end(idx, "cancelled")
		return nil, err
	}
	timer.end(idx, fmt.Sprintf("types=%d", check.Types))

	idx = timer.begin("exports")
	start := time.Now()
	emit(opts.Progress, Event{Item: "exports", Stage: StageExports, Status: StatusWorking})
	ex, err := exports.Resolve(ctx, comp, sink)
	if err != nil {
		timer.end(idx, "cancelled")
		emit(opts.Progress, Event{Item: "exports", Stage: StageExports, Status: StatusError, Err: err})
		return nil, err
	}
	timer.end(idx, fmt.Sprintf("names=%d", ex.Names))
	emit(opts.Progress, Event{Item: "exports", Stage: StageExports, Status: StatusDone, Elapsed: time.Since(start)})

	res.Reported = check.Reported() + ex.Reported
	return sink.Drain(0), nil
}

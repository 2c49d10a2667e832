package sema

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/trace"
)

// Pass selects a group of declaration checks. Passes share nothing but the
// read-only compilation and the diagnostic sink, so they run concurrently.
type Pass uint8

const (
	// PassConflicts finds same-type member collisions and inherited-member hiding.
	PassConflicts Pass = 1 << iota
	// PassOverrides matches overrides, explicit and implicit interface
	// implementations, and unimplemented abstract members.
	PassOverrides
	// PassConstraints validates type parameter constraints and their uses.
	PassConstraints
	// PassModifiers checks modifier legality, static classes and partial members.
	PassModifiers

	AllPasses = PassConflicts | PassOverrides | PassConstraints | PassModifiers
)

var passNames = []struct {
	pass Pass
	name string
}{
	{PassConflicts, "conflicts"},
	{PassOverrides, "overrides"},
	{PassConstraints, "constraints"},
	{PassModifiers, "modifiers"},
}

func (p Pass) String() string {
	var parts []string
	for _, pn := range passNames {
		if p&pn.pass != 0 {
			parts = append(parts, pn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// Names lists the selected passes in run order; 0 selects all of them.
func (p Pass) Names() []string {
	if p == 0 {
		p = AllPasses
	}
	var out []string
	for _, pn := range passNames {
		if p&pn.pass != 0 {
			out = append(out, pn.name)
		}
	}
	return out
}

// ParsePass accepts a comma separated list of pass names or "all".
func ParsePass(s string) (Pass, error) {
	var out Pass
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if part == "all" {
			out |= AllPasses
			continue
		}
		found := false
		for _, pn := range passNames {
			if pn.name == part {
				out |= pn.pass
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown pass %q (expected: conflicts|overrides|constraints|modifiers|all)", part)
		}
	}
	return out, nil
}

// Options configure a validation run.
type Options struct {
	// Reporter receives every diagnostic. It must be safe for concurrent
	// use; diag.Sink is.
	Reporter diag.Reporter
	// Jobs bounds how many passes run at once; 0 means all of them.
	Jobs int
	// Passes selects what to run; 0 means AllPasses.
	Passes Pass
	// OnPass is called when a pass starts and when it finishes. Passes run
	// concurrently, so it must be safe for concurrent use.
	OnPass func(name string, done bool)
}

// PassStat summarizes one pass.
type PassStat struct {
	Name     string
	Types    int
	Reported int
	Dur      time.Duration
}

// Result stores what the passes did. Diagnostics go to Options.Reporter.
type Result struct {
	Types int
	Stats []PassStat
}

// Reported is the number of diagnostics emitted before deduplication.
func (r *Result) Reported() int {
	n := 0
	for _, s := range r.Stats {
		n += s.Reported
	}
	return n
}

type passFunc func(c *checker, typ symbols.SymbolID)

type passDef struct {
	pass Pass
	name string
	run  passFunc
}

var passes = []passDef{
	{PassConflicts, "conflicts", func(c *checker, t symbols.SymbolID) {
		c.checkMemberConflicts(t)
		c.checkHiding(t)
	}},
	{PassOverrides, "overrides", func(c *checker, t symbols.SymbolID) {
		c.checkOverrides(t)
		c.checkExplicitImpls(t)
		c.checkInterfaceImpls(t)
		c.checkAbstractImpls(t)
	}},
	{PassConstraints, "constraints", func(c *checker, t symbols.SymbolID) {
		c.checkTypeConstraints(t)
		c.checkUseSites(t)
	}},
	{PassModifiers, "modifiers", func(c *checker, t symbols.SymbolID) {
		c.checkModifiers(t)
		c.checkStaticClass(t)
		c.checkPartials(t)
	}},
}

// Check runs the selected passes over every source type of comp. It returns
// ctx.Err() when cancelled; diagnostics reported until then stay in the sink.
func Check(ctx context.Context, comp *symbols.Compilation, opts Options) (Result, error) {
	res := Result{}
	if comp == nil {
		return res, nil
	}
	selected := opts.Passes
	if selected == 0 {
		selected = AllPasses
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	root := trace.Begin(tracer, trace.ScopeDriver, "validate", parent)
	defer root.End("")
	perType := tracer.Level().ShouldEmit(trace.ScopeType)

	types := comp.SourceTypes()
	res.Types = len(types)

	var run []passDef
	for _, p := range passes {
		if selected&p.pass != 0 {
			run = append(run, p)
		}
	}
	res.Stats = make([]PassStat, len(run))

	g, gctx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs <= 0 || jobs > len(run) {
		jobs = len(run)
	}
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, p := range run {
		g.Go(func() error {
			span := trace.Begin(tracer, trace.ScopePass, p.name, root.ID())
			start := time.Now()
			if opts.OnPass != nil {
				opts.OnPass(p.name, false)
				defer opts.OnPass(p.name, true)
			}
			// each pass dedups on its own; only the sink is shared
			c := newChecker(comp, diag.NewDedupReporter(opts.Reporter))
			for _, t := range types {
				if err := gctx.Err(); err != nil {
					span.End("cancelled")
					return err
				}
				if !perType {
					p.run(c, t)
					continue
				}
				ts := trace.Begin(tracer, trace.ScopeType, comp.Display(t), span.ID())
				p.run(c, t)
				ts.End("")
			}
			res.Stats[i] = PassStat{Name: p.name, Types: len(types), Reported: c.reported, Dur: time.Since(start)}
			span.WithExtra("reported", fmt.Sprint(c.reported)).End("")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

// Validate runs every pass and returns the sorted, deduplicated diagnostics
// bounded by max (0 = unbounded).
func Validate(ctx context.Context, comp *symbols.Compilation, max int) (*diag.Bag, error) {
	sink := diag.NewSink()
	_, err := Check(ctx, comp, Options{Reporter: sink})
	return sink.Drain(max), err
}

// checker holds per-pass scratch state. One instance is used by exactly one
// goroutine.
type checker struct {
	comp     *symbols.Compilation
	rep      diag.Reporter
	reported int

	overridden map[symbols.SymbolID]overrideLookup
}

func newChecker(comp *symbols.Compilation, rep diag.Reporter) *checker {
	return &checker{
		comp:       comp,
		rep:        rep,
		overridden: make(map[symbols.SymbolID]overrideLookup),
	}
}

func (c *checker) sym(id symbols.SymbolID) *symbols.Symbol { return c.comp.MustSym(id) }

func (c *checker) display(id symbols.SymbolID) string { return c.comp.Display(id) }

func (c *checker) typeDisplay(ref symbols.TypeRef) string { return c.comp.TypeDisplay(ref) }

// report starts a diagnostic ordered by the offending declaration.
func (c *checker) report(code diag.Code, at source.Span, owner symbols.SymbolID, args ...string) *diag.ReportBuilder {
	c.reported++
	return diag.Report(c.rep, code, at, args...).Ordered(uint32(owner))
}

// reportOn reports at the declaration of id.
func (c *checker) reportOn(code diag.Code, id symbols.SymbolID, args ...string) {
	c.report(code, c.sym(id).Span, id, args...).Emit()
}

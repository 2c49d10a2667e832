package exports

import (
	"context"
	"fmt"

	"github.com/dotnet/roslyn-sub221/internal/diag"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
	"github.com/dotnet/roslyn-sub221/internal/trace"
)

// State is the resolution state of one exported name.
type State uint8

const (
	// Unseen: no record with this name has been folded yet.
	Unseen State = iota
	// SingleExport: one record (or several agreeing ones) own the name.
	SingleExport
	// ConflictingExports is terminal; later records are absorbed silently.
	ConflictingExports
)

func (s State) String() string {
	switch s {
	case Unseen:
		return "unseen"
	case SingleExport:
		return "single"
	case ConflictingExports:
		return "conflicting"
	}
	return "?"
}

type entry struct {
	state State
	first symbols.ExportRecord
}

// Result summarizes a resolution run.
type Result struct {
	Modules  int
	Records  int
	Names    int
	Reported int
}

// Resolver folds the export tables of compiled modules into a per-name
// state map. A Resolver is single-use and not safe for concurrent use.
type Resolver struct {
	comp  *symbols.Compilation
	rep   diag.Reporter
	names map[string]*entry
	refs  map[string]*symbols.AssemblyRef
	seq   uint32
	res   Result
}

// New prepares a resolver for comp writing into rep.
func New(comp *symbols.Compilation, rep diag.Reporter) *Resolver {
	r := &Resolver{
		comp:  comp,
		rep:   rep,
		names: make(map[string]*entry),
		refs:  make(map[string]*symbols.AssemblyRef, len(comp.References)),
	}
	for _, ref := range comp.References {
		if _, dup := r.refs[ref.Identity]; !dup {
			r.refs[ref.Identity] = ref
		}
	}
	return r
}

// Resolve runs the fold over every compiled module in order. It returns
// ctx.Err() between modules when cancelled.
func Resolve(ctx context.Context, comp *symbols.Compilation, rep diag.Reporter) (Result, error) {
	if comp == nil {
		return Result{}, nil
	}
	return New(comp, rep).Run(ctx)
}

// Run performs the fold.
func (r *Resolver) Run(ctx context.Context) (Result, error) {
	tracer := trace.FromContext(ctx)
	pass := trace.Begin(tracer, trace.ScopePass, "exports", trace.CurrentSpan(ctx).SpanID)
	defer func() {
		pass.WithExtra("reported", fmt.Sprint(r.res.Reported)).End("")
	}()

	for _, m := range r.comp.CompiledModules() {
		if err := ctx.Err(); err != nil {
			return r.res, err
		}
		span := trace.Begin(tracer, trace.ScopeModule, "module:"+m.Name, pass.ID())
		r.module(m)
		span.WithExtra("records", fmt.Sprint(len(m.Exports))).End("")
		r.res.Modules++
	}
	r.res.Names = len(r.names)
	return r.res, nil
}

// StateOf reports the state reached by a metadata name.
func (r *Resolver) StateOf(name string) State {
	if e, ok := r.names[r.comp.FoldName(name)]; ok {
		return e.state
	}
	return Unseen
}

func (r *Resolver) module(m *symbols.Module) {
	forwarded := make(map[string]struct{})
	for _, rec := range m.Exports {
		r.seq++
		r.res.Records++
		if rec.Kind == symbols.ExportForwarded {
			if rec.Container != "" {
				r.report(diag.ErrForwardedTypeIsNested, m, rec.Name, rec.Container)
				continue
			}
			key := r.comp.FoldName(rec.Name)
			if _, dup := forwarded[key]; dup {
				r.report(diag.ErrDuplicateTypeForwarder, m, rec.Name)
				continue
			}
			forwarded[key] = struct{}{}
			r.checkChain(m, rec)
		}
		r.fold(m, rec)
	}
}

func (r *Resolver) fold(m *symbols.Module, rec symbols.ExportRecord) {
	key := r.comp.FoldName(rec.ConflictKey())
	e, ok := r.names[key]
	if !ok {
		r.names[key] = &entry{state: SingleExport, first: rec}
		return
	}
	first := e.first
	firstMod := r.comp.Module(first.Module)

	// a forwarder never coexists with a primary declaration, whatever the state
	if rec.Kind == symbols.ExportForwarded && first.Kind == symbols.ExportDeclared && firstMod.Kind == symbols.ModulePrimary {
		r.report(diag.ErrForwardedTypeConflictsWithDeclaration, m, rec.Name)
		e.state = ConflictingExports
		return
	}
	if e.state == ConflictingExports || sameTarget(first, rec) {
		return
	}
	e.state = ConflictingExports

	switch {
	case rec.Kind == symbols.ExportDeclared && first.Kind == symbols.ExportDeclared:
		if firstMod.Kind == symbols.ModulePrimary {
			r.report(diag.ErrExportedTypeConflictsWithDeclaration, m, rec.Name, m.Name)
			return
		}
		r.report(diag.ErrExportedTypesConflict, m, rec.Name, m.Name, first.Name, firstMod.Name)
	case rec.Kind == symbols.ExportForwarded && first.Kind == symbols.ExportForwarded:
		r.report(diag.ErrForwardedTypesConflict, m, rec.Name, rec.Target, first.Name, first.Target)
	case rec.Kind == symbols.ExportForwarded:
		r.report(diag.ErrForwardedTypeConflictsWithExportedType, m, rec.Name, rec.Target, first.Name, firstMod.Name)
	default:
		r.report(diag.ErrForwardedTypeConflictsWithExportedType, m, first.Name, first.Target, rec.Name, m.Name)
	}
}

// sameTarget: records naming the same type or the same assembly do not conflict.
func sameTarget(a, b symbols.ExportRecord) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == symbols.ExportDeclared {
		return a.Type == b.Type
	}
	return a.Target == b.Target
}

// checkChain follows rec through the forwarding tables of referenced
// assemblies and reports a chain that returns to an assembly already visited.
func (r *Resolver) checkChain(m *symbols.Module, rec symbols.ExportRecord) {
	visited := map[string]struct{}{m.Assembly: {}}
	target := rec.Target
	for target != "" {
		if _, seen := visited[target]; seen {
			r.report(diag.ErrCycleInTypeForwarder, m, rec.Name, target)
			return
		}
		visited[target] = struct{}{}
		ref, ok := r.refs[target]
		if !ok {
			return
		}
		if _, defined := ref.Defines[rec.Name]; defined {
			return
		}
		target = ref.Forwards[rec.Name]
	}
}

func (r *Resolver) report(code diag.Code, m *symbols.Module, args ...string) {
	r.res.Reported++
	diag.ReportAt(r.rep, code, m.Name, args...).Ordered(r.seq).Emit()
}

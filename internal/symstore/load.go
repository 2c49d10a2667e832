package symstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dotnet/roslyn-sub221/internal/source"
	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

func unmarshalModifiers(s string) (symbols.Modifiers, error) {
	if s == "" || s == "[]" {
		return 0, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(s), &names); err != nil {
		return 0, err
	}
	var out symbols.Modifiers
	for _, n := range names {
		m, ok := symbols.ParseModifier(n)
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
		out |= m
	}
	return out, nil
}

func parseModuleKind(s string) (symbols.ModuleKind, bool) {
	for k := symbols.ModulePrimary; k <= symbols.ModuleReferenced; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Load rebuilds the compilation a Save wrote. Symbols are replayed through
// the builder in arena order, so every SymbolID, ModuleID and FileID comes
// back unchanged; any drift is reported as ErrCorrupt.
func (s *Store) Load(ctx context.Context) (*symbols.Compilation, error) {
	meta, err := s.meta(ctx)
	if err != nil {
		return nil, err
	}
	if meta["schema"] != strconv.Itoa(SchemaVersion) {
		return nil, fmt.Errorf("%w: store has %q, want %d", ErrSchema, meta["schema"], SchemaVersion)
	}
	files := source.NewFileSet()
	if err := s.loadFiles(ctx, files); err != nil {
		return nil, err
	}
	b := symbols.NewBuilder(meta["assembly"], files)
	b.SetCaseInsensitiveNames(meta["case_insensitive"] == "true")

	if err := s.loadModules(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadSymbols(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadForwards(ctx, b); err != nil {
		return nil, err
	}
	if err := s.loadRefs(ctx, b); err != nil {
		return nil, err
	}
	comp, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return comp, nil
}

func (s *Store) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("load meta: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty store", ErrCorrupt)
	}
	return out, nil
}

func (s *Store) loadFiles(ctx context.Context, files *source.FileSet) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, flags, content FROM files ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, flags int64
			path      string
			content   []byte
		)
		if err := rows.Scan(&id, &path, &flags, &content); err != nil {
			return fmt.Errorf("load files: %w", err)
		}
		fl, err := safecast.Conv[uint8](flags)
		if err != nil {
			return fmt.Errorf("%w: file %s flags: %w", ErrCorrupt, path, err)
		}
		got := files.Add(path, content, source.FileFlags(fl))
		if int64(got) != id {
			return fmt.Errorf("%w: file %s reloaded as %d, stored as %d", ErrCorrupt, path, got, id)
		}
	}
	return rows.Err()
}

func (s *Store) loadModules(ctx context.Context, b *symbols.Builder) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, name, assembly FROM modules ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id                   int64
			kind, name, assembly string
		)
		if err := rows.Scan(&id, &kind, &name, &assembly); err != nil {
			return fmt.Errorf("load modules: %w", err)
		}
		// the core library is synthesized by the builder
		if m := b.Compilation().Module(b.CoreModule()); int64(m.ID) == id {
			if m.Name != name {
				return fmt.Errorf("%w: core module %q, stored %q", ErrCorrupt, m.Name, name)
			}
			continue
		}
		k, ok := parseModuleKind(kind)
		if !ok {
			return fmt.Errorf("%w: module %s has kind %q", ErrCorrupt, name, kind)
		}
		if k == symbols.ModulePrimary && b.Compilation().Primary() != nil {
			return fmt.Errorf("%w: second primary module %s", ErrCorrupt, name)
		}
		if got := b.AddModule(k, name, assembly); int64(got) != id {
			return fmt.Errorf("%w: module %s reloaded as %d, stored as %d", ErrCorrupt, name, got, id)
		}
	}
	return rows.Err()
}

type symbolRow struct {
	id, container, module int64
	kind, name            string
	spanFile              sql.NullInt64
	spanStart, spanEnd    int64
	modifiers             string
	flags                 int64
	indexerName           string
	payload               []byte
}

func (s *Store) loadSymbols(ctx context.Context, b *symbols.Builder) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, container, module, span_file, span_start, span_end,
		       modifiers, flags, indexer_name, payload
		FROM symbols ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load symbols: %w", err)
	}
	defer rows.Close()

	comp := b.Compilation()
	seeded := comp.Symbols.Len()
	// qualified names of namespaces, by id
	namespaces := map[symbols.SymbolID]string{comp.Global: ""}
	for rows.Next() {
		var r symbolRow
		if err := rows.Scan(&r.id, &r.kind, &r.name, &r.container, &r.module,
			&r.spanFile, &r.spanStart, &r.spanEnd,
			&r.modifiers, &r.flags, &r.indexerName, &r.payload); err != nil {
			return fmt.Errorf("load symbols: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := replay(b, &r, seeded, namespaces); err != nil {
			return err
		}
	}
	return rows.Err()
}

func replay(b *symbols.Builder, r *symbolRow, seeded int, namespaces map[symbols.SymbolID]string) error {
	comp := b.Compilation()
	id, err := safecast.Conv[uint32](r.id)
	if err != nil {
		return fmt.Errorf("%w: symbol id %d: %w", ErrCorrupt, r.id, err)
	}
	kind, ok := symbols.ParseKind(r.kind)
	if !ok {
		return fmt.Errorf("%w: symbol %d has kind %q", ErrCorrupt, r.id, r.kind)
	}
	if r.id <= int64(seeded) {
		have := comp.Sym(symbols.SymbolID(id))
		if have == nil || have.Kind != kind || have.Name != r.name {
			return fmt.Errorf("%w: core symbol %d is %s %q", ErrCorrupt, r.id, r.kind, r.name)
		}
		if kind == symbols.KindNamespace {
			namespaces[have.ID] = qualify(namespaces[have.Container], have.Name)
		}
		return nil
	}

	container, err := safecast.Conv[uint32](r.container)
	if err != nil {
		return fmt.Errorf("%w: symbol %d container: %w", ErrCorrupt, r.id, err)
	}
	parent := comp.Sym(symbols.SymbolID(container))
	if parent == nil {
		return fmt.Errorf("%w: symbol %d has unknown container %d", ErrCorrupt, r.id, r.container)
	}

	var got symbols.SymbolID
	switch {
	case kind == symbols.KindNamespace:
		prefix, ok := namespaces[parent.ID]
		if !ok {
			return fmt.Errorf("%w: namespace %q inside %s", ErrCorrupt, r.name, parent.Kind)
		}
		q := qualify(prefix, r.name)
		got = b.Namespace(q)
		namespaces[got] = q
	case kind.IsType() || kind.IsMember():
		d, p, err := decode(r)
		if err != nil {
			return err
		}
		if kind.IsType() {
			if parent.Kind != symbols.KindNamespace && !parent.Kind.IsType() {
				return fmt.Errorf("%w: type %q inside %s", ErrCorrupt, r.name, parent.Kind)
			}
			mod, err := safecast.Conv[uint16](r.module)
			if err != nil || comp.Module(symbols.ModuleID(mod)) == nil {
				return fmt.Errorf("%w: type %q in unknown module %d", ErrCorrupt, r.name, r.module)
			}
			got = b.DeclareType(symbols.ModuleID(mod), kind, parent.ID, d)
		} else {
			if !parent.Kind.IsType() {
				return fmt.Errorf("%w: member %q inside %s", ErrCorrupt, r.name, parent.Kind)
			}
			got = b.DeclareMember(kind, parent.ID, d)
		}
		if p.Base != nil {
			b.SetBase(got, *p.Base)
		}
		if len(p.Interfaces) > 0 {
			b.AddInterfaces(got, p.Interfaces...)
		}
	default:
		return fmt.Errorf("%w: symbol %d has kind %s", ErrCorrupt, r.id, kind)
	}
	if int64(got) != r.id {
		return fmt.Errorf("%w: %s %q reloaded as %d, stored as %d", ErrCorrupt, kind, r.name, got, r.id)
	}
	return nil
}

func decode(r *symbolRow) (symbols.Decl, payload, error) {
	var p payload
	if len(r.payload) > 0 {
		if err := msgpack.Unmarshal(r.payload, &p); err != nil {
			return symbols.Decl{}, p, fmt.Errorf("%w: symbol %d payload: %w", ErrCorrupt, r.id, err)
		}
	}
	mods, err := unmarshalModifiers(r.modifiers)
	if err != nil {
		return symbols.Decl{}, p, fmt.Errorf("%w: symbol %d modifiers: %w", ErrCorrupt, r.id, err)
	}
	flags, err := safecast.Conv[uint16](r.flags)
	if err != nil {
		return symbols.Decl{}, p, fmt.Errorf("%w: symbol %d flags: %w", ErrCorrupt, r.id, err)
	}
	span := source.NoSpan
	if r.spanFile.Valid {
		file, err1 := safecast.Conv[uint32](r.spanFile.Int64)
		start, err2 := safecast.Conv[uint32](r.spanStart)
		end, err3 := safecast.Conv[uint32](r.spanEnd)
		if err := errors.Join(err1, err2, err3); err != nil {
			return symbols.Decl{}, p, fmt.Errorf("%w: symbol %d span: %w", ErrCorrupt, r.id, err)
		}
		span = source.Span{File: source.FileID(file), Start: start, End: end}
	}
	return symbols.Decl{
		Name:              r.name,
		Span:              span,
		Modifiers:         mods,
		Flags:             symbols.SymbolFlags(flags),
		TypeParams:        p.TypeParams,
		Sig:               p.Sig,
		Accessors:         p.Accessors,
		ExplicitInterface: p.Explicit,
		IndexerName:       r.indexerName,
	}, p, nil
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (s *Store) loadForwards(ctx context.Context, b *symbols.Builder) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module, name, target, container, ignore_arity FROM forwards ORDER BY module, seq`)
	if err != nil {
		return fmt.Errorf("load forwards: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			module int64
			rec    symbols.ExportRecord
		)
		if err := rows.Scan(&module, &rec.Name, &rec.Target, &rec.Container, &rec.IgnoreArity); err != nil {
			return fmt.Errorf("load forwards: %w", err)
		}
		mod, err := safecast.Conv[uint16](module)
		if m := b.Compilation().Module(symbols.ModuleID(mod)); err != nil || m == nil || !m.IsCompiled() {
			return fmt.Errorf("%w: forward %s in module %d", ErrCorrupt, rec.Name, module)
		}
		b.Forward(symbols.ModuleID(mod), rec)
	}
	return rows.Err()
}

func (s *Store) loadRefs(ctx context.Context, b *symbols.Builder) error {
	rows, err := s.db.QueryContext(ctx, `SELECT identity, forwards, defines FROM assembly_refs ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("load references: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ref               symbols.AssemblyRef
			forwards, defines []byte
		)
		if err := rows.Scan(&ref.Identity, &forwards, &defines); err != nil {
			return fmt.Errorf("load references: %w", err)
		}
		if len(forwards) > 0 {
			if err := msgpack.Unmarshal(forwards, &ref.Forwards); err != nil {
				return fmt.Errorf("%w: reference %s: %w", ErrCorrupt, ref.Identity, err)
			}
		}
		var names []string
		if len(defines) > 0 {
			if err := msgpack.Unmarshal(defines, &names); err != nil {
				return fmt.Errorf("%w: reference %s: %w", ErrCorrupt, ref.Identity, err)
			}
		}
		if len(names) > 0 {
			ref.Defines = make(map[string]struct{}, len(names))
			for _, n := range names {
				ref.Defines[n] = struct{}{}
			}
		}
		b.AddReference(&ref)
	}
	return rows.Err()
}

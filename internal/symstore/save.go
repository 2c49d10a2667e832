package symstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dotnet/roslyn-sub221/internal/symbols"
)

// payload carries the structured parts of a symbol as one msgpack blob.
type payload struct {
	TypeParams []symbols.TypeParam `msgpack:"tp,omitempty"`
	Base       *symbols.TypeRef    `msgpack:"base,omitempty"`
	Interfaces []symbols.TypeRef   `msgpack:"ifaces,omitempty"`
	Sig        symbols.Signature   `msgpack:"sig"`
	Accessors  []symbols.Accessor  `msgpack:"acc,omitempty"`
	Explicit   *symbols.TypeRef    `msgpack:"explicit,omitempty"`
}

func marshalModifiers(m symbols.Modifiers) string {
	names := m.Names()
	if len(names) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(names)
	return string(b)
}

// Save replaces the store content with comp. Only forwarded export records
// are written; declared ones are derived again on load.
func (s *Store) Save(ctx context.Context, comp *symbols.Compilation) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"forwards", "assembly_refs", "symbols", "modules", "files", "meta"} {
		// #nosec G202 -- table names are constants
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save: clear %s: %w", table, err)
		}
	}
	if err = saveMeta(ctx, tx, comp); err != nil {
		return err
	}
	if err = saveFiles(ctx, tx, comp); err != nil {
		return err
	}
	if err = saveModules(ctx, tx, comp); err != nil {
		return err
	}
	if err = saveSymbols(ctx, tx, comp); err != nil {
		return err
	}
	if err = saveRefs(ctx, tx, comp); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save: commit: %w", err)
	}
	return nil
}

func saveMeta(ctx context.Context, tx *sql.Tx, comp *symbols.Compilation) error {
	rows := [][2]string{
		{"schema", strconv.Itoa(SchemaVersion)},
		{"assembly", comp.Assembly},
		{"case_insensitive", strconv.FormatBool(comp.CaseInsensitiveNames)},
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, r[0], r[1]); err != nil {
			return fmt.Errorf("save meta %s: %w", r[0], err)
		}
	}
	return nil
}

func saveFiles(ctx context.Context, tx *sql.Tx, comp *symbols.Compilation) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO files (id, path, flags, content) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save files: %w", err)
	}
	defer stmt.Close()
	for _, f := range comp.Files.All() {
		if _, err := stmt.ExecContext(ctx, int64(f.ID), f.Path, int64(f.Flags), f.Content); err != nil {
			return fmt.Errorf("save file %s: %w", f.Path, err)
		}
	}
	return nil
}

func saveModules(ctx context.Context, tx *sql.Tx, comp *symbols.Compilation) error {
	for _, m := range comp.Modules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO modules (id, kind, name, assembly) VALUES (?, ?, ?, ?)`,
			int64(m.ID), m.Kind.String(), m.Name, m.Assembly); err != nil {
			return fmt.Errorf("save module %s: %w", m.Name, err)
		}
		seq := 0
		for _, rec := range m.Exports {
			if rec.Kind != symbols.ExportForwarded {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO forwards (module, seq, name, target, container, ignore_arity) VALUES (?, ?, ?, ?, ?, ?)`,
				int64(m.ID), seq, rec.Name, rec.Target, rec.Container, rec.IgnoreArity); err != nil {
				return fmt.Errorf("save forward %s: %w", rec.Name, err)
			}
			seq++
		}
	}
	return nil
}

func saveSymbols(ctx context.Context, tx *sql.Tx, comp *symbols.Compilation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols (id, kind, name, container, module, span_file, span_start, span_end,
		                     modifiers, flags, indexer_name, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save symbols: %w", err)
	}
	defer stmt.Close()

	for _, sym := range comp.Symbols.All() {
		if !sym.ID.IsValid() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var spanFile sql.NullInt64
		if sym.Span.IsValid() {
			spanFile = sql.NullInt64{Int64: int64(sym.Span.File), Valid: true}
		}
		blob, err := msgpack.Marshal(&payload{
			TypeParams: sym.TypeParams,
			Base:       sym.Base,
			Interfaces: sym.Interfaces,
			Sig:        sym.Sig,
			Accessors:  sym.Accessors,
			Explicit:   sym.ExplicitInterface,
		})
		if err != nil {
			return fmt.Errorf("encode %s: %w", comp.Display(sym.ID), err)
		}
		if _, err := stmt.ExecContext(ctx,
			int64(sym.ID), sym.Kind.String(), sym.Name, int64(sym.Container), int64(sym.Module),
			spanFile, int64(sym.Span.Start), int64(sym.Span.End),
			marshalModifiers(sym.Modifiers), int64(sym.Flags), sym.IndexerName, blob,
		); err != nil {
			return fmt.Errorf("save symbol %d: %w", sym.ID, err)
		}
	}
	return nil
}

func saveRefs(ctx context.Context, tx *sql.Tx, comp *symbols.Compilation) error {
	for i, ref := range comp.References {
		forwards, err := msgpack.Marshal(ref.Forwards)
		if err != nil {
			return fmt.Errorf("encode reference %s: %w", ref.Identity, err)
		}
		defines := make([]string, 0, len(ref.Defines))
		for name := range ref.Defines {
			defines = append(defines, name)
		}
		slices.Sort(defines)
		defBlob, err := msgpack.Marshal(defines)
		if err != nil {
			return fmt.Errorf("encode reference %s: %w", ref.Identity, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assembly_refs (seq, identity, forwards, defines) VALUES (?, ?, ?, ?)`,
			i, ref.Identity, forwards, defBlob); err != nil {
			return fmt.Errorf("save reference %s: %w", ref.Identity, err)
		}
	}
	return nil
}

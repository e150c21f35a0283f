/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package symbolindex is the persistent Symbol Index (§4.4): a per-workspace
// SQLite database of Symbols, Imports and References, replaced atomically
// per-file on each reparse. Grounded on dekarrin-tunaq's server/dao/sqlite
// package, which opens modernc.org/sqlite (a pure-Go driver, avoiding a cgo
// build requirement for an LSP server editors spawn as a subprocess) and
// wraps driver errors with wrapDBError.
package symbolindex

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/rope"
)

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	uri TEXT NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	start_char INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	end_char INTEGER NOT NULL,
	full_start_line INTEGER NOT NULL,
	full_start_char INTEGER NOT NULL,
	full_end_line INTEGER NOT NULL,
	full_end_char INTEGER NOT NULL,
	container TEXT NOT NULL DEFAULT '',
	signature TEXT NOT NULL DEFAULT '',
	doc_comment TEXT NOT NULL DEFAULT '',
	exported INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (uri, kind, name, start_line, start_char)
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);

CREATE TABLE IF NOT EXISTS imports (
	uri TEXT NOT NULL,
	module_name TEXT NOT NULL,
	alias TEXT NOT NULL DEFAULT '',
	exposing TEXT NOT NULL DEFAULT '',
	exposing_all INTEGER NOT NULL DEFAULT 0,
	start_line INTEGER NOT NULL,
	start_char INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	end_char INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_imports_uri ON imports(uri);

CREATE TABLE IF NOT EXISTS refs (
	uri TEXT NOT NULL,
	name TEXT NOT NULL,
	qualifier TEXT NOT NULL DEFAULT '',
	start_line INTEGER NOT NULL,
	start_char INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	end_char INTEGER NOT NULL,
	resolved_uri TEXT NOT NULL DEFAULT '',
	resolved_kind TEXT NOT NULL DEFAULT '',
	resolved_name TEXT NOT NULL DEFAULT '',
	resolved_start_line INTEGER NOT NULL DEFAULT -1,
	resolved_start_char INTEGER NOT NULL DEFAULT -1
);
CREATE INDEX IF NOT EXISTS idx_refs_uri ON refs(uri);
CREATE INDEX IF NOT EXISTS idx_refs_resolved ON refs(resolved_uri, resolved_kind, resolved_name, resolved_start_line, resolved_start_char);
`

// Stats is the result of Store.Stats.
type Stats struct {
	FileCount      int
	SymbolCount    int
	ImportCount    int
	ReferenceCount int
}

// Store is the SQLite-backed Symbol Index for one workspace. All writes are
// serialized through writeMu; reads use the database/sql pool directly,
// matching dekarrin-tunaq's single-writer-many-reader convention.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
}

// Open creates or opens the index database at path (typically
// "<workspace-root>/.gren-lsp/symbols.db", per SPEC_FULL.md §13.3).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapDBError(err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes at the connection level
	if _, err := db.Exec("PRAGMA case_sensitive_like = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling case-sensitive LIKE: %w", wrapDBError(err))
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing symbol index schema: %w", wrapDBError(err))
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceFile atomically replaces every row keyed by uri with the given
// symbols, imports and references, per §4.4's replace_file contract.
func (s *Store) ReplaceFile(ctx context.Context, uri string, symbols []extractor.Symbol, imports []extractor.Import, refs []extractor.Reference) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError(err)
	}
	defer tx.Rollback()

	for _, table := range []string{"symbols", "imports", "refs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE uri = ?", uri); err != nil {
			return wrapDBError(err)
		}
	}

	for _, sym := range symbols {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO symbols (uri, kind, name, start_line, start_char, end_line, end_char,
				full_start_line, full_start_char, full_end_line, full_end_char,
				container, signature, doc_comment, exported)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			sym.URI, string(sym.Kind), sym.Name,
			sym.Range.Start.Line, sym.Range.Start.Character, sym.Range.End.Line, sym.Range.End.Character,
			sym.FullRange.Start.Line, sym.FullRange.Start.Character, sym.FullRange.End.Line, sym.FullRange.End.Character,
			sym.Container, sym.Signature, sym.DocComment, boolToInt(sym.Exported),
		)
		if err != nil {
			return wrapDBError(err)
		}
	}

	for _, imp := range imports {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO imports (uri, module_name, alias, exposing, exposing_all, start_line, start_char, end_line, end_char)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			imp.URI, imp.ModuleName, imp.Alias, joinExposing(imp.Exposing), boolToInt(imp.ExposingAll),
			imp.Range.Start.Line, imp.Range.Start.Character, imp.Range.End.Line, imp.Range.End.Character,
		)
		if err != nil {
			return wrapDBError(err)
		}
	}

	for _, r := range refs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO refs (uri, name, qualifier, start_line, start_char, end_line, end_char)
			VALUES (?,?,?,?,?,?,?)`,
			r.URI, r.Name, r.Qualifier,
			r.Range.Start.Line, r.Range.Start.Character, r.Range.End.Line, r.Range.End.Character,
		)
		if err != nil {
			return wrapDBError(err)
		}
	}

	return wrapDBError(tx.Commit())
}

// Purge removes every row for uri, including symbols the Document Store no
// longer considers open — the explicit `purge` operation named in §4.4's
// invariants, distinct from close (which retains rows).
func (s *Store) Purge(ctx context.Context, uri string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError(err)
	}
	defer tx.Rollback()
	for _, table := range []string{"symbols", "imports", "refs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE uri = ?", uri); err != nil {
			return wrapDBError(err)
		}
	}
	return wrapDBError(tx.Commit())
}

// FindByName returns every symbol whose name contains substr, a
// case-sensitive substring match per §4.4. Open enables
// `PRAGMA case_sensitive_like = ON` so SQLite's LIKE honors that contract
// instead of its ASCII-case-insensitive default.
func (s *Store) FindByName(ctx context.Context, substr string) ([]extractor.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+symbolColumns+" FROM symbols WHERE name LIKE ? ESCAPE '\\' ORDER BY name", "%"+escapeLike(substr)+"%")
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func (s *Store) FindExact(ctx context.Context, name string) ([]extractor.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+symbolColumns+" FROM symbols WHERE name = ?", name)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func (s *Store) SymbolsInFile(ctx context.Context, uri string) ([]extractor.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+symbolColumns+" FROM symbols WHERE uri = ? ORDER BY start_line, start_char", uri)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanSymbols(rows)
}

func (s *Store) ImportsOf(ctx context.Context, uri string) ([]extractor.Import, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uri, module_name, alias, exposing, exposing_all, start_line, start_char, end_line, end_char
		FROM imports WHERE uri = ?`, uri)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	var out []extractor.Import
	for rows.Next() {
		var imp extractor.Import
		var exposing string
		var exposingAll int
		if err := rows.Scan(&imp.URI, &imp.ModuleName, &imp.Alias, &exposing, &exposingAll,
			&imp.Range.Start.Line, &imp.Range.Start.Character, &imp.Range.End.Line, &imp.Range.End.Character); err != nil {
			return nil, wrapDBError(err)
		}
		imp.Exposing = splitExposing(exposing)
		imp.ExposingAll = exposingAll != 0
		out = append(out, imp)
	}
	return out, wrapDBError(rows.Err())
}

func (s *Store) ReferencesIn(ctx context.Context, uri string) ([]extractor.Reference, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uri, name, qualifier, start_line, start_char, end_line, end_char
		FROM refs WHERE uri = ? ORDER BY start_line, start_char`, uri)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()
	return scanRefs(rows)
}

// Location is a URI plus a Range, the shape find_references_to returns.
type Location struct {
	URI   string
	Range rope.Range
}

// FindReferencesTo returns every reference resolved to the given Symbol
// (matched by its defining identity: uri, kind, name, and identifier
// range), per §4.4's find_references_to contract. The defining site itself
// is included only when includeDeclaration is true, per §4.6.2.
func (s *Store) FindReferencesTo(ctx context.Context, target extractor.Symbol, includeDeclaration bool) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uri, start_line, start_char, end_line, end_char FROM refs
		WHERE resolved_uri = ? AND resolved_kind = ? AND resolved_name = ?
		  AND resolved_start_line = ? AND resolved_start_char = ?
		ORDER BY uri, start_line, start_char`,
		target.URI, string(target.Kind), target.Name, target.Range.Start.Line, target.Range.Start.Character)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.URI, &loc.Range.Start.Line, &loc.Range.Start.Character, &loc.Range.End.Line, &loc.Range.End.Character); err != nil {
			return nil, wrapDBError(err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err)
	}
	if includeDeclaration {
		out = append(out, Location{URI: target.URI, Range: target.Range})
	}
	return out, nil
}

// ResolveReference persists the resolved-symbol identity for every
// reference at the given URI/range, called by internal/scope after
// resolution so that FindReferencesTo can answer by a simple indexed query
// rather than re-resolving on every find-references call.
func (s *Store) ResolveReference(ctx context.Context, ref extractor.Reference, target extractor.Symbol) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		UPDATE refs SET resolved_uri = ?, resolved_kind = ?, resolved_name = ?, resolved_start_line = ?, resolved_start_char = ?
		WHERE uri = ? AND name = ? AND start_line = ? AND start_char = ?`,
		target.URI, string(target.Kind), target.Name, target.Range.Start.Line, target.Range.Start.Character,
		ref.URI, ref.Name, ref.Range.Start.Line, ref.Range.Start.Character,
	)
	return wrapDBError(err)
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT uri) FROM symbols")
	if err := row.Scan(&st.FileCount); err != nil && err != sql.ErrNoRows {
		return st, wrapDBError(err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols").Scan(&st.SymbolCount); err != nil {
		return st, wrapDBError(err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM imports").Scan(&st.ImportCount); err != nil {
		return st, wrapDBError(err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM refs").Scan(&st.ReferenceCount); err != nil {
		return st, wrapDBError(err)
	}
	return st, nil
}

const symbolColumns = `uri, kind, name, start_line, start_char, end_line, end_char,
	full_start_line, full_start_char, full_end_line, full_end_char,
	container, signature, doc_comment, exported`

func scanSymbols(rows *sql.Rows) ([]extractor.Symbol, error) {
	var out []extractor.Symbol
	for rows.Next() {
		var sym extractor.Symbol
		var kind string
		var exported int
		if err := rows.Scan(&sym.URI, &kind, &sym.Name,
			&sym.Range.Start.Line, &sym.Range.Start.Character, &sym.Range.End.Line, &sym.Range.End.Character,
			&sym.FullRange.Start.Line, &sym.FullRange.Start.Character, &sym.FullRange.End.Line, &sym.FullRange.End.Character,
			&sym.Container, &sym.Signature, &sym.DocComment, &exported); err != nil {
			return nil, wrapDBError(err)
		}
		sym.Kind = extractor.SymbolKind(kind)
		sym.Exported = exported != 0
		out = append(out, sym)
	}
	return out, wrapDBError(rows.Err())
}

func scanRefs(rows *sql.Rows) ([]extractor.Reference, error) {
	var out []extractor.Reference
	for rows.Next() {
		var r extractor.Reference
		if err := rows.Scan(&r.URI, &r.Name, &r.Qualifier,
			&r.Range.Start.Line, &r.Range.Start.Character, &r.Range.End.Line, &r.Range.End.Character); err != nil {
			return nil, wrapDBError(err)
		}
		out = append(out, r)
	}
	return out, wrapDBError(rows.Err())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinExposing(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}

func splitExposing(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

// wrapDBError annotates a driver error with the component that produced it,
// the same wrap-don't-swallow convention dekarrin-tunaq's sqlite.go uses
// around every database/sql call.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("symbol index: %w", err)
}

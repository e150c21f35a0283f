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
package symbolindex_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/symbolindex"
)

func openTestStore(t *testing.T) *symbolindex.Store {
	t.Helper()
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestReplaceFileAndFindExact(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	uri := "file:///Main.gren"
	f := gren.Parse("module Main exposing (greeting)\n\ngreeting = \"hi\"\n", nil)
	symbols, imports, refs := extractor.Extract(f, uri)
	require.NoError(t, store.ReplaceFile(ctx, uri, symbols, imports, refs))

	found, err := store.FindExact(ctx, "greeting")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, uri, found[0].URI)
}

func TestReplaceFileIsIdempotentPerURI(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	uri := "file:///Main.gren"

	f1 := gren.Parse("module Main exposing (a)\n\na = 1\n", nil)
	s1, i1, r1 := extractor.Extract(f1, uri)
	require.NoError(t, store.ReplaceFile(ctx, uri, s1, i1, r1))

	f2 := gren.Parse("module Main exposing (b)\n\nb = 2\n", nil)
	s2, i2, r2 := extractor.Extract(f2, uri)
	require.NoError(t, store.ReplaceFile(ctx, uri, s2, i2, r2))

	_, err := store.FindExact(ctx, "a")
	require.NoError(t, err)
	stillThere, err := store.SymbolsInFile(ctx, uri)
	require.NoError(t, err)
	var names []string
	for _, s := range stillThere {
		names = append(names, s.Name)
	}
	require.Contains(t, names, "b")
	require.NotContains(t, names, "a", "a stale row from the prior version of this file must not survive ReplaceFile")
}

func TestPurgeRemovesAllRowsForURI(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	uri := "file:///Main.gren"

	f := gren.Parse("module Main exposing (a)\n\na = 1\n", nil)
	s, i, r := extractor.Extract(f, uri)
	require.NoError(t, store.ReplaceFile(ctx, uri, s, i, r))

	require.NoError(t, store.Purge(ctx, uri))

	symbols, err := store.SymbolsInFile(ctx, uri)
	require.NoError(t, err)
	require.Empty(t, symbols)
}

func TestFindByNameSubstringMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	uri := "file:///Main.gren"

	f := gren.Parse("module Main exposing (..)\n\ncomputeTotal = 1\n\ncomputeAverage = 2\n", nil)
	s, i, r := extractor.Extract(f, uri)
	require.NoError(t, store.ReplaceFile(ctx, uri, s, i, r))

	matches, err := store.FindByName(ctx, "compute")
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestFindByNameIsCaseSensitive(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	uri := "file:///Main.gren"

	f := gren.Parse("module Main exposing (..)\n\ncomputeTotal = 1\n", nil)
	s, i, r := extractor.Extract(f, uri)
	require.NoError(t, store.ReplaceFile(ctx, uri, s, i, r))

	matches, err := store.FindByName(ctx, "Compute")
	require.NoError(t, err)
	require.Empty(t, matches)

	matches, err = store.FindByName(ctx, "compute")
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestFindReferencesToIncludesOrExcludesDeclaration(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	defURI := "file:///Main.gren"
	f := gren.Parse("module Main exposing (greeting)\n\ngreeting = \"hi\"\n", nil)
	defSymbols, defImports, defRefs := extractor.Extract(f, defURI)
	require.NoError(t, store.ReplaceFile(ctx, defURI, defSymbols, defImports, defRefs))

	useURI := "file:///Other.gren"
	fu := gren.Parse("module Other exposing (..)\n\nimport Main exposing (greeting)\n\ny =\n    greeting\n", nil)
	useSymbols, useImports, useRefs := extractor.Extract(fu, useURI)
	require.NoError(t, store.ReplaceFile(ctx, useURI, useSymbols, useImports, useRefs))

	var target extractor.Symbol
	for _, s := range defSymbols {
		if s.Name == "greeting" {
			target = s
		}
	}
	require.NotEmpty(t, target.Name)

	withDecl, err := store.FindReferencesTo(ctx, target, true)
	require.NoError(t, err)
	withoutDecl, err := store.FindReferencesTo(ctx, target, false)
	require.NoError(t, err)
	require.Greater(t, len(withDecl), len(withoutDecl))
}

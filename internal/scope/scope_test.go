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
package scope_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
)

func openIndex(t *testing.T) *symbolindex.Store {
	t.Helper()
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func indexSource(t *testing.T, store *symbolindex.Store, uri, src string) ([]extractor.Symbol, []extractor.Import, []extractor.Reference) {
	t.Helper()
	f := gren.Parse(src, nil)
	symbols, imports, refs := extractor.Extract(f, uri)
	require.NoError(t, store.ReplaceFile(context.Background(), uri, symbols, imports, refs))
	return symbols, imports, refs
}

func TestResolveLocalDeclaration(t *testing.T) {
	store := openIndex(t)
	uri := "file:///Main.gren"
	src := "module Main exposing (greeting)\n\ngreeting = \"hi\"\n"
	symbols, imports, refs := indexSource(t, store, uri, src)

	resolver := scope.New(store)
	// The declaration site of "greeting" itself.
	pos := rope.Position{Line: 2, Character: 1}
	result, err := resolver.Resolve(context.Background(), uri, pos, refs, symbols, imports)
	require.NoError(t, err)
	require.NotNil(t, result.Resolved)
	require.Equal(t, scope.LocalityLocal, result.Resolved.Locality)
	require.Equal(t, "greeting", result.Resolved.Target.Name)
}

func TestResolveImportedExposedName(t *testing.T) {
	store := openIndex(t)
	indexSource(t, store, "file:///Helpers.gren", "module Helpers exposing (helper)\n\nhelper = 1\n")

	uri := "file:///Main.gren"
	src := "module Main exposing (..)\n\nimport Helpers exposing (helper)\n\nx =\n    helper\n"
	symbols, imports, refs := indexSource(t, store, uri, src)

	resolver := scope.New(store)
	var target *extractor.Reference
	for i := range refs {
		if refs[i].Name == "helper" && refs[i].Qualifier == "" {
			target = &refs[i]
		}
	}
	require.NotNil(t, target, "expected a reference to the unqualified use of helper")

	result, err := resolver.Resolve(context.Background(), uri, target.Range.Start, refs, symbols, imports)
	require.NoError(t, err)
	require.NotNil(t, result.Resolved)
	require.Equal(t, scope.LocalityImported, result.Resolved.Locality)
	require.Equal(t, "file:///Helpers.gren", result.Resolved.Target.URI)
}

func TestResolveKernelQualifierIsAlwaysUnresolved(t *testing.T) {
	store := openIndex(t)
	uri := "file:///Main.gren"
	src := "module Main exposing (..)\n\nx =\n    Gren.Kernel.Basics.add 1 2\n"
	symbols, imports, refs := indexSource(t, store, uri, src)

	resolver := scope.New(store)
	var target *extractor.Reference
	for i := range refs {
		if refs[i].Qualifier != "" {
			target = &refs[i]
		}
	}
	require.NotNil(t, target)

	result, err := resolver.Resolve(context.Background(), uri, target.Range.Start, refs, symbols, imports)
	require.NoError(t, err)
	require.True(t, result.Unresolved)
	require.Nil(t, result.Resolved)
}

func TestResolveNotAName(t *testing.T) {
	store := openIndex(t)
	uri := "file:///Main.gren"
	symbols, imports, refs := indexSource(t, store, uri, "module Main exposing (..)\n\nx = 1\n")

	resolver := scope.New(store)
	result, err := resolver.Resolve(context.Background(), uri, rope.Position{Line: 0, Character: 0}, refs, symbols, imports)
	require.NoError(t, err)
	require.True(t, result.NotAName)
}

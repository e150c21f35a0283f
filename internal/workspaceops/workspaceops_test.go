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
package workspaceops_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/rename"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
	"gren-lsp.dev/server/internal/workspaceops"
)

func TestPathToModuleNameRoundTrip(t *testing.T) {
	require.Equal(t, "Foo.Bar", workspaceops.PathToModuleName("src/Foo/Bar.gren"))
	require.Equal(t, "src/Foo/Bar.gren", workspaceops.ModuleNameToPath("Foo.Bar"))
}

func TestPlanFileRenameRewritesModuleDeclarationAndImporters(t *testing.T) {
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	oldURI := "file:///root/src/Foo.gren"
	oldSrc := "module Foo exposing (x)\n\nx = 1\n"
	f := gren.Parse(oldSrc, nil)
	symbols, imports, refs := extractor.Extract(f, oldURI)
	require.NoError(t, store.ReplaceFile(ctx, oldURI, symbols, imports, refs))

	importerURI := "file:///root/src/Bar.gren"
	importerSrc := "module Bar exposing (..)\n\nimport Foo exposing (x)\n"
	fi := gren.Parse(importerSrc, nil)
	iSymbols, iImports, iRefs := extractor.Extract(fi, importerURI)
	require.NoError(t, store.ReplaceFile(ctx, importerURI, iSymbols, iImports, iRefs))

	resolver := scope.New(store)
	planner := rename.New(store, resolver)

	newURI := "file:///root/src/Baz.gren"
	relPath := func(uri string) (string, error) {
		return strings.TrimPrefix(uri, "file:///root/"), nil
	}

	edit, err := workspaceops.PlanFileRename(ctx, store, planner, []workspaceops.RenameFile{
		{OldURI: oldURI, NewURI: newURI},
	}, relPath)
	require.NoError(t, err)
	require.NotNil(t, edit)
	require.Contains(t, edit.Changes, oldURI)
	require.Equal(t, "Baz", edit.Changes[oldURI][0].NewText)
}

func TestPlanFileRenameNoOpWhenModuleNameUnchanged(t *testing.T) {
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	resolver := scope.New(store)
	planner := rename.New(store, resolver)

	relPath := func(uri string) (string, error) {
		return strings.TrimPrefix(uri, "file:///root/"), nil
	}

	edit, err := workspaceops.PlanFileRename(context.Background(), store, planner, []workspaceops.RenameFile{
		{OldURI: "file:///root/src/Foo.gren", NewURI: "file:///root/src/Foo.gren"},
	}, relPath)
	require.NoError(t, err)
	require.Nil(t, edit)
}

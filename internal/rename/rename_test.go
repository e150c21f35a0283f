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
package rename_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/rename"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/internal/scope"
	"gren-lsp.dev/server/internal/symbolindex"
)

func TestValidateNameRejectsBadNames(t *testing.T) {
	require.Error(t, rename.ValidateName(""))
	require.Error(t, rename.ValidateName("1abc"))
	require.Error(t, rename.ValidateName("has space"))
	require.Error(t, rename.ValidateName("bad-name"))
	require.Error(t, rename.ValidateName("case"))
	require.NoError(t, rename.ValidateName("validName_1"))
}

func TestPlanRenamesAllReferences(t *testing.T) {
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	defURI := "file:///Main.gren"
	defSrc := "module Main exposing (greeting)\n\ngreeting = \"hi\"\n"
	defFile := gren.Parse(defSrc, nil)
	defSymbols, defImports, defRefs := extractor.Extract(defFile, defURI)
	require.NoError(t, store.ReplaceFile(ctx, defURI, defSymbols, defImports, defRefs))

	useURI := "file:///Other.gren"
	useSrc := "module Other exposing (..)\n\nimport Main exposing (greeting)\n\ny =\n    greeting\n"
	useFile := gren.Parse(useSrc, nil)
	useSymbols, useImports, useRefs := extractor.Extract(useFile, useURI)
	require.NoError(t, store.ReplaceFile(ctx, useURI, useSymbols, useImports, useRefs))

	resolver := scope.New(store)
	planner := rename.New(store, resolver)

	edit, err := planner.Plan(ctx, defURI, rope.Position{Line: 2, Character: 1}, "salutation", defRefs, defSymbols, defImports)
	require.NoError(t, err)
	require.NotNil(t, edit)

	require.Contains(t, edit.Changes, defURI)
	require.Contains(t, edit.Changes, useURI)
	for _, edits := range edit.Changes {
		for _, e := range edits {
			require.Equal(t, "salutation", e.NewText)
		}
	}
}

func TestPlanRejectsInvalidNewName(t *testing.T) {
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	resolver := scope.New(store)
	planner := rename.New(store, resolver)

	_, err = planner.Plan(context.Background(), "file:///Main.gren", rope.Position{Line: 0, Character: 0}, "1bad", nil, nil, nil)
	require.Error(t, err)
}

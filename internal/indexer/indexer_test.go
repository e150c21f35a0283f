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
package indexer_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/indexer"
	"gren-lsp.dev/server/internal/platform"
	"gren-lsp.dev/server/internal/symbolindex"
)

func TestWalkIndexesGrenFilesExcludingPackageCache(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"root/src/Main.gren":             "module Main exposing (x)\n\nx = 1\n",
		"root/src/Helper.gren":           "module Helper exposing (y)\n\ny = 2\n",
		"root/gren_packages/Dep/Pkg.gren": "module Dep.Pkg exposing (z)\n\nz = 3\n",
		"root/README.md":                 "not gren source",
	})
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ix := indexer.New(fs)
	indexed, failed := ix.Walk(context.Background(), "root", store)

	require.Equal(t, 2, indexed)
	require.Equal(t, 0, failed)

	found, err := store.FindExact(context.Background(), "z")
	require.NoError(t, err)
	require.Empty(t, found, "gren_packages must be excluded from the workspace walk")

	found, err = store.FindExact(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestIndexFileAndRemoveFile(t *testing.T) {
	fs := platform.NewMapFS(map[string]string{
		"root/src/Main.gren": "module Main exposing (x)\n\nx = 1\n",
	})
	store, err := symbolindex.Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ix := indexer.New(fs)
	ctx := context.Background()

	require.True(t, ix.IndexFile(ctx, "root/src/Main.gren", store))
	found, err := store.FindExact(ctx, "x")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, ix.RemoveFile(ctx, "root/src/Main.gren", store))
	found, err = store.FindExact(ctx, "x")
	require.NoError(t, err)
	require.Empty(t, found)
}

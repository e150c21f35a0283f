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
package completion_test

import (
	"context"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/lsp"
	"gren-lsp.dev/server/lsp/methods/textDocument/completion"
)

func newTestServer(t *testing.T) *lsp.Server {
	t.Helper()
	ws := workspace.NewContext(t.TempDir())
	s, err := lsp.NewServer(ws, lsp.TransportStdio, lsp.CompilerOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func indexSource(t *testing.T, s *lsp.Server, uri, src string) {
	t.Helper()
	f := gren.Parse(src, nil)
	symbols, imports, refs := extractor.Extract(f, uri)
	require.NoError(t, s.Index().ReplaceFile(context.Background(), uri, symbols, imports, refs))
}

func TestCompletionUnqualifiedOffersLocalAndImportedNames(t *testing.T) {
	s := newTestServer(t)

	depURI := "file:///root/src/Dep.gren"
	depSrc := "module Dep exposing (computeTotal)\n\ncomputeTotal =\n    1\n"
	indexSource(t, s, depURI, depSrc)

	uri := "file:///root/src/Main.gren"
	src := "module Main exposing (..)\n\nimport Dep exposing (computeTotal)\n\ncomputeLocal =\n    1\n\nuseIt =\n    comp\n"
	s.Documents().Open(uri, src, 1)

	params := &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 7, Character: 8},
		},
	}

	result, err := completion.Completion(s, nil, params)
	require.NoError(t, err)
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)

	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	require.Contains(t, labels, "computeLocal")
	require.Contains(t, labels, "computeTotal")
}

func TestCompletionQualifiedOffersOnlyExportedModuleMembers(t *testing.T) {
	s := newTestServer(t)

	depURI := "file:///root/src/Dep.gren"
	depSrc := "module Dep exposing (publicFn)\n\npublicFn =\n    1\n\nprivateFn =\n    2\n"
	indexSource(t, s, depURI, depSrc)

	uri := "file:///root/src/Main.gren"
	src := "module Main exposing (..)\n\nimport Dep\n\nuseIt =\n    Dep.pub\n"
	s.Documents().Open(uri, src, 1)

	params := &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 5, Character: 11},
		},
	}

	result, err := completion.Completion(s, nil, params)
	require.NoError(t, err)
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok)
	require.Len(t, items, 1)
	require.Equal(t, "publicFn", items[0].Label)
}

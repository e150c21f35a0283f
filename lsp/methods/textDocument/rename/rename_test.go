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
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/gren"
	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/lsp"
	"gren-lsp.dev/server/lsp/methods/textDocument/rename"
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

func TestRenameProducesWorkspaceEditAcrossFiles(t *testing.T) {
	s := newTestServer(t)

	defURI := "file:///root/src/Main.gren"
	defSrc := "module Main exposing (greeting)\n\ngreeting =\n    \"hi\"\n"
	indexSource(t, s, defURI, defSrc)
	s.Documents().Open(defURI, defSrc, 1)

	useURI := "file:///root/src/Other.gren"
	useSrc := "module Other exposing (..)\n\nimport Main exposing (greeting)\n\ny =\n    greeting\n"
	indexSource(t, s, useURI, useSrc)

	params := &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: defURI},
			Position:     protocol.Position{Line: 2, Character: 1},
		},
		NewName: "salutation",
	}

	edit, err := rename.Rename(s, nil, params)
	require.NoError(t, err)
	require.NotNil(t, edit)
	require.Contains(t, edit.Changes, defURI)
	require.Contains(t, edit.Changes, useURI)
}

func TestRenameRejectsInvalidNewName(t *testing.T) {
	s := newTestServer(t)

	uri := "file:///root/src/Main.gren"
	src := "module Main exposing (greeting)\n\ngreeting =\n    \"hi\"\n"
	s.Documents().Open(uri, src, 1)

	params := &protocol.RenameParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: 2, Character: 1},
		},
		NewName: "1bad",
	}

	_, err := rename.Rename(s, nil, params)
	require.Error(t, err)
}

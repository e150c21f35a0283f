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
package definition_test

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/lsp"
	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/lsp/methods/textDocument/definition"
)

func newTestServer(t *testing.T) *lsp.Server {
	t.Helper()
	ws := workspace.NewContext(t.TempDir())
	s, err := lsp.NewServer(ws, lsp.TransportStdio, lsp.CompilerOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefinitionResolvesLocalDeclaration(t *testing.T) {
	s := newTestServer(t)

	defURI := "file:///root/src/Main.gren"
	src := "module Main exposing (greeting)\n\ngreeting =\n    \"hi\"\n\nuseIt =\n    greeting\n"
	s.Documents().Open(defURI, src, 1)

	params := &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: defURI},
			Position:     protocol.Position{Line: 6, Character: 4},
		},
	}

	result, err := definition.Definition(s, nil, params)
	require.NoError(t, err)
	require.NotNil(t, result)

	loc, ok := result.(protocol.Location)
	require.True(t, ok)
	require.Equal(t, defURI, loc.URI)
	require.Equal(t, uint32(2), loc.Range.Start.Line)
}

func TestDefinitionReturnsNilForUnopenedDocument(t *testing.T) {
	s := newTestServer(t)

	params := &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///root/src/Missing.gren"},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	}

	result, err := definition.Definition(s, nil, params)
	require.NoError(t, err)
	require.Nil(t, result)
}

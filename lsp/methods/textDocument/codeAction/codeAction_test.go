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
package codeAction_test

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/require"

	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/lsp"
	"gren-lsp.dev/server/lsp/methods/textDocument/codeAction"
)

func newTestServer(t *testing.T) *lsp.Server {
	t.Helper()
	ws := workspace.NewContext(t.TempDir())
	s, err := lsp.NewServer(ws, lsp.TransportStdio, lsp.CompilerOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCodeActionSurfacesOverlappingGrenDiagnostics(t *testing.T) {
	s := newTestServer(t)

	source := "gren"
	requestedRange := protocol.Range{
		Start: protocol.Position{Line: 3, Character: 0},
		End:   protocol.Position{Line: 3, Character: 10},
	}

	params := &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///root/src/Main.gren"},
		Range:        requestedRange,
		Context: protocol.CodeActionContext{
			Diagnostics: []protocol.Diagnostic{
				{
					Range:   protocol.Range{Start: protocol.Position{Line: 3, Character: 2}, End: protocol.Position{Line: 3, Character: 5}},
					Source:  &source,
					Message: "NAMING ERROR: `foo` is not defined",
				},
				{
					Range:   protocol.Range{Start: protocol.Position{Line: 99, Character: 0}, End: protocol.Position{Line: 99, Character: 1}},
					Source:  &source,
					Message: "unrelated, out of range",
				},
			},
		},
	}

	result, err := codeAction.CodeAction(s, nil, params)
	require.NoError(t, err)
	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok)
	require.Len(t, actions, 1)
	require.Contains(t, actions[0].Title, "NAMING ERROR")
}

func TestCodeActionIgnoresNonGrenDiagnostics(t *testing.T) {
	s := newTestServer(t)

	otherSource := "eslint"
	params := &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///root/src/Main.gren"},
		Range:        protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 0, Character: 1}},
		Context: protocol.CodeActionContext{
			Diagnostics: []protocol.Diagnostic{
				{Range: protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 0, Character: 1}}, Source: &otherSource, Message: "whatever"},
			},
		},
	}

	result, err := codeAction.CodeAction(s, nil, params)
	require.NoError(t, err)
	actions, ok := result.([]protocol.CodeAction)
	require.True(t, ok)
	require.Empty(t, actions)
}

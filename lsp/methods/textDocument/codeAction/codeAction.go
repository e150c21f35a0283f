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
package codeAction

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/diagnostics"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// CodeAction handles textDocument/codeAction requests. Per §4.6.8, only
// compiler-suggested fixes embedded in diagnostics are surfaced; no
// independent refactorings are offered.
func CodeAction(ctx types.ServerContext, context *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[CODE_ACTION] Request for %s", uri)

	var actions []protocol.CodeAction
	for _, d := range params.Context.Diagnostics {
		if d.Source == nil || *d.Source != "gren" {
			continue
		}
		if !diagnostics.RangesOverlap(d.Range, params.Range) {
			continue
		}
		kind := protocol.CodeActionKindQuickFix
		diag := d
		actions = append(actions, protocol.CodeAction{
			Title:       "Gren: " + d.Message,
			Kind:        &kind,
			Diagnostics: []protocol.Diagnostic{diag},
		})
	}
	return actions, nil
}

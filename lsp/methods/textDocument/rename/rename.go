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
package rename

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Rename handles textDocument/rename requests, delegating to the Rename
// Planner (§4.7) for validation, resolution and WorkspaceEdit construction.
func Rename(ctx types.ServerContext, context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[RENAME] Request for %s at %d:%d -> %q", uri, params.Position.Line, params.Position.Character, params.NewName)

	doc := ctx.Documents().Get(uri)
	if doc == nil {
		return nil, nil
	}
	symbols, imports, refs := doc.Extracted()
	position := rope.Position{Line: params.Position.Line, Character: params.Position.Character}

	edit, err := ctx.RenamePlanner().Plan(ctx.RequestContext(), uri, position, params.NewName, refs, symbols, imports)
	if err != nil {
		helpers.SafeDebugLog("[RENAME] rejected: %v", err)
		return nil, err
	}
	return edit, nil
}

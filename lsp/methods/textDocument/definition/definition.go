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
package definition

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Definition handles textDocument/definition requests, per §4.6.1: resolve
// the name at the cursor and return its identifier range as a single
// Location, or null if unresolved or not a name. Never a list of
// candidates — Gren's determinism forbids ambiguity.
func Definition(ctx types.ServerContext, context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[DEFINITION] Request for %s at %d:%d", uri, params.Position.Line, params.Position.Character)

	doc := ctx.Documents().Get(uri)
	if doc == nil {
		return nil, nil
	}
	symbols, imports, refs := doc.Extracted()
	position := rope.Position{Line: params.Position.Line, Character: params.Position.Character}

	result, err := ctx.Resolver().Resolve(ctx.RequestContext(), uri, position, refs, symbols, imports)
	if err != nil {
		return nil, err
	}
	if result.Resolved == nil {
		helpers.SafeDebugLog("[DEFINITION] no resolution at %d:%d", params.Position.Line, params.Position.Character)
		return nil, nil
	}

	target := result.Resolved.Target
	return protocol.Location{
		URI: target.URI,
		Range: protocol.Range{
			Start: protocol.Position{Line: target.Range.Start.Line, Character: target.Range.Start.Character},
			End:   protocol.Position{Line: target.Range.End.Line, Character: target.Range.End.Character},
		},
	}, nil
}

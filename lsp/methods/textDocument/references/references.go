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
package references

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/internal/symbolindex"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// References handles textDocument/references requests, per §4.6.2: resolve
// the symbol at the cursor; if unresolved, return null rather than falling
// back to textual search. Otherwise return every reference to the target,
// plus the defining site when includeDeclaration is requested, sorted by
// (URI, start-line, start-character).
func References(ctx types.ServerContext, context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[REFERENCES] Request for %s at %d:%d", uri, params.Position.Line, params.Position.Character)

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
		helpers.SafeDebugLog("[REFERENCES] no resolution at %d:%d", params.Position.Line, params.Position.Character)
		return nil, nil
	}

	includeDeclaration := params.Context.IncludeDeclaration
	locs, err := ctx.Index().FindReferencesTo(ctx.RequestContext(), result.Resolved.Target, includeDeclaration)
	if err != nil {
		return nil, err
	}

	sort.Slice(locs, func(i, j int) bool {
		if locs[i].URI != locs[j].URI {
			return locs[i].URI < locs[j].URI
		}
		if locs[i].Range.Start.Line != locs[j].Range.Start.Line {
			return locs[i].Range.Start.Line < locs[j].Range.Start.Line
		}
		return locs[i].Range.Start.Character < locs[j].Range.Start.Character
	})

	return toProtocolLocations(locs), nil
}

func toProtocolLocations(locs []symbolindex.Location) []protocol.Location {
	out := make([]protocol.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, protocol.Location{
			URI: l.URI,
			Range: protocol.Range{
				Start: protocol.Position{Line: l.Range.Start.Line, Character: l.Range.Start.Character},
				End:   protocol.Position{Line: l.Range.End.Line, Character: l.Range.End.Character},
			},
		})
	}
	return out
}

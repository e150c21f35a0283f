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
package symbol

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Symbol handles workspace/symbol requests, per §4.6.5: every symbol whose
// name contains the query (case-sensitive substring; empty query returns
// all), carrying a container name for constructors (their parent type) and
// ordinary symbols (their defining module).
func Symbol(ctx types.ServerContext, context *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	helpers.SafeDebugLog("[WORKSPACE_SYMBOL] Request for query: %q", params.Query)

	matches, err := ctx.Index().FindByName(ctx.RequestContext(), params.Query)
	if err != nil {
		return nil, err
	}

	result := make([]protocol.SymbolInformation, 0, len(matches))
	for _, s := range matches {
		if !strings.Contains(s.Name, params.Query) {
			continue
		}
		container := s.Container
		if container == "" {
			container = moduleNameOf(ctx, s.URI)
		}
		result = append(result, protocol.SymbolInformation{
			Name:          s.Name,
			Kind:          symbolKind(s.Kind),
			ContainerName: &container,
			Location: protocol.Location{
				URI: s.URI,
				Range: protocol.Range{
					Start: protocol.Position{Line: s.Range.Start.Line, Character: s.Range.Start.Character},
					End:   protocol.Position{Line: s.Range.End.Line, Character: s.Range.End.Character},
				},
			},
		})
	}

	helpers.SafeDebugLog("[WORKSPACE_SYMBOL] Returning %d symbols for query %q", len(result), params.Query)
	return result, nil
}

func moduleNameOf(ctx types.ServerContext, uri string) string {
	symbols, err := ctx.Index().SymbolsInFile(ctx.RequestContext(), uri)
	if err != nil {
		return ""
	}
	for _, s := range symbols {
		if s.Kind == extractor.KindModule {
			return s.Name
		}
	}
	return ""
}

func symbolKind(k extractor.SymbolKind) protocol.SymbolKind {
	switch k {
	case extractor.KindModule:
		return protocol.SymbolKindModule
	case extractor.KindType:
		return protocol.SymbolKindEnum
	case extractor.KindTypeAlias:
		return protocol.SymbolKindStruct
	case extractor.KindConstructor:
		return protocol.SymbolKindEnumMember
	case extractor.KindFunction:
		return protocol.SymbolKindFunction
	case extractor.KindField:
		return protocol.SymbolKindField
	case extractor.KindPort:
		return protocol.SymbolKindInterface
	default:
		return protocol.SymbolKindVariable
	}
}

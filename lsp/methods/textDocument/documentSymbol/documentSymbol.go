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
package documentSymbol

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// DocumentSymbol handles textDocument/documentSymbol requests, returning
// the outline of one file: every declaration the extractor found, with
// constructors nested under their union type per §4.6.4.
func DocumentSymbol(ctx types.ServerContext, context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[DOCUMENT_SYMBOL] Request for %s", uri)

	doc := ctx.Documents().Get(uri)
	if doc == nil {
		return []protocol.DocumentSymbol{}, nil
	}

	symbols, _, _ := doc.Extracted()
	return buildOutline(symbols), nil
}

// buildOutline groups constructors under their declaring union type and
// returns every other symbol at the top level, matching the nesting a
// client's outline view expects.
func buildOutline(symbols []extractor.Symbol) []protocol.DocumentSymbol {
	byContainer := map[string][]extractor.Symbol{}
	for _, s := range symbols {
		if s.Kind == extractor.KindConstructor && s.Container != "" {
			byContainer[s.Container] = append(byContainer[s.Container], s)
		}
	}

	var top []extractor.Symbol
	for _, s := range symbols {
		if s.Kind == extractor.KindConstructor {
			continue
		}
		top = append(top, s)
	}
	top = dedupeSymbols(top)

	out := make([]protocol.DocumentSymbol, 0, len(top))
	for _, s := range top {
		sym := toDocumentSymbol(s)
		if children, ok := byContainer[s.Name]; ok && s.Kind == extractor.KindType {
			for _, c := range dedupeSymbols(children) {
				sym.Children = append(sym.Children, toDocumentSymbol(c))
			}
		}
		out = append(out, sym)
	}
	return out
}

// dedupeSymbols enforces §4.6.4's "a (kind, name) must appear once" rule,
// keeping source order and, on collision, preferring the entry with the
// shorter (simpler) signature text.
func dedupeSymbols(symbols []extractor.Symbol) []extractor.Symbol {
	type key struct {
		kind extractor.SymbolKind
		name string
	}
	index := map[key]int{}
	var out []extractor.Symbol
	for _, s := range symbols {
		k := key{kind: s.Kind, name: s.Name}
		if i, dup := index[k]; dup {
			if len(s.Signature) < len(out[i].Signature) {
				out[i] = s
			}
			continue
		}
		index[k] = len(out)
		out = append(out, s)
	}
	return out
}

func toDocumentSymbol(s extractor.Symbol) protocol.DocumentSymbol {
	detail := s.Signature
	return protocol.DocumentSymbol{
		Name:           s.Name,
		Detail:         &detail,
		Kind:           symbolKind(s.Kind),
		Range:          toProtocolRange(s.FullRange),
		SelectionRange: toProtocolRange(s.Range),
	}
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

func toProtocolRange(r rope.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

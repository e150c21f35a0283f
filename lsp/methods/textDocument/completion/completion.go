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
package completion

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Completion handles textDocument/completion requests, per §4.6.6:
// unqualified completion offers every name in scope (local declarations
// plus everything exposed by the file's imports); qualified completion
// (after "Module.") offers only that module's exported names.
func Completion(ctx types.ServerContext, context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[COMPLETION] Request for %s at %d:%d", uri, params.Position.Line, params.Position.Character)

	doc := ctx.Documents().Get(uri)
	if doc == nil {
		return []protocol.CompletionItem{}, nil
	}

	symbols, imports, _ := doc.Extracted()
	pos := rope.Position{Line: params.Position.Line, Character: params.Position.Character}
	qualifier, prefix := qualifierAndPrefix(doc.Text(), pos)

	if qualifier != "" {
		return qualifiedItems(ctx, imports, qualifier, prefix), nil
	}
	return unqualifiedItems(ctx, symbols, imports, prefix), nil
}

// qualifierAndPrefix inspects the text immediately before position and
// splits it into an optional "Module." qualifier and the identifier prefix
// typed so far.
func qualifierAndPrefix(text string, pos rope.Position) (qualifier, prefix string) {
	line := lineAt(text, pos.Line)
	upto := line
	if int(pos.Character) <= len(line) {
		upto = line[:pos.Character]
	}
	idx := strings.LastIndexAny(upto, " \t(=,[")
	token := upto[idx+1:]
	if dot := strings.LastIndex(token, "."); dot >= 0 {
		return token[:dot], token[dot+1:]
	}
	return "", token
}

func lineAt(text string, n uint32) string {
	lines := strings.Split(text, "\n")
	if int(n) >= len(lines) {
		return ""
	}
	return lines[n]
}

func unqualifiedItems(ctx types.ServerContext, symbols []extractor.Symbol, imports []extractor.Import, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	seen := map[string]bool{}
	for _, s := range symbols {
		if s.Kind == extractor.KindModule || !strings.HasPrefix(s.Name, prefix) {
			continue
		}
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		items = append(items, toCompletionItem(s))
	}

	for _, imp := range imports {
		if imp.ExposingAll {
			continue
		}
		for _, name := range imp.Exposing {
			if !strings.HasPrefix(name, prefix) || seen[name] {
				continue
			}
			candidates, err := ctx.Index().FindExact(ctx.RequestContext(), name)
			if err != nil {
				continue
			}
			for _, c := range candidates {
				if c.URI != importModuleURI(ctx, imp.ModuleName) {
					continue
				}
				seen[name] = true
				items = append(items, toCompletionItem(c))
			}
		}
	}
	return items
}

func qualifiedItems(ctx types.ServerContext, imports []extractor.Import, qualifier, prefix string) []protocol.CompletionItem {
	moduleName := ""
	for _, imp := range imports {
		if imp.Alias == qualifier || imp.ModuleName == qualifier {
			moduleName = imp.ModuleName
			break
		}
	}
	if moduleName == "" {
		return nil
	}
	moduleURI := importModuleURI(ctx, moduleName)
	if moduleURI == "" {
		return nil
	}
	fileSymbols, err := ctx.Index().SymbolsInFile(ctx.RequestContext(), moduleURI)
	if err != nil {
		return nil
	}
	var items []protocol.CompletionItem
	for _, s := range fileSymbols {
		if !s.Exported || s.Kind == extractor.KindModule || !strings.HasPrefix(s.Name, prefix) {
			continue
		}
		items = append(items, toCompletionItem(s))
	}
	return items
}

func importModuleURI(ctx types.ServerContext, moduleName string) string {
	candidates, err := ctx.Index().FindExact(ctx.RequestContext(), moduleName)
	if err != nil {
		return ""
	}
	for _, c := range candidates {
		if c.Kind == extractor.KindModule {
			return c.URI
		}
	}
	return ""
}

func toCompletionItem(s extractor.Symbol) protocol.CompletionItem {
	kind := completionKind(s.Kind)
	detail := s.Signature
	return protocol.CompletionItem{
		Label:  s.Name,
		Kind:   &kind,
		Detail: &detail,
	}
}

func completionKind(k extractor.SymbolKind) protocol.CompletionItemKind {
	switch k {
	case extractor.KindFunction:
		return protocol.CompletionItemKindFunction
	case extractor.KindType:
		return protocol.CompletionItemKindEnum
	case extractor.KindTypeAlias:
		return protocol.CompletionItemKindStruct
	case extractor.KindConstructor:
		return protocol.CompletionItemKindEnumMember
	case extractor.KindPort:
		return protocol.CompletionItemKindInterface
	case extractor.KindField:
		return protocol.CompletionItemKindField
	default:
		return protocol.CompletionItemKindVariable
	}
}

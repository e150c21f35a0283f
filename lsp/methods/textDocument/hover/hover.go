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
package hover

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/extractor"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// Hover handles textDocument/hover requests, per §4.6.3: resolve the
// symbol at the cursor and format its name, kind, signature, defining
// module, and doc-comment. Built-in/kernel names (unresolved per
// internal/scope's kernel-qualifier rule) return null.
func Hover(ctx types.ServerContext, context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	helpers.SafeDebugLog("[HOVER] Request for %s at %d:%d", uri, params.Position.Line, params.Position.Character)

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
		helpers.SafeDebugLog("[HOVER] no resolution at %d:%d", params.Position.Line, params.Position.Character)
		return nil, nil
	}

	kind := ctx.HoverMarkupKind()
	moduleName := moduleNameOf(ctx, result.Resolved.Target.URI)
	content := formatHover(result.Resolved.Target, moduleName, kind)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: kind, Value: content},
	}, nil
}

// moduleNameOf looks up the module declaration symbol recorded for uri,
// falling back to the URI itself if the file has none indexed yet.
func moduleNameOf(ctx types.ServerContext, uri string) string {
	symbols, err := ctx.Index().SymbolsInFile(ctx.RequestContext(), uri)
	if err != nil {
		return uri
	}
	for _, s := range symbols {
		if s.Kind == extractor.KindModule {
			return s.Name
		}
	}
	return uri
}

func formatHover(s extractor.Symbol, moduleName string, kind protocol.MarkupKind) string {
	var b strings.Builder
	if kind == protocol.MarkupKindMarkdown {
		fmt.Fprintf(&b, "**%s** _(%s)_\n\n", s.Name, s.Kind)
		if s.Signature != "" {
			fmt.Fprintf(&b, "```gren\n%s\n```\n\n", s.Signature)
		}
		fmt.Fprintf(&b, "defined in `%s`\n", moduleName)
		if s.DocComment != "" {
			fmt.Fprintf(&b, "\n%s\n", s.DocComment)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s (%s)\n", s.Name, s.Kind)
	if s.Signature != "" {
		fmt.Fprintf(&b, "%s\n", s.Signature)
	}
	fmt.Fprintf(&b, "defined in %s\n", moduleName)
	if s.DocComment != "" {
		fmt.Fprintf(&b, "\n%s\n", s.DocComment)
	}
	return b.String()
}

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
package publishDiagnostics

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gren-lsp.dev/server/internal/compiler"
	"gren-lsp.dev/server/internal/diagnostics"
	"gren-lsp.dev/server/internal/rope"
	"gren-lsp.dev/server/internal/workspace"
	"gren-lsp.dev/server/internal/workspaceops"
	"gren-lsp.dev/server/lsp/helpers"
	"gren-lsp.dev/server/lsp/types"
)

// PublishDiagnostics reparses uri's document for syntax errors, runs the
// Compiler Driver for semantic diagnostics, merges the two per §4.9
// (syntax wins on overlap), and publishes the result.
func PublishDiagnostics(ctx types.ServerContext, glspContext *glsp.Context, uri string) error {
	doc := ctx.Documents().Get(uri)
	if doc == nil {
		helpers.SafeDebugLog("[DIAGNOSTICS] no open document for %s", uri)
		return nil
	}

	var syntax []diagnostics.Diagnostic
	for _, e := range doc.ParseErrors() {
		syntax = append(syntax, diagnostics.Diagnostic{
			Range:    toProtocolRange(e.Range),
			Severity: protocol.DiagnosticSeverityError,
			Source:   "syntax",
			Message:  e.Message,
		})
	}

	semantic := compileSemanticDiagnostics(ctx, uri, doc.Text())

	merged := diagnostics.Merge(syntax, semantic)
	protoDiags := make([]protocol.Diagnostic, 0, len(merged))
	for _, d := range merged {
		protoDiags = append(protoDiags, diagnostics.ToProtocol(d))
	}

	helpers.SafeDebugLog("[DIAGNOSTICS] publishing %d diagnostics for %s", len(protoDiags), uri)
	glspContext.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: protoDiags,
	})
	return nil
}

// compileSemanticDiagnostics invokes the compiler driver with the open
// document staged over its on-disk counterpart, per §4.8. Any driver error
// (missing compiler binary, timeout) is logged and treated as "no semantic
// diagnostics" rather than failing the notification.
func compileSemanticDiagnostics(ctx types.ServerContext, uri, content string) []diagnostics.Diagnostic {
	drv := ctx.Compiler()
	root := ctx.WorkspaceRoot()
	if drv == nil || root == "" {
		return nil
	}

	relPath, ok := relativeSourcePath(root, uri)
	if !ok {
		return nil
	}
	moduleName := workspaceops.PathToModuleName(relPath)

	result, err := drv.Compile(ctx.RequestContext(), root, moduleName, []compiler.Override{
		{RelPath: relPath, Content: content},
	})
	if err != nil {
		helpers.SafeDebugLog("[DIAGNOSTICS] compiler invocation failed for %s: %v", uri, err)
		return nil
	}

	out := make([]diagnostics.Diagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		if d.Path != relPath {
			continue
		}
		out = append(out, diagnostics.Diagnostic{
			Range:    d.Range,
			Severity: d.Severity,
			Source:   "gren",
			Message:  d.Message,
		})
	}
	return out
}

func relativeSourcePath(root, uri string) (string, bool) {
	p := workspace.URIToPath(uri)
	rootPrefix := workspace.URIToPath(workspace.PathToURI(root))
	rel := strings.TrimPrefix(p, rootPrefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == p {
		return "", false
	}
	return rel, true
}

func toProtocolRange(r rope.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   protocol.Position{Line: r.End.Line, Character: r.End.Character},
	}
}
